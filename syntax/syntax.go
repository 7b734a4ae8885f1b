// Package syntax implements the pattern dialect accepted by lgrep: it
// tokenizes a pattern string into the engine's element vocabulary and
// converts the token stream into postfix form for the NFA compiler.
//
// The dialect covers literals, '.', character classes with ranges and
// negation, \d \w \s, the anchors ^ and $, the quantifiers * + ? (with
// an optional lazy suffix), grouping and alternation. Backreferences
// and lookaround are not part of the dialect.
//
// Parsing here is done from first principles; nothing is delegated to
// regexp/syntax.
package syntax

import "sort"

// TokenKind identifies the type of a scanned token.
type TokenKind uint8

const (
	// KindLiteral matches exactly one rune.
	KindLiteral TokenKind = iota

	// KindAnyChar is '.', any rune except line terminators.
	KindAnyChar

	// KindClass is a character class such as [a-z] or [^0-9].
	KindClass

	// KindStartAnchor is '^' at the start of the pattern.
	KindStartAnchor

	// KindEndAnchor is '$' at the end of the pattern.
	KindEndAnchor

	// KindGroupOpen and KindGroupClose delimit a group. They exist only
	// in the infix stream; ToPostfix consumes them.
	KindGroupOpen
	KindGroupClose

	// KindAlternate is the '|' operator.
	KindAlternate

	// KindConcat is the implicit concatenation operator. It is never
	// written in pattern syntax; Parse inserts it between adjacent
	// operands.
	KindConcat

	// KindStar, KindPlus and KindQuest are the postfix quantifiers.
	KindStar
	KindPlus
	KindQuest
)

// String returns a short name for the token kind, used in errors and tests.
func (k TokenKind) String() string {
	switch k {
	case KindLiteral:
		return "Literal"
	case KindAnyChar:
		return "AnyChar"
	case KindClass:
		return "Class"
	case KindStartAnchor:
		return "StartAnchor"
	case KindEndAnchor:
		return "EndAnchor"
	case KindGroupOpen:
		return "GroupOpen"
	case KindGroupClose:
		return "GroupClose"
	case KindAlternate:
		return "Alternate"
	case KindConcat:
		return "Concat"
	case KindStar:
		return "Star"
	case KindPlus:
		return "Plus"
	case KindQuest:
		return "Quest"
	default:
		return "Unknown"
	}
}

// Token is one element of the scanned pattern. Operands carry their
// payload (rune or class); quantifiers carry the lazy flag.
type Token struct {
	Kind  TokenKind
	Rune  rune   // payload for KindLiteral
	Class *Class // payload for KindClass
	Lazy  bool   // for quantifiers: trailing '?' was present
	Pos   int    // byte offset of the token in the pattern
}

// IsOperand reports whether the token pushes a fragment during NFA
// construction (as opposed to composing existing fragments).
func (t Token) IsOperand() bool {
	switch t.Kind {
	case KindLiteral, KindAnyChar, KindClass, KindStartAnchor, KindEndAnchor:
		return true
	}
	return false
}

// IsQuantifier reports whether the token is *, + or ?.
func (t Token) IsQuantifier() bool {
	switch t.Kind {
	case KindStar, KindPlus, KindQuest:
		return true
	}
	return false
}

// ClassRange is an inclusive rune range [Lo, Hi].
type ClassRange struct {
	Lo, Hi rune
}

// Class is a set of rune ranges, optionally negated. Ranges are kept
// sorted and non-overlapping after canonicalization, so membership is
// a binary search.
type Class struct {
	Ranges  []ClassRange
	Negated bool
}

// Contains reports whether r is a member of the class.
func (c *Class) Contains(r rune) bool {
	i := sort.Search(len(c.Ranges), func(i int) bool {
		return c.Ranges[i].Hi >= r
	})
	in := i < len(c.Ranges) && c.Ranges[i].Lo <= r
	if c.Negated {
		return !in
	}
	return in
}

// canonicalize sorts the ranges and merges overlaps and adjacencies.
func (c *Class) canonicalize() {
	if len(c.Ranges) < 2 {
		return
	}
	sort.Slice(c.Ranges, func(i, j int) bool {
		if c.Ranges[i].Lo != c.Ranges[j].Lo {
			return c.Ranges[i].Lo < c.Ranges[j].Lo
		}
		return c.Ranges[i].Hi < c.Ranges[j].Hi
	})
	out := c.Ranges[:1]
	for _, r := range c.Ranges[1:] {
		last := &out[len(out)-1]
		if r.Lo <= last.Hi+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	c.Ranges = out
}

// singleRune returns a class containing exactly one rune.
func singleRune(r rune) *Class {
	return &Class{Ranges: []ClassRange{{r, r}}}
}

// PerlDigit returns the class for \d.
func PerlDigit() *Class {
	return &Class{Ranges: []ClassRange{{'0', '9'}}}
}

// PerlWord returns the class for \w.
func PerlWord() *Class {
	return &Class{Ranges: []ClassRange{
		{'0', '9'},
		{'A', 'Z'},
		{'_', '_'},
		{'a', 'z'},
	}}
}

// PerlSpace returns the class for \s.
func PerlSpace() *Class {
	return &Class{Ranges: []ClassRange{
		{'\t', '\r'}, // \t \n \v \f \r
		{' ', ' '},
	}}
}

// AnyChar returns the class for '.': every rune except line
// terminators. Matching is per line, so '.' never crosses a line
// boundary anyway, but keeping \n and \r out makes direct engine use
// behave like grep.
func AnyChar() *Class {
	return &Class{
		Ranges:  []ClassRange{{'\n', '\n'}, {'\r', '\r'}},
		Negated: true,
	}
}
