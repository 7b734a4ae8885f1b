package syntax

import "unicode/utf8"

// Parse scans a pattern into its token stream, validating the dialect
// and inserting the implicit concatenation operator between adjacent
// operands. The returned stream is infix; feed it to ToPostfix before
// NFA compilation.
//
// Anchor rule: '^' is an anchor only at offset 0 of the pattern and
// '$' only at the final offset; anywhere else both are ordinary
// literals. The empty pattern is valid and yields an empty stream
// (it matches every line).
func Parse(pattern string) ([]Token, error) {
	p := &parser{pattern: pattern}
	if err := p.scan(); err != nil {
		return nil, err
	}
	return insertConcat(p.toks), nil
}

type parser struct {
	pattern string
	pos     int     // byte offset of the next rune
	toks    []Token // scanned tokens, no concat yet
	groups  []int   // byte offsets of unclosed '(' tokens
}

// next decodes the rune at the current offset and advances past it.
func (p *parser) next() (rune, bool) {
	if p.pos >= len(p.pattern) {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(p.pattern[p.pos:])
	p.pos += size
	return r, true
}

// peek returns the rune at the current offset without consuming it.
func (p *parser) peek() (rune, bool) {
	if p.pos >= len(p.pattern) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(p.pattern[p.pos:])
	return r, true
}

func (p *parser) emit(t Token) {
	p.toks = append(p.toks, t)
}

// last returns the most recently scanned token, or ok=false when the
// stream (or the current group) has produced nothing yet.
func (p *parser) last() (Token, bool) {
	if len(p.toks) == 0 {
		return Token{}, false
	}
	return p.toks[len(p.toks)-1], true
}

func (p *parser) scan() error {
	for {
		start := p.pos
		r, ok := p.next()
		if !ok {
			break
		}
		switch r {
		case '(':
			if q, ok := p.peek(); ok && q == '?' {
				// Only the non-capturing marker is recognized; groups do
				// not capture in this engine, so it is a synonym.
				rest := p.pattern[p.pos:]
				if len(rest) >= 2 && rest[0] == '?' && rest[1] == ':' {
					p.pos += 2
				}
			}
			p.groups = append(p.groups, start)
			p.emit(Token{Kind: KindGroupOpen, Pos: start})
		case ')':
			if len(p.groups) == 0 {
				return errAt(ErrUnexpectedParen, p.pattern, start)
			}
			if t, ok := p.last(); !ok || t.Kind == KindGroupOpen {
				return errAt(ErrEmptyGroup, p.pattern, start)
			} else if t.Kind == KindAlternate {
				return errAt(ErrEmptyAlternate, p.pattern, start)
			}
			p.groups = p.groups[:len(p.groups)-1]
			p.emit(Token{Kind: KindGroupClose, Pos: start})
		case '|':
			t, ok := p.last()
			if !ok || t.Kind == KindGroupOpen || t.Kind == KindAlternate {
				return errAt(ErrEmptyAlternate, p.pattern, start)
			}
			p.emit(Token{Kind: KindAlternate, Pos: start})
		case '*', '+', '?':
			t, ok := p.last()
			if !ok || !quantifiable(t.Kind) {
				return errAt(ErrMissingRepeatArg, p.pattern, start)
			}
			kind := KindStar
			switch r {
			case '+':
				kind = KindPlus
			case '?':
				kind = KindQuest
			}
			lazy := false
			if q, ok := p.peek(); ok && q == '?' {
				lazy = true
				p.pos++
			}
			p.emit(Token{Kind: kind, Lazy: lazy, Pos: start})
		case '^':
			if start == 0 {
				p.emit(Token{Kind: KindStartAnchor, Pos: start})
			} else {
				p.emit(Token{Kind: KindLiteral, Rune: '^', Pos: start})
			}
		case '$':
			if p.pos == len(p.pattern) {
				p.emit(Token{Kind: KindEndAnchor, Pos: start})
			} else {
				p.emit(Token{Kind: KindLiteral, Rune: '$', Pos: start})
			}
		case '.':
			p.emit(Token{Kind: KindAnyChar, Pos: start})
		case '[':
			cls, err := p.scanClass(start)
			if err != nil {
				return err
			}
			p.emit(Token{Kind: KindClass, Class: cls, Pos: start})
		case '\\':
			tok, err := p.scanEscape(start)
			if err != nil {
				return err
			}
			p.emit(tok)
		default:
			p.emit(Token{Kind: KindLiteral, Rune: r, Pos: start})
		}
	}

	if len(p.groups) > 0 {
		return errAt(ErrUnterminatedGroup, p.pattern, p.groups[len(p.groups)-1])
	}
	if t, ok := p.last(); ok && t.Kind == KindAlternate {
		return errAt(ErrEmptyAlternate, p.pattern, t.Pos)
	}
	return nil
}

// quantifiable reports whether a quantifier may follow a token of the
// given kind. Anchors and operators cannot be repeated.
func quantifiable(k TokenKind) bool {
	switch k {
	case KindLiteral, KindAnyChar, KindClass, KindGroupClose:
		return true
	}
	return false
}

// scanEscape handles a backslash escape outside a character class.
// start is the offset of the backslash itself.
func (p *parser) scanEscape(start int) (Token, error) {
	r, ok := p.next()
	if !ok {
		return Token{}, errAt(ErrTrailingBackslash, p.pattern, start)
	}
	switch r {
	case 'd':
		return Token{Kind: KindClass, Class: PerlDigit(), Pos: start}, nil
	case 'D':
		c := PerlDigit()
		c.Negated = true
		return Token{Kind: KindClass, Class: c, Pos: start}, nil
	case 'w':
		return Token{Kind: KindClass, Class: PerlWord(), Pos: start}, nil
	case 'W':
		c := PerlWord()
		c.Negated = true
		return Token{Kind: KindClass, Class: c, Pos: start}, nil
	case 's':
		return Token{Kind: KindClass, Class: PerlSpace(), Pos: start}, nil
	case 'S':
		c := PerlSpace()
		c.Negated = true
		return Token{Kind: KindClass, Class: c, Pos: start}, nil
	case 'n':
		return Token{Kind: KindLiteral, Rune: '\n', Pos: start}, nil
	case 't':
		return Token{Kind: KindLiteral, Rune: '\t', Pos: start}, nil
	case 'r':
		return Token{Kind: KindLiteral, Rune: '\r', Pos: start}, nil
	case '\\', '.', '+', '*', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '-', '/':
		return Token{Kind: KindLiteral, Rune: r, Pos: start}, nil
	}
	return Token{}, errAt(ErrInvalidEscape, p.pattern, start)
}

// scanClass parses the body of a [...] class. The opening '[' has
// already been consumed; start is its offset.
func (p *parser) scanClass(start int) (*Class, error) {
	cls := &Class{}
	if r, ok := p.peek(); ok && r == '^' {
		cls.Negated = true
		p.pos++
	}
	for {
		itemPos := p.pos
		r, ok := p.next()
		if !ok {
			return nil, errAt(ErrUnterminatedClass, p.pattern, start)
		}
		if r == ']' {
			if len(cls.Ranges) == 0 {
				return nil, errAt(ErrEmptyClass, p.pattern, itemPos)
			}
			cls.canonicalize()
			return cls, nil
		}

		lo, sub, err := p.classAtom(r, itemPos)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			// A \d-style escape contributes its ranges and can never be
			// the low end of an a-z range.
			cls.Ranges = append(cls.Ranges, sub.Ranges...)
			continue
		}

		// Range? 'lo-hi' unless the '-' is the last char of the class.
		if q, ok := p.peek(); ok && q == '-' {
			mark := p.pos
			p.pos++ // consume '-'
			hiPos := p.pos
			h, ok := p.next()
			if !ok {
				return nil, errAt(ErrUnterminatedClass, p.pattern, start)
			}
			if h == ']' {
				// Trailing '-' is a literal member; put the ']' back.
				p.pos = mark
				cls.Ranges = append(cls.Ranges, ClassRange{lo, lo})
				continue
			}
			hi, hsub, err := p.classAtom(h, hiPos)
			if err != nil {
				return nil, err
			}
			if hsub != nil || hi < lo {
				return nil, errAt(ErrInvalidClassRange, p.pattern, itemPos)
			}
			cls.Ranges = append(cls.Ranges, ClassRange{lo, hi})
			continue
		}
		cls.Ranges = append(cls.Ranges, ClassRange{lo, lo})
	}
}

// classAtom resolves one class member that starts with rune r. It
// returns either a single rune or, for \d \w \s escapes, a sub-class.
func (p *parser) classAtom(r rune, pos int) (rune, *Class, error) {
	if r != '\\' {
		return r, nil, nil
	}
	e, ok := p.next()
	if !ok {
		return 0, nil, errAt(ErrTrailingBackslash, p.pattern, pos)
	}
	switch e {
	case 'd':
		return 0, PerlDigit(), nil
	case 'w':
		return 0, PerlWord(), nil
	case 's':
		return 0, PerlSpace(), nil
	case 'n':
		return '\n', nil, nil
	case 't':
		return '\t', nil, nil
	case 'r':
		return '\r', nil, nil
	case '\\', ']', '[', '-', '^', '$', '.', '*', '+', '?', '(', ')', '|', '/':
		return e, nil, nil
	}
	return 0, nil, errAt(ErrInvalidEscape, p.pattern, pos)
}

// insertConcat inserts the implicit concatenation operator between
// adjacent tokens that the syntax writes with no operator at all.
func insertConcat(toks []Token) []Token {
	if len(toks) < 2 {
		return toks
	}
	out := make([]Token, 0, len(toks)*2-1)
	for i, t := range toks {
		out = append(out, t)
		if i+1 < len(toks) && concatNeeded(t, toks[i+1]) {
			out = append(out, Token{Kind: KindConcat, Pos: toks[i+1].Pos})
		}
	}
	return out
}

func concatNeeded(prev, next Token) bool {
	prevOK := prev.IsOperand() || prev.IsQuantifier() || prev.Kind == KindGroupClose
	nextOK := next.IsOperand() || next.Kind == KindGroupOpen
	return prevOK && nextOK
}
