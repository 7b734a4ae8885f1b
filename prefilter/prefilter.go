// Package prefilter rejects lines that cannot possibly match a
// pattern before the NFA simulation runs.
//
// The filter is built from literals extracted out of the parsed token
// stream. Two situations arise:
//
//   - The whole pattern is a bare literal alternation ("cat|dog").
//     Finding any literal IS a match; the prefilter is complete and
//     the automaton never runs for that line.
//   - The pattern has a mandatory literal fragment ("foo" in
//     "fo+o\d*bar" has "bar"). A line without it cannot match, so the
//     simulation is skipped; a line with it still needs verification.
//
// Literal scanning uses an Aho-Corasick automaton, which handles one
// or many needles uniformly in a single pass over the line.
package prefilter

import (
	"github.com/coregx/ahocorasick"

	"github.com/coregx/lgrep/syntax"
)

// minPartialLen is the shortest mandatory literal worth filtering on.
// Shorter needles hit too often to pay for the extra scan.
const minPartialLen = 3

// Prefilter is an immutable literal filter for one compiled pattern.
// Safe for concurrent use.
type Prefilter struct {
	ac       *ahocorasick.Automaton
	complete bool
}

// FromTokens builds a prefilter from the infix token stream of a
// pattern. It returns nil when the pattern yields no usable literals
// (or the automaton cannot be built); callers then run the NFA on
// every line, which is always correct.
func FromTokens(tokens []syntax.Token) *Prefilter {
	lits, complete := extract(tokens)
	if len(lits) == 0 {
		return nil
	}
	builder := ahocorasick.NewBuilder()
	for _, lit := range lits {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &Prefilter{ac: auto, complete: complete}
}

// Complete reports whether a prefilter hit is already a full match,
// with no automaton verification needed.
func (p *Prefilter) Complete() bool {
	return p.complete
}

// IsCandidate reports whether line can possibly match the pattern.
// A false result is definitive; a true result still needs
// verification unless Complete().
func (p *Prefilter) IsCandidate(line []byte) bool {
	return p.ac.IsMatch(line)
}

// Find returns the span of the first literal hit at or after 'at'.
// Only meaningful for complete prefilters, where the hit is the match.
func (p *Prefilter) Find(line []byte, at int) (start, end int, ok bool) {
	m := p.ac.Find(line, at)
	if m == nil {
		return -1, -1, false
	}
	return m.Start, m.End, true
}

// extract pulls filterable literals out of the token stream.
//
// If the stream is nothing but literals, concatenation and
// alternation, every alternative is a plain string and the extraction
// is complete. Otherwise we look for the longest run of mandatory
// top-level literals: a literal is mandatory unless * or ? makes it
// optional; classes, dots and groups break the run; a top-level
// alternation makes every run optional and aborts the extraction.
func extract(tokens []syntax.Token) (lits [][]byte, complete bool) {
	if alts, ok := literalAlternation(tokens); ok {
		return alts, true
	}
	if run := longestMandatoryRun(tokens); len(run) >= minPartialLen {
		return [][]byte{run}, false
	}
	return nil, false
}

// literalAlternation recognizes patterns of the form lit(|lit)*.
func literalAlternation(tokens []syntax.Token) ([][]byte, bool) {
	if len(tokens) == 0 {
		return nil, false
	}
	var alts [][]byte
	var cur []byte
	for _, t := range tokens {
		switch t.Kind {
		case syntax.KindLiteral:
			cur = append(cur, []byte(string(t.Rune))...)
		case syntax.KindConcat:
			// literal adjacency, nothing to record
		case syntax.KindAlternate:
			alts = append(alts, cur)
			cur = nil
		default:
			return nil, false
		}
	}
	return append(alts, cur), true
}

// longestMandatoryRun scans top-level tokens for the longest literal
// run that must appear in any matching line.
func longestMandatoryRun(tokens []syntax.Token) []byte {
	var best, cur []byte
	flush := func() {
		if len(cur) > len(best) {
			best = cur
		}
		cur = nil
	}

	depth := 0
	for i, t := range tokens {
		if t.Kind == syntax.KindGroupOpen {
			depth++
			flush()
			continue
		}
		if t.Kind == syntax.KindGroupClose {
			depth--
			continue
		}
		if depth > 0 {
			continue
		}
		switch t.Kind {
		case syntax.KindAlternate:
			// Any top-level branch point makes every run optional.
			return nil
		case syntax.KindLiteral:
			quant := syntax.Token{}
			if i+1 < len(tokens) {
				quant = tokens[i+1]
			}
			switch quant.Kind {
			case syntax.KindStar, syntax.KindQuest:
				flush() // the literal itself may be absent
			case syntax.KindPlus:
				cur = append(cur, []byte(string(t.Rune))...)
				flush() // present at least once, but repetition follows
			default:
				cur = append(cur, []byte(string(t.Rune))...)
			}
		case syntax.KindConcat, syntax.KindStartAnchor, syntax.KindEndAnchor:
			// zero-width or structural; the run continues
		case syntax.KindStar, syntax.KindPlus, syntax.KindQuest:
			// quantifier for a group or class; run already broken
		default:
			flush()
		}
	}
	flush()
	return best
}
