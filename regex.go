// Package lgrep provides a line-oriented regex matcher built from
// first principles: patterns are parsed into a token stream, reordered
// into postfix form, compiled into a Thompson NFA and simulated with
// parallel state sets. No pre-existing regex library is involved.
//
// The dialect: literals, '.', [...] and [^...] classes with ranges,
// \d \w \s (and their negations), ^ and $ at the pattern extremities,
// * + ? with optional lazy suffix, grouping and alternation. No
// backreferences, no lookaround.
//
// Basic usage:
//
//	re, err := lgrep.Compile(`(cat|dog)s?`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	re.MatchString("hot dogs") // true
//
// A compiled Regex is immutable and safe for concurrent use; matching
// scratch is pooled internally.
package lgrep

import (
	"sync"

	"github.com/coregx/lgrep/nfa"
	"github.com/coregx/lgrep/prefilter"
	"github.com/coregx/lgrep/syntax"
)

// Regex is a compiled pattern. Matching never mutates the Regex, so a
// single compiled pattern can serve many goroutines and many lines.
type Regex struct {
	pattern string
	nfa     *nfa.NFA
	pf      *prefilter.Prefilter // nil when no literals to filter on

	// vms pools PikeVMs so concurrent callers do not share simulation
	// scratch.
	vms sync.Pool
}

// Compile compiles a pattern.
//
// Syntax errors are returned as *syntax.Error carrying the error kind
// and the byte offset in the pattern; matching never begins against
// an invalid pattern. The zero-length pattern is valid and matches
// every line.
func Compile(pattern string) (*Regex, error) {
	tokens, err := syntax.Parse(pattern)
	if err != nil {
		return nil, err
	}
	postfix, err := syntax.ToPostfix(tokens)
	if err != nil {
		return nil, err
	}
	automaton, err := nfa.Compile(postfix)
	if err != nil {
		return nil, err
	}

	r := &Regex{
		pattern: pattern,
		nfa:     automaton,
		pf:      prefilter.FromTokens(tokens),
	}
	r.vms.New = func() interface{} {
		return nfa.NewPikeVM(automaton)
	}
	return r, nil
}

// MustCompile is like Compile but panics on error. Use for patterns
// known to be valid at compile time.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("lgrep: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// Pattern returns the source text the Regex was compiled from.
func (r *Regex) Pattern() string {
	return r.pattern
}

// String returns the source text of the pattern.
func (r *Regex) String() string {
	return r.pattern
}

// Match reports whether line contains a match of the pattern.
// line must not contain a line terminator.
func (r *Regex) Match(line []byte) bool {
	if r.pf != nil {
		if !r.pf.IsCandidate(line) {
			return false
		}
		if r.pf.Complete() {
			return true
		}
	}
	vm := r.vms.Get().(*nfa.PikeVM)
	ok := vm.IsMatch(line)
	r.vms.Put(vm)
	return ok
}

// MatchString reports whether line contains a match of the pattern.
func (r *Regex) MatchString(line string) bool {
	return r.Match([]byte(line))
}

// FindIndex returns a two-element slice holding the byte offsets of
// the leftmost match in line, or nil if there is no match.
func (r *Regex) FindIndex(line []byte) []int {
	if r.pf != nil {
		if !r.pf.IsCandidate(line) {
			return nil
		}
		if r.pf.Complete() {
			start, end, ok := r.pf.Find(line, 0)
			if !ok {
				return nil
			}
			return []int{start, end}
		}
	}
	vm := r.vms.Get().(*nfa.PikeVM)
	start, end, ok := vm.Find(line)
	r.vms.Put(vm)
	if !ok {
		return nil
	}
	return []int{start, end}
}

// FindStringIndex is FindIndex for a string input.
func (r *Regex) FindStringIndex(line string) []int {
	return r.FindIndex([]byte(line))
}

// NumStates returns the size of the compiled automaton. Useful for
// diagnostics and tests.
func (r *Regex) NumStates() int {
	return r.nfa.States()
}

// QuoteMeta returns a pattern that matches the literal text s, with
// every dialect metacharacter escaped.
func QuoteMeta(s string) string {
	const special = `\.+*?()|[]{}^$`

	n := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, 0, len(s)+n)
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			buf = append(buf, '\\')
		}
		buf = append(buf, s[i])
	}
	return string(buf)
}

func isSpecial(c byte, special string) bool {
	for i := 0; i < len(special); i++ {
		if c == special[i] {
			return true
		}
	}
	return false
}
