package nfa

import (
	"unicode/utf8"

	"github.com/coregx/lgrep/internal/sparse"
)

// PikeVM simulates the NFA with parallel state sets: every viable
// path through the automaton is advanced in lockstep, one rune at a
// time, with duplicate states collapsed per generation. Pathological
// patterns like (a*)*b therefore cost O(states) per position instead
// of blowing up the way a backtracker would.
//
// "Parallel" refers to the simultaneous automaton branches, not to
// goroutines: a PikeVM is single-threaded and owns mutable scratch,
// so it must not be shared across concurrent searches. The underlying
// NFA is immutable and may back any number of VMs.
//
// Unanchored search seeds a fresh thread at every rune offset, giving
// the documented O(n²) worst case on line length; patterns starting
// with ^ kill those late threads at the LookStart state immediately.
type PikeVM struct {
	nfa *NFA

	// Per-search scratch, reused across calls to avoid allocation.
	curr    []thread
	next    []thread
	visited *sparse.Set
	stack   []StateID // epsilon-closure work stack
}

// thread is one simulation thread: an automaton position plus the
// input offset where this match attempt began.
type thread struct {
	state StateID
	start int
}

// NewPikeVM creates a VM for the given automaton.
func NewPikeVM(n *NFA) *PikeVM {
	capacity := n.States()
	if capacity < 16 {
		capacity = 16
	}
	return &PikeVM{
		nfa:     n,
		curr:    make([]thread, 0, capacity),
		next:    make([]thread, 0, capacity),
		visited: sparse.NewSet(n.States() + 1),
		stack:   make([]StateID, 0, capacity),
	}
}

// IsMatch reports whether the pattern matches anywhere in line.
// It returns as soon as any thread reaches the accepting state,
// without computing match positions.
func (p *PikeVM) IsMatch(line []byte) bool {
	p.curr = p.curr[:0]
	p.visited.Clear()

	pos := 0
	for {
		// Seed a new attempt at this offset, deduped against threads
		// carried over from previous steps.
		p.addThread(&p.curr, p.nfa.Start(), pos, line, pos)

		for _, t := range p.curr {
			if p.nfa.IsMatch(t.state) {
				return true
			}
		}
		if pos >= len(line) {
			return false
		}

		r, width := utf8.DecodeRune(line[pos:])
		p.next = p.next[:0]
		p.visited.Clear()
		for _, t := range p.curr {
			p.step(t, r, line, pos+width)
		}
		p.curr, p.next = p.next, p.curr
		pos += width
	}
}

// Find returns the span of the leftmost match, preferring the longest
// end for that start. ok is false when there is no match. Offsets are
// byte offsets into line; start == end for an empty match.
func (p *PikeVM) Find(line []byte) (start, end int, ok bool) {
	p.curr = p.curr[:0]
	p.visited.Clear()

	bestStart, bestEnd := -1, -1
	pos := 0
	for {
		// Once a match is pinned no later start can beat it; stop
		// seeding new attempts and just run existing threads dry.
		if bestStart == -1 {
			p.addThread(&p.curr, p.nfa.Start(), pos, line, pos)
		}

		for _, t := range p.curr {
			if !p.nfa.IsMatch(t.state) {
				continue
			}
			if bestStart == -1 || t.start < bestStart {
				bestStart, bestEnd = t.start, pos
			} else if t.start == bestStart && pos > bestEnd {
				bestEnd = pos
			}
		}
		if pos >= len(line) || (bestStart != -1 && len(p.curr) == 0) {
			break
		}

		r, width := utf8.DecodeRune(line[pos:])
		p.next = p.next[:0]
		p.visited.Clear()
		for _, t := range p.curr {
			p.step(t, r, line, pos+width)
		}
		p.curr, p.next = p.next, p.curr
		pos += width
	}

	if bestStart == -1 {
		return -1, -1, false
	}
	return bestStart, bestEnd, true
}

// step advances one thread over rune r. nextPos is the input offset
// after the rune, used for zero-width assertions in the closure.
func (p *PikeVM) step(t thread, r rune, line []byte, nextPos int) {
	s := p.nfa.State(t.state)
	if s == nil || s.kind != StateClass {
		return
	}
	if s.class.Contains(r) {
		p.addThreadAt(&p.next, s.next, t.start, line, nextPos)
	}
}

// addThread adds the epsilon closure of id to queue, skipping states
// already present in this generation.
func (p *PikeVM) addThread(queue *[]thread, id StateID, start int, line []byte, pos int) {
	p.addThreadAt(queue, id, start, line, pos)
}

// addThreadAt is the iterative closure walk. Split states push right
// then left so the left branch is explored first, preserving greedy
// and branch-order priority. Look states gate on the current offset.
func (p *PikeVM) addThreadAt(queue *[]thread, id StateID, start int, line []byte, pos int) {
	p.stack = append(p.stack[:0], id)
	for len(p.stack) > 0 {
		id := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]

		if id == InvalidState || p.visited.Contains(uint32(id)) {
			continue
		}
		p.visited.Insert(uint32(id))

		s := p.nfa.State(id)
		if s == nil {
			continue
		}
		switch s.kind {
		case StateSplit:
			p.stack = append(p.stack, s.right, s.left)
		case StateEpsilon:
			p.stack = append(p.stack, s.next)
		case StateLook:
			switch s.look {
			case LookStart:
				if pos == 0 {
					p.stack = append(p.stack, s.next)
				}
			case LookEnd:
				if pos == len(line) {
					p.stack = append(p.stack, s.next)
				}
			}
		default:
			// Class and Match states wait for the next input rune (or
			// the final match check).
			*queue = append(*queue, thread{state: id, start: start})
		}
	}
}
