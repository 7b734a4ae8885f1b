// Package nfa provides the Thompson NFA at the heart of lgrep's
// matching engine: a state arena built fragment-by-fragment from a
// postfix token stream, and a Pike-style virtual machine that
// simulates it with parallel state sets (no backtracking).
package nfa

import (
	"fmt"

	"github.com/coregx/lgrep/syntax"
)

// StateID uniquely identifies an NFA state within its arena.
type StateID uint32

// InvalidState marks an unset state reference, in particular the
// dangling outputs of fragments under construction.
const InvalidState StateID = 0xFFFFFFFF

// StateKind identifies the type of an NFA state and which of its
// fields are meaningful.
type StateKind uint8

const (
	// StateMatch is the accepting state.
	StateMatch StateKind = iota

	// StateClass consumes one rune matching its class.
	StateClass

	// StateSplit forks into two epsilon edges. Left is explored first,
	// which encodes greediness for quantifiers and branch order for
	// alternation.
	StateSplit

	// StateEpsilon forwards to one state without consuming input.
	StateEpsilon

	// StateLook is a zero-width assertion (^ or $).
	StateLook
)

func (k StateKind) String() string {
	switch k {
	case StateMatch:
		return "Match"
	case StateClass:
		return "Class"
	case StateSplit:
		return "Split"
	case StateEpsilon:
		return "Epsilon"
	case StateLook:
		return "Look"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Look identifies a zero-width assertion.
type Look uint8

const (
	// LookStart is satisfied only at input offset 0.
	LookStart Look = iota

	// LookEnd is satisfied only at end of input.
	LookEnd
)

func (l Look) String() string {
	if l == LookStart {
		return "^"
	}
	return "$"
}

// State is a single NFA state. Which fields are valid depends on the
// kind; accessors return the sentinel values for mismatched kinds.
type State struct {
	id   StateID
	kind StateKind

	class       *syntax.Class // StateClass
	next        StateID       // StateClass, StateEpsilon, StateLook
	left, right StateID       // StateSplit
	look        Look          // StateLook
}

// ID returns the state's identifier.
func (s *State) ID() StateID { return s.id }

// Kind returns the state's type.
func (s *State) Kind() StateKind { return s.kind }

// IsMatch reports whether this is the accepting state.
func (s *State) IsMatch() bool { return s.kind == StateMatch }

// Class returns the rune class and target for StateClass states.
func (s *State) Class() (*syntax.Class, StateID) {
	if s.kind == StateClass {
		return s.class, s.next
	}
	return nil, InvalidState
}

// Split returns both epsilon targets for StateSplit states.
func (s *State) Split() (left, right StateID) {
	if s.kind == StateSplit {
		return s.left, s.right
	}
	return InvalidState, InvalidState
}

// Epsilon returns the target for StateEpsilon states.
func (s *State) Epsilon() StateID {
	if s.kind == StateEpsilon {
		return s.next
	}
	return InvalidState
}

// Look returns the assertion and target for StateLook states.
func (s *State) Look() (Look, StateID) {
	if s.kind == StateLook {
		return s.look, s.next
	}
	return 0, InvalidState
}

func (s *State) String() string {
	switch s.kind {
	case StateMatch:
		return fmt.Sprintf("State(%d, Match)", s.id)
	case StateClass:
		return fmt.Sprintf("State(%d, Class -> %d)", s.id, s.next)
	case StateSplit:
		return fmt.Sprintf("State(%d, Split -> [%d, %d])", s.id, s.left, s.right)
	case StateEpsilon:
		return fmt.Sprintf("State(%d, Epsilon -> %d)", s.id, s.next)
	case StateLook:
		return fmt.Sprintf("State(%d, Look %s -> %d)", s.id, s.look, s.next)
	default:
		return fmt.Sprintf("State(%d, Unknown)", s.id)
	}
}

// NFA is a compiled automaton: an arena of states plus the entry
// state. It is immutable after Build and therefore safe to share
// across goroutines; each concurrent search owns its own PikeVM.
//
// Repetition back-edges make the state graph cyclic; index-based
// references through the arena represent those cycles without any
// self-referential ownership.
type NFA struct {
	states []State
	start  StateID
}

// Start returns the entry state.
func (n *NFA) Start() StateID { return n.start }

// State returns the state with the given ID, or nil when out of range.
func (n *NFA) State(id StateID) *State {
	if id == InvalidState || int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}

// IsMatch reports whether id names the accepting state.
func (n *NFA) IsMatch(id StateID) bool {
	if s := n.State(id); s != nil {
		return s.IsMatch()
	}
	return false
}

// States returns the number of states in the arena.
func (n *NFA) States() int { return len(n.states) }

func (n *NFA) String() string {
	return fmt.Sprintf("NFA{states: %d, start: %d}", len(n.states), n.start)
}
