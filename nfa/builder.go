package nfa

import (
	"github.com/coregx/lgrep/syntax"
)

// Builder constructs an NFA incrementally in a single state arena.
// States are created with dangling (InvalidState) targets and patched
// as fragments are composed; Build validates that nothing is left
// dangling.
type Builder struct {
	states []State
	start  StateID
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return NewBuilderWithCapacity(16)
}

// NewBuilderWithCapacity creates a builder with room for the given
// number of states before reallocating.
func NewBuilderWithCapacity(capacity int) *Builder {
	return &Builder{
		states: make([]State, 0, capacity),
		start:  InvalidState,
	}
}

func (b *Builder) push(s State) StateID {
	id := StateID(len(b.states))
	s.id = id
	b.states = append(b.states, s)
	return id
}

// AddMatch adds the accepting state and returns its ID.
func (b *Builder) AddMatch() StateID {
	return b.push(State{kind: StateMatch})
}

// AddClass adds a state that consumes one rune matching cls.
func (b *Builder) AddClass(cls *syntax.Class, next StateID) StateID {
	return b.push(State{kind: StateClass, class: cls, next: next})
}

// AddSplit adds a state with two epsilon edges. The left edge is
// explored first during simulation.
func (b *Builder) AddSplit(left, right StateID) StateID {
	return b.push(State{kind: StateSplit, left: left, right: right})
}

// AddEpsilon adds a state with a single epsilon edge.
func (b *Builder) AddEpsilon(next StateID) StateID {
	return b.push(State{kind: StateEpsilon, next: next})
}

// AddLook adds a zero-width assertion state.
func (b *Builder) AddLook(look Look, next StateID) StateID {
	return b.push(State{kind: StateLook, look: look, next: next})
}

// Patch sets the single target of a Class, Epsilon or Look state.
func (b *Builder) Patch(id, target StateID) error {
	if int(id) >= len(b.states) {
		return &BuildError{Message: "state ID out of bounds", StateID: id}
	}
	s := &b.states[id]
	switch s.kind {
	case StateClass, StateEpsilon, StateLook:
		s.next = target
		return nil
	default:
		return &BuildError{Message: "cannot patch single target of " + s.kind.String() + " state", StateID: id}
	}
}

// PatchLeft sets the left target of a Split state.
func (b *Builder) PatchLeft(id, target StateID) error {
	return b.patchSplit(id, target, true)
}

// PatchRight sets the right target of a Split state.
func (b *Builder) PatchRight(id, target StateID) error {
	return b.patchSplit(id, target, false)
}

func (b *Builder) patchSplit(id, target StateID, left bool) error {
	if int(id) >= len(b.states) {
		return &BuildError{Message: "state ID out of bounds", StateID: id}
	}
	s := &b.states[id]
	if s.kind != StateSplit {
		return &BuildError{Message: "expected Split state, got " + s.kind.String(), StateID: id}
	}
	if left {
		s.left = target
	} else {
		s.right = target
	}
	return nil
}

// SetStart sets the entry state of the automaton.
func (b *Builder) SetStart(start StateID) {
	b.start = start
}

// States returns the current number of states.
func (b *Builder) States() int {
	return len(b.states)
}

// Validate checks that the start state is set and that every state
// reference points inside the arena with no dangling targets.
func (b *Builder) Validate() error {
	if b.start == InvalidState {
		return &BuildError{Message: "start state not set", StateID: InvalidState}
	}
	if int(b.start) >= len(b.states) {
		return &BuildError{Message: "start state out of bounds", StateID: b.start}
	}
	for i := range b.states {
		s := &b.states[i]
		switch s.kind {
		case StateClass, StateEpsilon, StateLook:
			if err := b.checkRef(s.id, s.next); err != nil {
				return err
			}
		case StateSplit:
			if err := b.checkRef(s.id, s.left); err != nil {
				return err
			}
			if err := b.checkRef(s.id, s.right); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) checkRef(from, target StateID) error {
	if target == InvalidState {
		return &BuildError{Message: "dangling transition", StateID: from}
	}
	if int(target) >= len(b.states) {
		return &BuildError{Message: "transition target out of bounds", StateID: from}
	}
	return nil
}

// Build validates and finalizes the NFA. The builder must not be used
// after a successful Build; the arena is handed to the automaton.
func (b *Builder) Build() (*NFA, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &NFA{states: b.states, start: b.start}, nil
}
