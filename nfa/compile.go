package nfa

import (
	"github.com/coregx/lgrep/syntax"
)

// outSlot names which edge of a state is dangling.
type outSlot uint8

const (
	slotNext outSlot = iota
	slotLeft
	slotRight
)

// outEdge is one dangling output of a fragment: a state plus the edge
// slot that still points at InvalidState. The explicit patch list
// replaces pointer-chasing backpatch tricks and works the same for
// cyclic graphs.
type outEdge struct {
	state StateID
	slot  outSlot
}

// frag is a partially built automaton piece: one entry state and the
// set of outputs not yet connected to a target.
type frag struct {
	start StateID
	outs  []outEdge
}

// Compile builds an NFA from a postfix token stream (syntax.ToPostfix
// output) using Thompson's construction: operands push two-state
// fragments, operators pop and compose them, and the single remaining
// fragment is patched into the accepting state.
//
// The postfix stream comes from the validated parser, so any failure
// here is a *BuildError (engine defect), never a pattern error. An
// empty stream compiles to an automaton that accepts everything.
func Compile(tokens []syntax.Token) (*NFA, error) {
	b := NewBuilderWithCapacity(len(tokens)*2 + 1)
	var stack []frag

	pop := func() (frag, bool) {
		if len(stack) == 0 {
			return frag{}, false
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return f, true
	}

	for _, t := range tokens {
		switch t.Kind {
		case syntax.KindLiteral, syntax.KindAnyChar, syntax.KindClass:
			id := b.AddClass(operandClass(t), InvalidState)
			stack = append(stack, frag{start: id, outs: []outEdge{{id, slotNext}}})

		case syntax.KindStartAnchor:
			id := b.AddLook(LookStart, InvalidState)
			stack = append(stack, frag{start: id, outs: []outEdge{{id, slotNext}}})

		case syntax.KindEndAnchor:
			id := b.AddLook(LookEnd, InvalidState)
			stack = append(stack, frag{start: id, outs: []outEdge{{id, slotNext}}})

		case syntax.KindConcat:
			f2, ok2 := pop()
			f1, ok1 := pop()
			if !ok1 || !ok2 {
				return nil, buildErr("concat with %d operands on stack", len(stack))
			}
			if err := patchAll(b, f1.outs, f2.start); err != nil {
				return nil, err
			}
			stack = append(stack, frag{start: f1.start, outs: f2.outs})

		case syntax.KindAlternate:
			f2, ok2 := pop()
			f1, ok1 := pop()
			if !ok1 || !ok2 {
				return nil, buildErr("alternation with %d operands on stack", len(stack))
			}
			id := b.AddSplit(f1.start, f2.start)
			outs := append(f1.outs, f2.outs...)
			stack = append(stack, frag{start: id, outs: outs})

		case syntax.KindStar:
			f, ok := pop()
			if !ok {
				return nil, buildErr("star with empty stack")
			}
			s, err := quantSplit(b, f.start, t.Lazy)
			if err != nil {
				return nil, err
			}
			// Back-edge: repeating the body returns to the split.
			if err := patchAll(b, f.outs, s.id); err != nil {
				return nil, err
			}
			stack = append(stack, frag{start: s.id, outs: []outEdge{s.skip}})

		case syntax.KindPlus:
			f, ok := pop()
			if !ok {
				return nil, buildErr("plus with empty stack")
			}
			s, err := quantSplit(b, f.start, t.Lazy)
			if err != nil {
				return nil, err
			}
			if err := patchAll(b, f.outs, s.id); err != nil {
				return nil, err
			}
			// Entry is the body itself: at least one pass is forced.
			stack = append(stack, frag{start: f.start, outs: []outEdge{s.skip}})

		case syntax.KindQuest:
			f, ok := pop()
			if !ok {
				return nil, buildErr("question with empty stack")
			}
			s, err := quantSplit(b, f.start, t.Lazy)
			if err != nil {
				return nil, err
			}
			outs := append(f.outs, s.skip)
			stack = append(stack, frag{start: s.id, outs: outs})

		default:
			return nil, buildErr("unexpected %s token in postfix stream", t.Kind)
		}
	}

	m := b.AddMatch()
	switch len(stack) {
	case 0:
		// Empty pattern: the automaton accepts immediately.
		b.SetStart(m)
	case 1:
		f := stack[0]
		if err := patchAll(b, f.outs, m); err != nil {
			return nil, err
		}
		b.SetStart(f.start)
	default:
		return nil, buildErr("postfix stream reduced to %d fragments, want 1", len(stack))
	}

	return b.Build()
}

// operandClass returns the rune class for an operand token. Literals
// become single-rune classes so every consuming state is uniform.
func operandClass(t syntax.Token) *syntax.Class {
	switch t.Kind {
	case syntax.KindLiteral:
		return &syntax.Class{Ranges: []syntax.ClassRange{{Lo: t.Rune, Hi: t.Rune}}}
	case syntax.KindAnyChar:
		return syntax.AnyChar()
	default:
		return t.Class
	}
}

// quantifierSplit is a freshly added split whose body edge is wired
// and whose skip edge is dangling.
type quantifierSplit struct {
	id   StateID
	skip outEdge
}

// quantSplit adds the repeat-or-exit split shared by all three
// quantifiers. Greedy quantifiers put the body on the left (explored
// first), lazy ones put the skip edge there.
func quantSplit(b *Builder, body StateID, lazy bool) (quantifierSplit, error) {
	if lazy {
		id := b.AddSplit(InvalidState, body)
		return quantifierSplit{id: id, skip: outEdge{id, slotLeft}}, nil
	}
	id := b.AddSplit(body, InvalidState)
	return quantifierSplit{id: id, skip: outEdge{id, slotRight}}, nil
}

// patchAll resolves every dangling edge in outs to target.
func patchAll(b *Builder, outs []outEdge, target StateID) error {
	for _, o := range outs {
		var err error
		switch o.slot {
		case slotNext:
			err = b.Patch(o.state, target)
		case slotLeft:
			err = b.PatchLeft(o.state, target)
		case slotRight:
			err = b.PatchRight(o.state, target)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
