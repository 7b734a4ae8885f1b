package nfa

import (
	"testing"

	"github.com/coregx/lgrep/syntax"
)

// compilePattern runs the full parse -> postfix -> Compile pipeline.
func compilePattern(t *testing.T, pattern string) *NFA {
	t.Helper()
	toks, err := syntax.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", pattern, err)
	}
	post, err := syntax.ToPostfix(toks)
	if err != nil {
		t.Fatalf("ToPostfix(%q) error: %v", pattern, err)
	}
	n, err := Compile(post)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", pattern, err)
	}
	return n
}

func TestCompile_StateCounts(t *testing.T) {
	tests := []struct {
		pattern string
		states  int
	}{
		{"", 1},          // match only
		{"a", 2},         // class + match
		{"ab", 3},        // two classes + match
		{"a|b", 4},       // two classes + split + match
		{"a*", 3},        // class + split + match
		{"a+", 3},        // class + split + match
		{"a?", 3},        // class + split + match
		{"(ab)*c", 5},    // two classes + split + class + match
		{"^a$", 4},       // look + class + look + match
		{"[a-z0-9]", 2},  // one class state regardless of ranges
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			n := compilePattern(t, tt.pattern)
			if n.States() != tt.states {
				t.Errorf("Compile(%q) states = %d, want %d", tt.pattern, n.States(), tt.states)
			}
		})
	}
}

func TestCompile_EmptyPatternAcceptsImmediately(t *testing.T) {
	n := compilePattern(t, "")
	if !n.IsMatch(n.Start()) {
		t.Error("empty pattern: start state should be the accepting state")
	}
}

func TestCompile_NoDanglingTransitions(t *testing.T) {
	patterns := []string{"a", "ab|cd", "(a|b)*c+d?", "^x(y|z)*$", "a*?b+?", "(a(b(c)))"}
	for _, p := range patterns {
		n := compilePattern(t, p)
		for i := 0; i < n.States(); i++ {
			s := n.State(StateID(i))
			switch s.Kind() {
			case StateClass, StateEpsilon, StateLook:
				if s.next == InvalidState || int(s.next) >= n.States() {
					t.Errorf("pattern %q: %v has dangling target", p, s)
				}
			case StateSplit:
				if s.left == InvalidState || s.right == InvalidState {
					t.Errorf("pattern %q: %v has dangling branch", p, s)
				}
			}
		}
	}
}

func TestCompile_InvariantViolations(t *testing.T) {
	// Streams no validated parse can produce must surface as
	// *BuildError, never as a pattern error or a silent automaton.
	cases := []struct {
		name string
		toks []syntax.Token
	}{
		{"concat without operands", []syntax.Token{{Kind: syntax.KindConcat}}},
		{"alternate with one operand", []syntax.Token{
			{Kind: syntax.KindLiteral, Rune: 'a'},
			{Kind: syntax.KindAlternate},
		}},
		{"star with empty stack", []syntax.Token{{Kind: syntax.KindStar}}},
		{"two loose operands", []syntax.Token{
			{Kind: syntax.KindLiteral, Rune: 'a'},
			{Kind: syntax.KindLiteral, Rune: 'b'},
		}},
		{"group token leaks through", []syntax.Token{{Kind: syntax.KindGroupOpen}}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.toks)
			if err == nil {
				t.Fatal("Compile succeeded, want *BuildError")
			}
			if _, ok := err.(*BuildError); !ok {
				t.Errorf("Compile error = %T (%v), want *BuildError", err, err)
			}
		})
	}
}

func TestBuilder_Validate(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Build(); err == nil {
		t.Error("Build with no start state should fail")
	}

	b = NewBuilder()
	id := b.AddClass(syntax.PerlDigit(), InvalidState)
	b.SetStart(id)
	if _, err := b.Build(); err == nil {
		t.Error("Build with dangling transition should fail")
	}

	b = NewBuilder()
	m := b.AddMatch()
	id = b.AddClass(syntax.PerlDigit(), m)
	b.SetStart(id)
	if _, err := b.Build(); err != nil {
		t.Errorf("Build of well-formed NFA failed: %v", err)
	}
}

func TestBuilder_PatchKindChecks(t *testing.T) {
	b := NewBuilder()
	m := b.AddMatch()
	sp := b.AddSplit(m, m)

	if err := b.Patch(sp, m); err == nil {
		t.Error("Patch on a Split state should fail")
	}
	if err := b.PatchLeft(m, sp); err == nil {
		t.Error("PatchLeft on a Match state should fail")
	}
	if err := b.Patch(StateID(99), m); err == nil {
		t.Error("Patch out of bounds should fail")
	}
}
