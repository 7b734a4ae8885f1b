package syntax

import "testing"

// classOf parses a pattern consisting of a single class token.
func classOf(t *testing.T, pattern string) *Class {
	t.Helper()
	toks, err := Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", pattern, err)
	}
	if len(toks) != 1 || toks[0].Kind != KindClass {
		t.Fatalf("Parse(%q) = %v, want single class token", pattern, kindsOf(toks))
	}
	return toks[0].Class
}

func TestClass_Contains(t *testing.T) {
	tests := []struct {
		pattern string
		in      string
		out     string
	}{
		{"[abc]", "abc", "dA1 "},
		{"[^abc]", "dA1 ", "abc"},
		{"[a-z]", "amz", "A1_"},
		{"[a-zA-Z0-9_]", "aZ1_", " -"},
		{"[^a-zA-Z0-9_]", " .-", "aZ1_"},
		{"[a-]", "a-", "bz"},
		{"[^-]", "az ", "-"},
		{"[-a]", "-a", "b"},
		{`[\]]`, "]", "["},
		{`[\d]`, "059", "a "},
		{`[\dx]`, "05x", "ay"},
		{`[a-cx-z]`, "abxz", "dmw"},
		{`\d`, "0123456789", "a _"},
		{`\D`, "a _", "05"},
		{`\w`, "aZ0_", " .-"},
		{`\W`, " .-", "aZ0_"},
		{`\s`, " \t", "a0_"},
		{`\S`, "a0_", " \t"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			cls := classOf(t, tt.pattern)
			for _, r := range tt.in {
				if !cls.Contains(r) {
					t.Errorf("%q should contain %q", tt.pattern, r)
				}
			}
			for _, r := range tt.out {
				if cls.Contains(r) {
					t.Errorf("%q should not contain %q", tt.pattern, r)
				}
			}
		})
	}
}

func TestClass_Canonicalize(t *testing.T) {
	cls := &Class{Ranges: []ClassRange{{'m', 'z'}, {'a', 'f'}, {'d', 'n'}}}
	cls.canonicalize()
	if len(cls.Ranges) != 1 || cls.Ranges[0].Lo != 'a' || cls.Ranges[0].Hi != 'z' {
		t.Errorf("canonicalize = %v, want [{a z}]", cls.Ranges)
	}

	cls = &Class{Ranges: []ClassRange{{'a', 'b'}, {'x', 'y'}}}
	cls.canonicalize()
	if len(cls.Ranges) != 2 {
		t.Errorf("canonicalize merged disjoint ranges: %v", cls.Ranges)
	}

	// Adjacent ranges merge.
	cls = &Class{Ranges: []ClassRange{{'a', 'c'}, {'d', 'f'}}}
	cls.canonicalize()
	if len(cls.Ranges) != 1 {
		t.Errorf("canonicalize did not merge adjacent ranges: %v", cls.Ranges)
	}
}

func TestAnyChar_ExcludesLineTerminators(t *testing.T) {
	cls := AnyChar()
	for _, r := range "aZ0 _\t" {
		if !cls.Contains(r) {
			t.Errorf("AnyChar should contain %q", r)
		}
	}
	for _, r := range "\n\r" {
		if cls.Contains(r) {
			t.Errorf("AnyChar should not contain %q", r)
		}
	}
}
