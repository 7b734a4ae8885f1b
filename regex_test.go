package lgrep

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/coregx/lgrep/syntax"
)

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		pattern string
		code    syntax.ErrorCode
	}{
		{"(abc", syntax.ErrUnterminatedGroup},
		{"abc)", syntax.ErrUnexpectedParen},
		{"[abc", syntax.ErrUnterminatedClass},
		{"*a", syntax.ErrMissingRepeatArg},
		{"a|", syntax.ErrEmptyAlternate},
		{"()", syntax.ErrEmptyGroup},
		{`a\`, syntax.ErrTrailingBackslash},
		{`\q`, syntax.ErrInvalidEscape},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re, err := Compile(tt.pattern)
			if err == nil {
				t.Fatalf("Compile(%q) succeeded, want error", tt.pattern)
			}
			if re != nil {
				t.Errorf("Compile(%q) returned non-nil Regex with error", tt.pattern)
			}
			serr, ok := err.(*syntax.Error)
			if !ok {
				t.Fatalf("Compile(%q) error type = %T, want *syntax.Error", tt.pattern, err)
			}
			if serr.Code != tt.code {
				t.Errorf("Compile(%q) code = %q, want %q", tt.pattern, serr.Code, tt.code)
			}
		})
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile of an invalid pattern did not panic")
		}
	}()
	MustCompile("(unclosed")
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		line    string
		want    bool
	}{
		{"", "anything", true},
		{"a*", "", true},
		{"a+", "", false},
		{"a+", "bab", true},
		{"^abc$", "abc", true},
		{"^abc$", "xabc", false},
		{"^abc$", "abcx", false},
		{"(cat|dog)s?", "hot dogs", true},
		{"(cat|dog)s?", "catalog", true},
		{"(cat|dog)s?", "bird", false},
		{"[^abc]", "ab", false},
		{"[^abc]", "abz", true},
		{`\d+\.\d+`, "pi is 3.14", true},
		{`\d+\.\d+`, "pi is about 3", false},
		{"colou?r", "color", true},
		{"colou?r", "colour", true},
		{"colou?r", "colr", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.line, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			if got := re.MatchString(tt.line); got != tt.want {
				t.Errorf("MatchString(%q, %q) = %v, want %v", tt.pattern, tt.line, got, tt.want)
			}
			if got := re.Match([]byte(tt.line)); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.line, got, tt.want)
			}
		})
	}
}

func TestFindIndex(t *testing.T) {
	tests := []struct {
		pattern string
		line    string
		want    []int // nil for no match
	}{
		{"needle", "a needle in a haystack", []int{2, 8}},
		{"needle", "plain hay", nil},
		{`\d+`, "port 8080 open", []int{5, 9}},
		{"a*", "bbb", []int{0, 0}},
		{"^", "abc", []int{0, 0}},
		{"c$", "abc", []int{2, 3}},
		{"cat|dog", "hotdog cat", []int{3, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.line, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			got := re.FindStringIndex(tt.line)
			if tt.want == nil {
				if got != nil {
					t.Errorf("FindStringIndex(%q, %q) = %v, want nil", tt.pattern, tt.line, got)
				}
				return
			}
			if got == nil || got[0] != tt.want[0] || got[1] != tt.want[1] {
				t.Errorf("FindStringIndex(%q, %q) = %v, want %v", tt.pattern, tt.line, got, tt.want)
			}
		})
	}
}

// TestMatch_AgainstStdlib cross-checks boolean match results against
// the standard library on patterns where the two dialects agree.
func TestMatch_AgainstStdlib(t *testing.T) {
	patterns := []string{
		"abc",
		"a+b*c?",
		"^start",
		"end$",
		"^exact$",
		"(one|two|three)",
		"[a-f0-9]+",
		"[^xyz]",
		`\d\d:\d\d`,
		`\w+@\w+`,
		"a(bc)*d",
	}
	lines := []string{
		"", "a", "abc", "xabcx", "start of line", "the end",
		"exact", "two birds", "deadbeef", "xyz", "12:45 lunch",
		"mail me at user@example", "ad", "abcbcd", "no digits here",
	}
	for _, pat := range patterns {
		ours := MustCompile(pat)
		std := regexp.MustCompile(pat)
		for _, line := range lines {
			if got, want := ours.MatchString(line), std.MatchString(line); got != want {
				t.Errorf("MatchString(%q, %q) = %v, stdlib says %v", pat, line, got, want)
			}
		}
	}
}

func TestMatch_Concurrent(t *testing.T) {
	re := MustCompile(`(GET|POST) /\w+`)
	lines := []struct {
		line string
		want bool
	}{
		{"GET /index", true},
		{"POST /submit", true},
		{"PUT /thing", false},
		{"not a request", false},
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				l := lines[i%len(lines)]
				if got := re.MatchString(l.line); got != l.want {
					t.Errorf("MatchString(%q) = %v, want %v", l.line, got, l.want)
				}
			}
		}()
	}
	wg.Wait()
}

func TestCompile_Deterministic(t *testing.T) {
	// Compiling the same pattern twice must yield automata of the same
	// shape; matching behavior does not depend on compilation order.
	a := MustCompile("(a|b)*c+d?")
	b := MustCompile("(a|b)*c+d?")
	if a.NumStates() != b.NumStates() {
		t.Errorf("NumStates differs across compiles: %d vs %d", a.NumStates(), b.NumStates())
	}
	for _, line := range []string{"", "c", "ababccd", "abd"} {
		if a.MatchString(line) != b.MatchString(line) {
			t.Errorf("compiles disagree on %q", line)
		}
	}
}

func TestMatch_LongLine(t *testing.T) {
	re := MustCompile("needle$")
	line := strings.Repeat("hay ", 100000) + "needle"
	if !re.MatchString(line) {
		t.Error("anchored needle at the end of a long line not found")
	}
	if re.MatchString(line + " more") {
		t.Error("anchored needle matched away from the end")
	}
}

func TestQuoteMeta(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", "abc"},
		{"a.b", `a\.b`},
		{"1+1=2", `1\+1=2`},
		{"(x|y)*", `\(x\|y\)\*`},
		{`back\slash`, `back\\slash`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := QuoteMeta(tt.in); got != tt.want {
			t.Errorf("QuoteMeta(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	// The quoted form must match the original text literally.
	hostile := `a.b+c*d?(e)[f]|g^h$`
	re := MustCompile(QuoteMeta(hostile))
	if !re.MatchString("xx" + hostile + "yy") {
		t.Errorf("QuoteMeta(%q) does not match its own input", hostile)
	}
}

func TestPatternAccessors(t *testing.T) {
	re := MustCompile("a|b")
	if re.Pattern() != "a|b" {
		t.Errorf("Pattern() = %q, want %q", re.Pattern(), "a|b")
	}
	if re.String() != "a|b" {
		t.Errorf("String() = %q, want %q", re.String(), "a|b")
	}
}
