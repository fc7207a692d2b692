package escape

import (
	"strings"
	"testing"
)

func TestQuery_CleanStringUnchanged(t *testing.T) {
	for _, s := range []string{"", "hello world", "cat dog 42", "naïve café"} {
		if got := Query(s); got != s {
			t.Errorf("Query(%q) = %q, want unchanged", s, got)
		}
		if got := Query(Query(s)); got != s {
			t.Errorf("Query twice on clean %q = %q", s, got)
		}
	}
}

func TestQuery_EscapesEverySpecialChar(t *testing.T) {
	for _, r := range SpecialChars {
		in := "a" + string(r) + "b"
		want := `a\` + string(r) + "b"
		if got := Query(in); got != want {
			t.Errorf("Query(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuery_BackslashNotDoubleEscaped(t *testing.T) {
	got := Query(`a\(b`)
	want := `a\\\(b`
	if got != want {
		t.Errorf("Query = %q, want %q", got, want)
	}
}

func TestQuery_Mixed(t *testing.T) {
	got := Query(`"rock & roll" -live`)
	want := `\"rock \& roll\" \-live`
	if got != want {
		t.Errorf("Query = %q, want %q", got, want)
	}
}

func TestQuery_URLQueryStripped(t *testing.T) {
	got := Query("http://example.com/path?utm_source=x&y=1")
	want := `http:\/\/example.com\/path`
	if got != want {
		t.Errorf("Query = %q, want %q", got, want)
	}
}

func TestStripURLQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://shop.example.org/item?id=5", "https://shop.example.org/item"},
		{"http://example.com/path", "http://example.com/path"},
		{"http://example.com/?", "http://example.com/?"},
		{"what? no url", "what? no url"},
		{"httpfoo?bar=1", "httpfoo?bar=1"},
	}
	for _, tc := range tests {
		if got := StripURLQuery(tc.in); got != tc.want {
			t.Errorf("StripURLQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWildcard(t *testing.T) {
	if got := Wildcard("cat dog"); got != "*cat dog*" {
		t.Errorf("Wildcard = %q", got)
	}
	if got := Wildcard(""); got != "" {
		t.Errorf("Wildcard(empty) = %q", got)
	}
}

func TestDisplay_RoundTrip(t *testing.T) {
	inputs := []string{"plain words", `"quoted" -minus`, `back\slash`, "a/b=c"}
	for _, in := range inputs {
		compiled := Wildcard(Query(in))
		if got := Display(compiled); got != in {
			t.Errorf("Display(%q) = %q, want %q", compiled, got, in)
		}
	}
}

func TestSpecialChars_Complete(t *testing.T) {
	if len([]rune(SpecialChars)) != 14 {
		t.Fatalf("SpecialChars has %d runes, want 14", len([]rune(SpecialChars)))
	}
	if !strings.ContainsRune(SpecialChars, '\\') {
		t.Error("backslash missing")
	}
}
