package dictionary

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
)

func TestCleanKeyword(t *testing.T) {
	tests := []struct{ in, want string }{
		{"world", "world"},
		{"don't", "dont"},
		{"new_york", "new york"},
		{"*star*", "star"},
		{"'_'", ""},
	}
	for _, tc := range tests {
		if got := CleanKeyword(tc.in); got != tc.want {
			t.Errorf("CleanKeyword(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseLine(t *testing.T) {
	opts := DefaultParseOptions()
	tests := []struct {
		name   string
		line   string
		want   Entry
		wantOK bool
	}{
		{"valid", "world\t1\t500\n", NewEntry("world", 500), true},
		{"cleaned", "new_york\tx\t42", NewEntry("new york", 42), true},
		{"below floor", "rare\t1\t9", Entry{}, false},
		{"at floor", "ok\t1\t10", NewEntry("ok", 10), true},
		{"wrong column count", "world\t500", Entry{}, false},
		{"non-numeric freq", "world\t1\tmany", Entry{}, false},
		{"empty keyword", "''\t1\t100", Entry{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := opts.ParseLine(tc.line)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if got != tc.want {
				t.Errorf("entry = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestNewEntry(t *testing.T) {
	e := NewEntry("cat", 30)
	if e.Trigrams != "__c _ca cat at_ t__" || e.Len != 3 {
		t.Errorf("entry = %+v", e)
	}
}

func TestParseOptions_Validate(t *testing.T) {
	bad := []ParseOptions{
		{KeywordColumn: 0, FreqColumn: 1, Columns: 0, Delimiter: ","},
		{KeywordColumn: 4, FreqColumn: 1, Columns: 4, Delimiter: ","},
		{KeywordColumn: 0, FreqColumn: -1, Columns: 2, Delimiter: ","},
		{KeywordColumn: 0, FreqColumn: 1, Columns: 2},
	}
	for i, o := range bad {
		if err := o.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
	if err := DefaultParseOptions().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestDumpSink_Batches(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewDumpSink(&buf, "suggest", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	for _, kw := range []string{"a", "b", "c"} {
		if err := sink.Add(ctx, NewEntry(kw, 10)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "DROP TABLE IF EXISTS suggest;\n") {
		t.Errorf("dump should start with DROP TABLE:\n%s", out)
	}
	if n := strings.Count(out, "INSERT IGNORE INTO suggest VALUES"); n != 2 {
		t.Errorf("INSERT statements = %d, want 2", n)
	}
	wantTail := "INSERT IGNORE INTO suggest VALUES\n( 0, 'c', '__c _c_ c__', 10, 1 );\n"
	if !strings.HasSuffix(out, wantTail) {
		t.Errorf("dump tail:\n%s", out)
	}
	if !strings.Contains(out, "( 0, 'a', '__a _a_ a__', 10, 1 ),\n( 0, 'b', '__b _b_ b__', 10, 1 );\n") {
		t.Errorf("first batch malformed:\n%s", out)
	}
}

func TestDumpSink_EscapesBackslash(t *testing.T) {
	var buf bytes.Buffer
	sink, _ := NewDumpSink(&buf, "suggest", 0)
	_ = sink.Add(context.Background(), Entry{Keyword: `a\b`, Trigrams: "x", Freq: 10, Len: 3})
	_ = sink.Close()
	if !strings.Contains(buf.String(), `'a\\b'`) {
		t.Errorf("backslash not escaped:\n%s", buf.String())
	}
}

func TestDumpSink_BadTable(t *testing.T) {
	if _, err := NewDumpSink(&bytes.Buffer{}, "suggest; DROP", 0); !errors.Is(err, db.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

type mockReplacer struct {
	docs []db.Document
	err  error
}

func (m *mockReplacer) Replace(_ context.Context, _ string, doc db.Document) error {
	if m.err != nil {
		return m.err
	}
	m.docs = append(m.docs, doc)
	return nil
}

func TestBuild_RTSink(t *testing.T) {
	input := "world\t1\t500\nrare\t1\t3\nbroken line\nnaïve\t1\t20\n"
	w := &mockReplacer{}
	b, err := NewBuilder(DefaultParseOptions(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := b.Build(context.Background(), strings.NewReader(input), NewRTSink(w, "suggest"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Lines != 4 || stats.Written != 2 || stats.Skipped != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(w.docs) != 2 {
		t.Fatalf("docs = %d", len(w.docs))
	}
	if w.docs[0].ID != 1 || w.docs[1].ID != 2 {
		t.Errorf("ids = %d, %d", w.docs[0].ID, w.docs[1].ID)
	}
	if w.docs[1].Fields["len"] != int64(5) || w.docs[1].Fields["keyword"] != "naïve" {
		t.Errorf("fields = %v", w.docs[1].Fields)
	}
}

func TestBuild_SinkErrorStops(t *testing.T) {
	w := &mockReplacer{err: errors.New("engine down")}
	b, _ := NewBuilder(DefaultParseOptions(), zap.NewNop())

	_, err := b.Build(context.Background(), strings.NewReader("world\t1\t500\n"), NewRTSink(w, "suggest"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestNewBuilder_InvalidOptions(t *testing.T) {
	if _, err := NewBuilder(ParseOptions{}, zap.NewNop()); err == nil {
		t.Fatal("expected error")
	}
}
