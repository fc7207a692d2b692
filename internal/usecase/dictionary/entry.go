package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sphinxsuggest/internal/domain/suggest"
)

// Entry is one dictionary row.
type Entry struct {
	Keyword  string
	Trigrams string
	Freq     int64
	Len      int
}

// NewEntry derives the trigram and length columns for keyword.
func NewEntry(keyword string, freq int64) Entry {
	return Entry{
		Keyword:  keyword,
		Trigrams: suggest.Trigrams(keyword),
		Freq:     freq,
		Len:      suggest.Length(keyword),
	}
}

// ParseOptions describe the wordlist layout.
type ParseOptions struct {
	KeywordColumn int
	FreqColumn    int
	// Columns is the exact field count of a valid line; other lines are skipped.
	Columns   int
	Delimiter string
	MinFreq   int64
}

// DefaultParseOptions match a tab-separated "keyword<TAB>x<TAB>freq" frequency list.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		KeywordColumn: 0,
		FreqColumn:    2,
		Columns:       3,
		Delimiter:     "\t",
		MinFreq:       10,
	}
}

// Validate checks the column layout.
func (o ParseOptions) Validate() error {
	if o.Columns <= 0 {
		return fmt.Errorf("column count must be positive, got %d", o.Columns)
	}
	if o.KeywordColumn < 0 || o.KeywordColumn >= o.Columns {
		return fmt.Errorf("keyword column %d outside 0..%d", o.KeywordColumn, o.Columns-1)
	}
	if o.FreqColumn < 0 || o.FreqColumn >= o.Columns {
		return fmt.Errorf("freq column %d outside 0..%d", o.FreqColumn, o.Columns-1)
	}
	if o.Delimiter == "" {
		return fmt.Errorf("delimiter is required")
	}
	return nil
}

var keywordCleaner = strings.NewReplacer("'", "", "*", "", "_", " ")

// CleanKeyword drops quote and wildcard characters and turns underscores into spaces.
func CleanKeyword(s string) string {
	return strings.TrimSpace(keywordCleaner.Replace(s))
}

// ParseLine turns one wordlist line into an entry. ok is false for lines that
// are malformed, empty after cleaning, or below the frequency floor.
func (o ParseOptions) ParseLine(line string) (Entry, bool) {
	fields := strings.Split(strings.TrimSpace(line), o.Delimiter)
	if len(fields) != o.Columns {
		return Entry{}, false
	}
	freq, err := strconv.ParseInt(strings.TrimSpace(fields[o.FreqColumn]), 10, 64)
	if err != nil || freq < o.MinFreq {
		return Entry{}, false
	}
	keyword := CleanKeyword(fields[o.KeywordColumn])
	if keyword == "" {
		return Entry{}, false
	}
	return NewEntry(keyword, freq), true
}

// Scan reads a wordlist and calls fn for every accepted entry, in input order.
// It returns the number of lines read.
func (o ParseOptions) Scan(r io.Reader, fn func(Entry) error) (int, error) {
	sc := bufio.NewScanner(r)
	lines := 0
	for sc.Scan() {
		lines++
		e, ok := o.ParseLine(sc.Text())
		if !ok {
			continue
		}
		if err := fn(e); err != nil {
			return lines, err
		}
	}
	if err := sc.Err(); err != nil {
		return lines, fmt.Errorf("read wordlist: %w", err)
	}
	return lines, nil
}
