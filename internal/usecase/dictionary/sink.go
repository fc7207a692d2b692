package dictionary

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
)

// DefaultBatchSize is how many rows go into one INSERT statement of a dump.
const DefaultBatchSize = 10000

// Sink receives dictionary entries.
type Sink interface {
	Add(ctx context.Context, e Entry) error
	Close() error
}

// DumpSink writes a MySQL dump that recreates the dictionary table, for
// indexing through a plain SQL source.
type DumpSink struct {
	w       io.Writer
	table   string
	batch   int
	pending int
	started bool
	err     error
}

// NewDumpSink creates a dump writer for table. batch <= 0 uses DefaultBatchSize.
func NewDumpSink(w io.Writer, table string, batch int) (*DumpSink, error) {
	if !db.IsValidIdentifier(table) {
		return nil, fmt.Errorf("%w: table %q", db.ErrInvalidIdentifier, table)
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &DumpSink{w: w, table: table, batch: batch}, nil
}

func (s *DumpSink) header() {
	s.printf("DROP TABLE IF EXISTS %s;\n\n", s.table)
	s.printf("CREATE TABLE %s (\n"+
		"  id INTEGER PRIMARY KEY AUTO_INCREMENT NOT NULL,\n"+
		"  keyword VARCHAR(255) NOT NULL,\n"+
		"  trigrams VARCHAR(255) NOT NULL,\n"+
		"  freq INTEGER NOT NULL,\n"+
		"  len INTEGER NOT NULL,\n"+
		"  UNIQUE(keyword)\n"+
		");\n", s.table)
}

// Add appends one row, starting a new INSERT every batch rows.
func (s *DumpSink) Add(_ context.Context, e Entry) error {
	if !s.started {
		s.header()
		s.started = true
	}
	if s.pending == 0 {
		s.printf("INSERT IGNORE INTO %s VALUES\n", s.table)
	} else {
		s.printf(",\n")
	}
	s.printf("( 0, %s, %s, %d, %d )", sqlString(e.Keyword), sqlString(e.Trigrams), e.Freq, e.Len)
	s.pending++
	if s.pending == s.batch {
		s.printf(";\n")
		s.pending = 0
	}
	return s.err
}

// Close terminates the open INSERT. An empty dump still recreates the table.
func (s *DumpSink) Close() error {
	if !s.started {
		s.header()
	}
	if s.pending > 0 {
		s.printf(";\n")
		s.pending = 0
	}
	return s.err
}

func (s *DumpSink) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

var sqlStringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func sqlString(s string) string {
	return "'" + sqlStringEscaper.Replace(s) + "'"
}

// Replacer writes rows into a real-time index.
type Replacer interface {
	Replace(ctx context.Context, index string, doc db.Document) error
}

// RTSink loads entries straight into a real-time dictionary index, with ids
// assigned in input order starting at 1.
type RTSink struct {
	w      Replacer
	index  string
	nextID uint64
}

// NewRTSink creates a sink writing into index.
func NewRTSink(w Replacer, index string) *RTSink {
	return &RTSink{w: w, index: index, nextID: 1}
}

// Add replaces the row for the next id.
func (s *RTSink) Add(ctx context.Context, e Entry) error {
	doc := db.Document{
		ID: s.nextID,
		Fields: map[string]any{
			"keyword":  e.Keyword,
			"trigrams": e.Trigrams,
			"freq":     e.Freq,
			"len":      int64(e.Len),
		},
	}
	if err := s.w.Replace(ctx, s.index, doc); err != nil {
		return fmt.Errorf("write %q as %s: %w", e.Keyword, strconv.FormatUint(s.nextID, 10), err)
	}
	s.nextID++
	return nil
}

// Close is a no-op; each row is committed as it is written.
func (s *RTSink) Close() error { return nil }
