package db

import (
	"fmt"
	"sort"
)

// Document is a single row for a real-time index. Fields holds every column
// except id.
type Document struct {
	ID     uint64
	Fields map[string]any
}

// Columns returns the column names in render order: id first, the rest sorted.
func (d Document) Columns() []string {
	cols := make([]string, 0, len(d.Fields)+1)
	cols = append(cols, "id")
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		if name == "id" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return append(cols, names...)
}

// Values returns the column values in the order of Columns.
func (d Document) Values() []any {
	cols := d.Columns()
	vals := make([]any, len(cols))
	vals[0] = int64(d.ID) //nolint:gosec // engine ids fit in int64
	for i, col := range cols[1:] {
		vals[i+1] = d.Fields[col]
	}
	return vals
}

// Validate checks the id and every column name.
func (d Document) Validate() error {
	if d.ID == 0 {
		return ErrEmptyDocument
	}
	for name := range d.Fields {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("%w: column %q", ErrInvalidIdentifier, name)
		}
	}
	return nil
}

// Keyword is one row of CALL KEYWORDS output.
type Keyword struct {
	QPos       int
	Tokenized  string
	Normalized string
	Docs       int
	Hits       int
}

// SnippetOptions are the CALL SNIPPETS options the service exposes.
// Zero values leave the engine defaults in place.
type SnippetOptions struct {
	BeforeMatch string
	AfterMatch  string
	Limit       int
	Around      int
}

// IsValidIdentifier returns true if s matches @?[a-zA-Z0-9_]+.
func IsValidIdentifier(s string) bool {
	if len(s) > 1 && s[0] == '@' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' {
			return false
		}
	}
	return true
}
