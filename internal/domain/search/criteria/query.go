package criteria

import "strings"

// Query pairs query text with the indexes and criteria it runs under.
// Text is passed to MATCH() verbatim, so callers escape it first.
type Query struct {
	Text     string
	Indexes  []string
	Criteria *Criteria
}

// NewQuery creates a query over the given indexes (all indexes when none given).
// A nil criteria is replaced with New().
func NewQuery(text string, c *Criteria, indexes ...string) Query {
	if c == nil {
		c = New()
	}
	return Query{Text: text, Indexes: indexes, Criteria: c}
}

// IndexList returns the comma-joined index list for the FROM clause.
func (q Query) IndexList() string {
	if len(q.Indexes) == 0 {
		return AllIndexes
	}
	return strings.Join(q.Indexes, ", ")
}
