package sphinxql

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
)

var _ db.Statement = (*CompiledQuery)(nil)

// CompiledQuery is a rendered SphinxQL SELECT. It is immutable: accessors
// return copies.
type CompiledQuery struct {
	indexes     string
	selectList  string
	conditions  []string
	args        []any
	groupBy     string
	withinGroup string
	orderBy     string
	offset      int
	limit       int
	options     []string
}

// Indexes returns the FROM clause.
func (q *CompiledQuery) Indexes() string { return q.indexes }

// Select returns the select list, including the weight column.
func (q *CompiledQuery) Select() string { return q.selectList }

// Conditions returns the WHERE predicates in render order.
func (q *CompiledQuery) Conditions() []string {
	out := make([]string, len(q.conditions))
	copy(out, q.conditions)
	return out
}

// Options returns the name=value pairs of the OPTION clause in render order.
func (q *CompiledQuery) Options() []string {
	out := make([]string, len(q.options))
	copy(out, q.options)
	return out
}

// Args returns the bound parameters in placeholder order.
func (q *CompiledQuery) Args() []any {
	out := make([]any, len(q.args))
	copy(out, q.args)
	return out
}

// SQL renders the statement.
func (q *CompiledQuery) SQL() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.selectList)
	b.WriteString(" FROM ")
	b.WriteString(q.indexes)
	if len(q.conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.conditions, " AND "))
	}
	if q.groupBy != "" {
		b.WriteString(" GROUP BY ")
		b.WriteString(q.groupBy)
	}
	if q.withinGroup != "" {
		b.WriteString(" WITHIN GROUP ORDER BY ")
		b.WriteString(q.withinGroup)
	}
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}
	if q.limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.offset))
		b.WriteString(", ")
		b.WriteString(strconv.Itoa(q.limit))
	}
	if len(q.options) > 0 {
		b.WriteString(" OPTION ")
		b.WriteString(strings.Join(q.options, ", "))
	}
	return b.String()
}
