package sphinxql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/result"
)

const showMeta = "SHOW META"

// Execute runs one find query followed by SHOW META on the same session.
func (c *Client) Execute(ctx context.Context, q db.Statement) (*result.SearchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.session()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	matches, err := scanMatches(rows)
	closeErr := rows.Close()
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	if closeErr != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: closeErr}
	}

	metaRows, err := conn.QueryContext(ctx, showMeta)
	if err != nil {
		return nil, &db.Error{Op: db.OpShowMeta, Err: err}
	}
	defer func() { _ = metaRows.Close() }()

	meta, err := scanMeta(metaRows)
	if err != nil {
		return nil, &db.Error{Op: db.OpShowMeta, Err: err}
	}
	return result.New(meta.total, meta.totalFound, matches), nil
}

// ExecuteMany sends every query with its SHOW META in one multi-statement
// round trip. Results come back in submission order, one per query.
func (c *Client) ExecuteMany(ctx context.Context, qs []db.Statement) ([]*result.SearchResult, error) {
	if len(qs) == 0 {
		return nil, nil
	}

	stmts := make([]string, 0, 2*len(qs))
	var args []any
	for _, q := range qs {
		stmts = append(stmts, q.SQL(), showMeta)
		args = append(args, q.Args()...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.session()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, strings.Join(stmts, "; "), args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer func() { _ = rows.Close() }()

	out := make([]*result.SearchResult, 0, len(qs))
	for i := range qs {
		if i > 0 && !rows.NextResultSet() {
			return nil, &db.Error{Op: db.OpSelect, Err: missingResultSet(i, rows.Err())}
		}
		matches, err := scanMatches(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}

		if !rows.NextResultSet() {
			return nil, &db.Error{Op: db.OpShowMeta, Err: missingResultSet(i, rows.Err())}
		}
		meta, err := scanMeta(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpShowMeta, Err: err}
		}
		out = append(out, result.New(meta.total, meta.totalFound, matches))
	}
	return out, nil
}

func missingResultSet(i int, err error) error {
	if err != nil {
		return fmt.Errorf("query %d: %w", i, err)
	}
	return fmt.Errorf("query %d: missing result set", i)
}

// scanMatches reads the current result set. The id and weight columns are
// lifted into the match; every other column is kept as a string attribute.
func scanMatches(rows *sql.Rows) ([]result.Match, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var matches []result.Match
	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		var (
			id     uint64
			weight int64
		)
		attrs := make(map[string]string, len(cols))
		for i, col := range cols {
			v := values[i].String
			switch col {
			case "id":
				id, err = strconv.ParseUint(v, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("parse id %q: %w", v, err)
				}
			case "weight":
				weight, err = strconv.ParseInt(v, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("parse weight %q: %w", v, err)
				}
			default:
				attrs[col] = v
			}
		}
		matches = append(matches, result.NewMatch(id, weight, attrs))
	}
	return matches, rows.Err()
}

type meta struct {
	total      int
	totalFound int
}

// scanMeta reads a SHOW META result set (Variable_name, Value).
func scanMeta(rows *sql.Rows) (meta, error) {
	var m meta
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return m, err
		}
		switch name {
		case "total":
			n, err := strconv.Atoi(value)
			if err != nil {
				return m, fmt.Errorf("parse total %q: %w", value, err)
			}
			m.total = n
		case "total_found":
			n, err := strconv.Atoi(value)
			if err != nil {
				return m, fmt.Errorf("parse total_found %q: %w", value, err)
			}
			m.totalFound = n
		}
	}
	return m, rows.Err()
}
