package sphinxql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
)

// Keywords tokenizes text with the index settings via CALL KEYWORDS.
// With hits set, per-keyword document and hit counts are returned too.
func (c *Client) Keywords(ctx context.Context, index, text string, hits bool) ([]db.Keyword, error) {
	if !db.IsValidIdentifier(index) {
		return nil, fmt.Errorf("%w: index %q", db.ErrInvalidIdentifier, index)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.session()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, "CALL KEYWORDS(?, ?, ?)", text, index, boolArg(hits))
	if err != nil {
		return nil, &db.Error{Op: db.OpCallKeywords, Err: err}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &db.Error{Op: db.OpCallKeywords, Err: err}
	}
	values := make([]string, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	var out []db.Keyword
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, &db.Error{Op: db.OpCallKeywords, Err: err}
		}
		var kw db.Keyword
		for i, col := range cols {
			switch col {
			case "qpos":
				kw.QPos, _ = strconv.Atoi(values[i])
			case "tokenized":
				kw.Tokenized = values[i]
			case "normalized":
				kw.Normalized = values[i]
			case "docs":
				kw.Docs, _ = strconv.Atoi(values[i])
			case "hits":
				kw.Hits, _ = strconv.Atoi(values[i])
			}
		}
		out = append(out, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpCallKeywords, Err: err}
	}
	return out, nil
}

// Snippets builds highlighted excerpts of docs for words via CALL SNIPPETS.
// One snippet is returned per document, in input order.
func (c *Client) Snippets(
	ctx context.Context, index, words string, docs []string, opts db.SnippetOptions,
) ([]string, error) {
	if !db.IsValidIdentifier(index) {
		return nil, fmt.Errorf("%w: index %q", db.ErrInvalidIdentifier, index)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	stmt, args := snippetsStatement(index, words, docs, opts)

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.session()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpCallSnippets, Err: err}
	}
	defer func() { _ = rows.Close() }()

	out := make([]string, 0, len(docs))
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, &db.Error{Op: db.OpCallSnippets, Err: err}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpCallSnippets, Err: err}
	}
	return out, nil
}

func snippetsStatement(index, words string, docs []string, opts db.SnippetOptions) (string, []any) {
	args := make([]any, 0, len(docs)+6)
	for _, d := range docs {
		args = append(args, d)
	}
	args = append(args, index, words)

	var b strings.Builder
	b.WriteString("CALL SNIPPETS((")
	b.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(docs)), ", "))
	b.WriteString("), ?, ?")
	if opts.BeforeMatch != "" {
		b.WriteString(", ? AS before_match")
		args = append(args, opts.BeforeMatch)
	}
	if opts.AfterMatch != "" {
		b.WriteString(", ? AS after_match")
		args = append(args, opts.AfterMatch)
	}
	if opts.Limit > 0 {
		b.WriteString(", ? AS limit")
		args = append(args, int64(opts.Limit))
	}
	if opts.Around > 0 {
		b.WriteString(", ? AS around")
		args = append(args, int64(opts.Around))
	}
	b.WriteString(")")
	return b.String(), args
}

func boolArg(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
