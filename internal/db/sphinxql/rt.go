package sphinxql

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
)

// Insert adds a document to a real-time index. A taken id yields db.ErrDuplicateID.
func (c *Client) Insert(ctx context.Context, index string, doc db.Document) error {
	return c.write(ctx, db.OpInsert, index, doc)
}

// Replace inserts or overwrites a document in a real-time index.
func (c *Client) Replace(ctx context.Context, index string, doc db.Document) error {
	return c.write(ctx, db.OpReplace, index, doc)
}

func (c *Client) write(ctx context.Context, op, index string, doc db.Document) error {
	if !db.IsValidIdentifier(index) {
		return fmt.Errorf("%w: index %q", db.ErrInvalidIdentifier, index)
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	stmt, args := writeStatement(op, index, doc)

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.session()
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, stmt, args...); err != nil {
		if isDuplicateID(err) {
			err = fmt.Errorf("%w: %w", db.ErrDuplicateID, err)
		}
		return &db.Error{Op: op, Err: err}
	}
	return nil
}

func writeStatement(op, index string, doc db.Document) (string, []any) {
	cols := doc.Columns()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := op + " INTO " + index + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")"
	return stmt, doc.Values()
}

// Delete removes documents from a real-time index by id.
func (c *Client) Delete(ctx context.Context, index string, ids ...uint64) error {
	if !db.IsValidIdentifier(index) {
		return fmt.Errorf("%w: index %q", db.ErrInvalidIdentifier, index)
	}
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = idArg(id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	stmt := "DELETE FROM " + index + " WHERE id IN (" + placeholders + ")"

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.session()
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, stmt, args...); err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	return nil
}

func isDuplicateID(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "duplicate id")
}
