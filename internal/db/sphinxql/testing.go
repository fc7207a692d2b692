package sphinxql

import "database/sql"

// NewClientForTest creates a Client over the provided pool (test-only).
// Call Open before use, as with NewClient.
func NewClientForTest(pool *sql.DB) *Client {
	return &Client{pool: pool}
}
