package db

import "errors"

// Sentinel errors for engine operations.
var (
	ErrDuplicateID       = errors.New("db: duplicate id")
	ErrInvalidIdentifier = errors.New("db: invalid identifier")
	ErrEmptyDocument     = errors.New("db: document has no id")
)

// Op constants name the statement kind for error context.
const (
	OpConnect      = "CONNECT"
	OpPing         = "PING"
	OpSelect       = "SELECT"
	OpShowMeta     = "SHOW META"
	OpInsert       = "INSERT"
	OpReplace      = "REPLACE"
	OpDelete       = "DELETE"
	OpCallKeywords = "CALL KEYWORDS"
	OpCallSnippets = "CALL SNIPPETS"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
