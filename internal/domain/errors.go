package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCompile signals criteria that cannot be rendered into the query dialect.
	ErrCompile = errors.New("compile error")
	// ErrUnsupportedSort signals a sort mode the active backend cannot express.
	ErrUnsupportedSort = fmt.Errorf("%w: unsupported sort mode", ErrCompile)
	// ErrUnknownGroupFunc signals a group function outside the known set.
	ErrUnknownGroupFunc = fmt.Errorf("%w: unknown group function", ErrCompile)
	// ErrInvalidCriteria signals malformed criteria (bad enum, missing ranking expression).
	ErrInvalidCriteria = errors.New("invalid criteria")
	// ErrNotConnected signals an execute attempt on a closed connection.
	ErrNotConnected = errors.New("connection is not open")
	// ErrModelNotFound signals an unknown search model profile.
	ErrModelNotFound = errors.New("model not found")
	// ErrSuggestionsThrottled signals that a suggestion pass was skipped by the rate limiter.
	ErrSuggestionsThrottled = errors.New("suggestions throttled")
	// ErrIndexingDisabled signals that RT index sync is switched off.
	ErrIndexingDisabled = errors.New("indexing disabled")
)

// CompileError carries the criteria field that failed to compile.
type CompileError struct {
	Field string
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *CompileError) Unwrap() error { return e.Err }
