package sphinxsuggest

import (
	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrCompile           = domain.ErrCompile
	ErrUnsupportedSort   = domain.ErrUnsupportedSort
	ErrUnknownGroupFunc  = domain.ErrUnknownGroupFunc
	ErrInvalidCriteria   = domain.ErrInvalidCriteria
	ErrNotConnected      = domain.ErrNotConnected
	ErrModelNotFound     = domain.ErrModelNotFound
	ErrIndexingDisabled  = domain.ErrIndexingDisabled
	ErrInvalidIdentifier = db.ErrInvalidIdentifier
	ErrEmptyDocument     = db.ErrEmptyDocument
)

// CompileError carries the criteria field that failed to compile.
// Use errors.As() to extract it.
type CompileError = domain.CompileError
