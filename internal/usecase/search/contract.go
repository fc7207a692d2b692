package search

import (
	"context"

	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/criteria"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/result"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/suggest"
)

// Repository runs compiled criteria against the engine.
type Repository interface {
	Find(ctx context.Context, q criteria.Query) (*result.SearchResult, error)
}

// Suggester proposes corrections for low-yield queries.
type Suggester interface {
	Suggest(ctx context.Context, query string) (*suggest.Correction, error)
}
