package suggest

import (
	"context"

	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/criteria"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/result"
)

// Searcher is the compile+execute path shared by the dictionary lookup and
// the existence probe.
type Searcher interface {
	Find(ctx context.Context, q criteria.Query) (*result.SearchResult, error)
	Count(ctx context.Context, text string, indexes ...string) (int, error)
}
