package search

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/db/sphinxql"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/criteria"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/result"
	"github.com/kailas-cloud/sphinxsuggest/internal/metrics"
)

// compiler is the consumer interface for query compilation (ISP).
type compiler interface {
	Compile(q criteria.Query) (*sphinxql.CompiledQuery, error)
}

// store is the consumer interface for query execution (ISP).
type store interface {
	Execute(ctx context.Context, q db.Statement) (*result.SearchResult, error)
	ExecuteMany(ctx context.Context, qs []db.Statement) ([]*result.SearchResult, error)
}

// Repo compiles criteria and runs them against the engine.
// It implements usecase/search.Repository and usecase/suggest.Searcher.
type Repo struct {
	compiler compiler
	store    store
}

// New creates a search repository.
func New(c compiler, s store) *Repo {
	return &Repo{compiler: c, store: s}
}

// Find compiles and executes one query.
func (r *Repo) Find(ctx context.Context, q criteria.Query) (res *result.SearchResult, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("find", start, err) }(time.Now())

	cq, err := r.compiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile query on %s: %w", q.IndexList(), err)
	}
	res, err = r.store.Execute(ctx, cq)
	if err != nil {
		return nil, fmt.Errorf("find on %s: %w", q.IndexList(), err)
	}
	return res, nil
}

// FindMany compiles every query and executes them in one batch.
// Results are in input order. A compile error fails the whole batch before
// anything is sent.
func (r *Repo) FindMany(ctx context.Context, qs []criteria.Query) (res []*result.SearchResult, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("find_many", start, err) }(time.Now())

	stmts := make([]db.Statement, len(qs))
	for i, q := range qs {
		cq, err := r.compiler.Compile(q)
		if err != nil {
			return nil, fmt.Errorf("compile query %d on %s: %w", i, q.IndexList(), err)
		}
		stmts[i] = cq
	}

	res, err = r.store.ExecuteMany(ctx, stmts)
	if err != nil {
		return nil, fmt.Errorf("find many: %w", err)
	}
	if len(res) != len(qs) {
		return nil, fmt.Errorf("find many: got %d results for %d queries", len(res), len(qs))
	}
	return res, nil
}

// Count returns how many documents match text on indexes (total_found).
// text is used verbatim, so callers escape it.
func (r *Repo) Count(ctx context.Context, text string, indexes ...string) (n int, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("count", start, err) }(time.Now())

	c := criteria.New()
	c.Limit = 1

	q := criteria.NewQuery(text, c, indexes...)
	cq, err := r.compiler.Compile(q)
	if err != nil {
		return 0, fmt.Errorf("compile count on %s: %w", q.IndexList(), err)
	}
	res, err := r.store.Execute(ctx, cq)
	if err != nil {
		return 0, fmt.Errorf("count on %s: %w", q.IndexList(), err)
	}
	return res.TotalFound(), nil
}
