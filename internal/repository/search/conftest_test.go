package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/db/sphinxql"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/result"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	executeFn     func(ctx context.Context, q db.Statement) (*result.SearchResult, error)
	executeManyFn func(ctx context.Context, qs []db.Statement) ([]*result.SearchResult, error)
}

func (m *mockStore) Execute(ctx context.Context, q db.Statement) (*result.SearchResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, q)
	}
	return result.New(0, 0, nil), nil
}

func (m *mockStore) ExecuteMany(ctx context.Context, qs []db.Statement) ([]*result.SearchResult, error) {
	if m.executeManyFn != nil {
		return m.executeManyFn(ctx, qs)
	}
	out := make([]*result.SearchResult, len(qs))
	for i := range qs {
		out[i] = result.New(0, 0, nil)
	}
	return out, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(sphinxql.NewCompiler(3000), ms), ms
}
