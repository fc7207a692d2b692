package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/result"
)

// Store is the engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	Searcher
	RTWriter
	Auxiliary
	Open(ctx context.Context) error
	Close() error
	Shutdown() error
	IsConnected() bool
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Statement is a rendered query with its bound parameters.
type Statement interface {
	SQL() string
	Args() []any
}

// Searcher executes compiled find queries.
type Searcher interface {
	Execute(ctx context.Context, q Statement) (*result.SearchResult, error)
	ExecuteMany(ctx context.Context, qs []Statement) ([]*result.SearchResult, error)
}

// RTWriter writes documents into real-time indexes.
type RTWriter interface {
	Insert(ctx context.Context, index string, doc Document) error
	Replace(ctx context.Context, index string, doc Document) error
	Delete(ctx context.Context, index string, ids ...uint64) error
}

// Auxiliary exposes the engine's tokenizer and excerpt calls.
type Auxiliary interface {
	Keywords(ctx context.Context, index, text string, hits bool) ([]Keyword, error)
	Snippets(ctx context.Context, index, words string, docs []string, opts SnippetOptions) ([]string, error)
}
