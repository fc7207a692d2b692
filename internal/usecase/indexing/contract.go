package indexing

import (
	"context"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
)

// Writer writes rows into real-time indexes.
type Writer interface {
	Insert(ctx context.Context, index string, doc db.Document) error
	Replace(ctx context.Context, index string, doc db.Document) error
	Delete(ctx context.Context, index string, ids ...uint64) error
}
