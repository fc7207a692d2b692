// Package indexing keeps real-time indexes in step with the records they mirror.
package indexing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain"
	"github.com/kailas-cloud/sphinxsuggest/internal/metrics"
)

// Service syncs records into RT indexes.
type Service struct {
	writer  Writer
	enabled bool
	logger  *zap.Logger
}

// New creates an indexing service. A disabled service never touches the engine.
func New(writer Writer, enabled bool, logger *zap.Logger) *Service {
	return &Service{writer: writer, enabled: enabled, logger: logger}
}

// Enabled reports whether writes reach the engine.
func (s *Service) Enabled() bool { return s.enabled }

// Upsert inserts doc, replacing the stored row when the id is already taken.
func (s *Service) Upsert(ctx context.Context, index string, doc db.Document) error {
	if !s.enabled {
		return domain.ErrIndexingDisabled
	}

	err := s.writer.Insert(ctx, index, doc)
	if errors.Is(err, db.ErrDuplicateID) {
		s.logger.Debug("Document exists, replacing",
			zap.String("index", index),
			zap.Uint64("id", doc.ID),
		)
		err = s.writer.Replace(ctx, index, doc)
		record("replace", err)
		if err != nil {
			return fmt.Errorf("replace %d in %s: %w", doc.ID, index, err)
		}
		return nil
	}
	record("insert", err)
	if err != nil {
		return fmt.Errorf("insert %d into %s: %w", doc.ID, index, err)
	}
	return nil
}

// Delete removes documents by id.
func (s *Service) Delete(ctx context.Context, index string, ids ...uint64) error {
	if !s.enabled {
		return domain.ErrIndexingDisabled
	}

	err := s.writer.Delete(ctx, index, ids...)
	record("delete", err)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", index, err)
	}
	return nil
}

func record(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.IndexingWritesTotal.WithLabelValues(op, status).Inc()
}
