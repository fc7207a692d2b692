// Package dictionary builds the trigram suggestion dictionary from a
// keyword frequency list.
package dictionary

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Stats summarizes a build.
type Stats struct {
	Lines    int
	Written  int
	Skipped  int
	Duration time.Duration
}

// Builder streams a wordlist into a sink.
type Builder struct {
	opts   ParseOptions
	logger *zap.Logger
}

// NewBuilder creates a builder.
func NewBuilder(opts ParseOptions, logger *zap.Logger) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	return &Builder{opts: opts, logger: logger}, nil
}

// Build reads r and writes every accepted entry to sink, then closes it.
func (b *Builder) Build(ctx context.Context, r io.Reader, sink Sink) (Stats, error) {
	start := time.Now()
	var stats Stats

	lines, err := b.opts.Scan(r, func(e Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Add(ctx, e); err != nil {
			return err
		}
		stats.Written++
		return nil
	})
	stats.Lines = lines
	stats.Skipped = lines - stats.Written
	if err != nil {
		_ = sink.Close()
		return stats, fmt.Errorf("build dictionary: %w", err)
	}
	if err := sink.Close(); err != nil {
		return stats, fmt.Errorf("close sink: %w", err)
	}
	stats.Duration = time.Since(start)

	b.logger.Info("Dictionary built",
		zap.Int("lines", stats.Lines),
		zap.Int("written", stats.Written),
		zap.Int("skipped", stats.Skipped),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}
