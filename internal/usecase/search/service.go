package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sphinxsuggest/internal/domain"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/criteria"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/escape"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/result"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/suggest"
)

// Options are the service-wide search knobs.
type Options struct {
	PartialMatch      bool
	MinResultCount    int
	DefaultPageSize   int
	DefaultMaxMatches int
}

// Response is one page of results plus an optional spelling correction.
type Response struct {
	// Query is the search text as the user typed it, without escaping.
	Query      string
	Result     *result.SearchResult
	Page       int
	PageSize   int
	Suggestion *suggest.Correction
}

// Service runs model searches and asks for suggestions when they come back thin.
type Service struct {
	repo      Repository
	suggester Suggester
	models    map[string]Model
	opts      Options
	logger    *zap.Logger
}

// New creates a search service. suggester may be nil to disable suggestions.
func New(repo Repository, suggester Suggester, models []Model, opts Options, logger *zap.Logger) *Service {
	if opts.MinResultCount <= 0 {
		opts.MinResultCount = suggest.DefaultMinResultCount
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 20
	}
	if opts.DefaultMaxMatches <= 0 {
		opts.DefaultMaxMatches = 1000
	}

	byName := make(map[string]Model, len(models))
	for _, m := range models {
		if m.PageSize <= 0 {
			m.PageSize = opts.DefaultPageSize
		}
		if m.MaxMatches <= 0 {
			m.MaxMatches = opts.DefaultMaxMatches
		}
		byName[m.Name] = m
	}
	return &Service{repo: repo, suggester: suggester, models: byName, opts: opts, logger: logger}
}

// Models returns the configured model names.
func (s *Service) Models() []string {
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	return names
}

// Query searches model for text and returns the requested page (1-based).
func (s *Service) Query(ctx context.Context, modelName, text string, page int) (*Response, error) {
	model, ok := s.models[modelName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, modelName)
	}
	if page < 1 {
		page = 1
	}

	q := escape.Query(text)
	if s.opts.PartialMatch {
		q = escape.Wildcard(q)
	}

	res, err := s.repo.Find(ctx, criteria.NewQuery(q, model.buildCriteria(page), model.Indexes...))
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", modelName, err)
	}

	resp := &Response{
		Query:    escape.Display(q),
		Result:   res,
		Page:     page,
		PageSize: model.PageSize,
	}

	if s.suggester != nil && res.TotalFound() < s.opts.MinResultCount {
		correction, err := s.suggester.Suggest(ctx, text)
		if err != nil {
			s.logger.Warn("Suggestions unavailable", zap.String("model", modelName), zap.Error(err))
		}
		resp.Suggestion = correction
	}

	return resp, nil
}
