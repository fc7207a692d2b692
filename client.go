package sphinxsuggest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/db/sphinxql"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/criteria"
	domsuggest "github.com/kailas-cloud/sphinxsuggest/internal/domain/suggest"
	searchrepo "github.com/kailas-cloud/sphinxsuggest/internal/repository/search"
	healthuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/suggest"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Query(ctx context.Context, model, text string, page int) (*searchuc.Response, error)
	Models() []string
}

type suggestUseCase interface {
	Suggest(ctx context.Context, query string) (*domsuggest.Correction, error)
}

type indexingUseCase interface {
	Upsert(ctx context.Context, index string, doc db.Document) error
	Delete(ctx context.Context, index string, ids ...uint64) error
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the sphinxsuggest SDK entry point. It holds one engine
// connection; calls are serialized on it.
type Client struct {
	store      db.Store
	searchSvc  searchUseCase
	suggestSvc suggestUseCase
	indexSvc   indexingUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to the SphinxQL listener.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.addr == "" {
		return nil, errors.New("sphinxsuggest: listener address required (use WithSphinx)")
	}
	if err := validateModels(cfg.models); err != nil {
		return nil, err
	}

	store, err := sphinxql.NewClient(sphinxql.Config{
		Addr:           cfg.addr,
		User:           cfg.user,
		Password:       cfg.password,
		ConnectTimeout: cfg.connectTimeout,
		ReadTimeout:    cfg.readTimeout,
		WriteTimeout:   cfg.readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("sphinxsuggest: create client: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		_ = store.Shutdown()
		return nil, fmt.Errorf("sphinxsuggest: engine not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		_ = store.Shutdown()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func validateModels(models []Model) error {
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if m.Name == "" {
			return errors.New("sphinxsuggest: model name required")
		}
		if seen[m.Name] {
			return fmt.Errorf("sphinxsuggest: model %q defined twice", m.Name)
		}
		seen[m.Name] = true

		switch m.SortMode {
		case SortRelevance:
		case SortAttrAsc, SortAttrDesc, SortExtended:
			if m.SortAttribute == "" {
				return fmt.Errorf("sphinxsuggest: model %q: sort mode %q needs SortAttribute", m.Name, m.SortMode)
			}
		default:
			return fmt.Errorf("sphinxsuggest: model %q: unsupported sort mode %q", m.Name, m.SortMode)
		}
	}
	return nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()

	compiler := sphinxql.NewCompiler(int(cfg.queryTimeout / time.Millisecond))
	repo := searchrepo.New(compiler, store)

	// Keep the interfaces nil (not typed nil pointers) when suggestions are off.
	var (
		suggestSvc suggestUseCase
		suggester  searchuc.Suggester
		dictionary healthuc.DictionaryCounter
	)
	if !cfg.suggestDisabled {
		svc := suggestuc.New(repo, suggestuc.Config{
			Index:                cfg.suggest.Index,
			Indexes:              cfg.suggest.Indexes,
			LengthThreshold:      cfg.suggest.LengthThreshold,
			LevenshteinThreshold: cfg.suggest.LevenshteinThreshold,
			TopCount:             cfg.suggest.TopCount,
			MaxPerSecond:         cfg.suggest.MaxPerSecond,
		}, logger)
		suggestSvc, suggester, dictionary = svc, svc, repo
	}

	dictIndex := cfg.suggest.Index
	if dictIndex == "" {
		dictIndex = domsuggest.DefaultIndex
	}

	return &Client{
		store: store,
		searchSvc: searchuc.New(repo, suggester, toInternalModels(cfg.models), searchuc.Options{
			PartialMatch:   cfg.partialMatch,
			MinResultCount: cfg.minResultCount,
		}, logger),
		suggestSvc: suggestSvc,
		indexSvc:   indexinguc.New(store, cfg.indexing, logger),
		healthSvc:  healthuc.New(store, dictionary, dictIndex),
		obs:        obs,
	}
}

func toInternalModels(models []Model) []searchuc.Model {
	out := make([]searchuc.Model, len(models))
	for i, m := range models {
		out[i] = searchuc.Model{
			Name:           m.Name,
			Indexes:        m.Indexes,
			MaxMatches:     m.MaxMatches,
			PageSize:       m.PageSize,
			Filters:        toInternalFilters(m.Filters),
			ExcludeFilters: toInternalFilters(m.ExcludeFilters),
			Sort: searchuc.Sort{
				Attribute: m.SortAttribute,
				Mode:      criteria.SortMode(m.SortMode),
			},
		}
	}
	return out
}

func toInternalFilters(fs []Filter) []searchuc.Filter {
	if len(fs) == 0 {
		return nil
	}
	out := make([]searchuc.Filter, len(fs))
	for i, f := range fs {
		out[i] = searchuc.Filter{Attribute: f.Attribute, Values: f.Values}
	}
	return out
}

// Close releases the connection and its pool. The Client cannot be reused.
func (c *Client) Close() error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Shutdown(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Ping checks engine connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { c.obs.observe("ping", "", start, err) }(time.Now())

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Models returns the registered model names, sorted.
func (c *Client) Models() []string {
	names := c.searchSvc.Models()
	sort.Strings(names)
	return names
}

// Query searches a model and returns page (1-based). When the model finds
// fewer than the minimum result count, Suggestion holds a corrected query
// if one exists.
func (c *Client) Query(ctx context.Context, model, text string, page int) (_ *SearchResult, err error) {
	defer func(start time.Time) { c.obs.observe("query", model, start, err) }(time.Now())

	resp, err := c.searchSvc.Query(ctx, model, text, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	c.obs.suggestion(resp.Suggestion != nil)
	return fromResponse(resp), nil
}

// Suggest corrects text against the dictionary without running a search.
// It returns nil when nothing changed or suggestions are disabled.
func (c *Client) Suggest(ctx context.Context, text string) (_ *Suggestion, err error) {
	defer func(start time.Time) { c.obs.observe("suggest", "", start, err) }(time.Now())

	if c.suggestSvc == nil {
		return nil, nil
	}
	corr, err := c.suggestSvc.Suggest(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return fromCorrection(corr), nil
}

// Keywords tokenizes text with index's settings. hits adds per-keyword
// document and hit counts.
func (c *Client) Keywords(ctx context.Context, index, text string, hits bool) (_ []Keyword, err error) {
	defer func(start time.Time) { c.obs.observe("keywords", index, start, err) }(time.Now())

	kws, err := c.store.Keywords(ctx, index, text, hits)
	if err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	out := make([]Keyword, len(kws))
	for i, k := range kws {
		out[i] = Keyword{QPos: k.QPos, Tokenized: k.Tokenized, Normalized: k.Normalized, Docs: k.Docs, Hits: k.Hits}
	}
	return out, nil
}

// Snippets builds highlighted excerpts of docs for the query words.
func (c *Client) Snippets(
	ctx context.Context, index, words string, docs []string, opts SnippetOptions,
) (_ []string, err error) {
	defer func(start time.Time) { c.obs.observe("snippets", index, start, err) }(time.Now())

	out, err := c.store.Snippets(ctx, index, words, docs, db.SnippetOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("snippets: %w", err)
	}
	return out, nil
}

// Upsert writes a row into a real-time index, replacing any row with the same id.
func (c *Client) Upsert(ctx context.Context, index string, id uint64, fields map[string]any) (err error) {
	defer func(start time.Time) { c.obs.observe("upsert", index, start, err) }(time.Now())

	if err = c.indexSvc.Upsert(ctx, index, db.Document{ID: id, Fields: fields}); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// Delete removes rows from a real-time index.
func (c *Client) Delete(ctx context.Context, index string, ids ...uint64) (err error) {
	defer func(start time.Time) { c.obs.observe("delete", index, start, err) }(time.Now())

	if err = c.indexSvc.Delete(ctx, index, ids...); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Health checks the engine and the suggestion dictionary.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

func fromResponse(resp *searchuc.Response) *SearchResult {
	out := &SearchResult{
		Query:      resp.Query,
		Page:       resp.Page,
		PageSize:   resp.PageSize,
		Suggestion: fromCorrection(resp.Suggestion),
	}
	if resp.Result == nil {
		return out
	}
	out.Total = resp.Result.Total()
	out.TotalFound = resp.Result.TotalFound()
	matches := resp.Result.Matches()
	out.Matches = make([]Match, len(matches))
	for i := range matches {
		m := &matches[i]
		out.Matches[i] = Match{ID: m.ID(), Weight: m.Weight(), Attrs: m.Attrs()}
	}
	return out
}

func fromCorrection(c *domsuggest.Correction) *Suggestion {
	if c == nil {
		return nil
	}
	return &Suggestion{Text: c.Text, Query: c.Query}
}
