// Package suggest proposes spelling corrections for low-yield queries using a
// trigram dictionary index.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/sphinxsuggest/internal/domain"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/criteria"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/escape"
	domsuggest "github.com/kailas-cloud/sphinxsuggest/internal/domain/suggest"
	"github.com/kailas-cloud/sphinxsuggest/internal/metrics"
)

// Config tunes the suggestion workflow. Zero values take the package defaults.
type Config struct {
	// Index is the trigram dictionary index.
	Index string
	// Indexes are the production indexes a candidate must match to be offered.
	// Empty means every index.
	Indexes              []string
	LengthThreshold      int
	LevenshteinThreshold int
	TopCount             int
	// MaxPerSecond caps suggestion passes. 0 disables the limit.
	MaxPerSecond float64
}

func (c *Config) applyDefaults() {
	if c.Index == "" {
		c.Index = domsuggest.DefaultIndex
	}
	if c.LengthThreshold <= 0 {
		c.LengthThreshold = domsuggest.DefaultLengthThreshold
	}
	if c.LevenshteinThreshold <= 0 {
		c.LevenshteinThreshold = domsuggest.DefaultLevenshteinThreshold
	}
	if c.TopCount <= 0 {
		c.TopCount = domsuggest.DefaultTopCount
	}
}

// Service builds "did you mean" corrections.
type Service struct {
	search  Searcher
	cfg     Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a suggestion service.
func New(search Searcher, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	s := &Service{search: search, cfg: cfg, logger: logger}
	if cfg.MaxPerSecond > 0 {
		burst := int(cfg.MaxPerSecond)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxPerSecond), burst)
	}
	return s
}

// Suggest corrects each word of query against the dictionary. It returns nil
// when no word changed. Per-word lookup failures degrade to keeping the word;
// only a cancelled context is returned as an error.
func (s *Service) Suggest(ctx context.Context, query string) (*domsuggest.Correction, error) {
	if err := s.allow(); err != nil {
		s.logger.Debug("Suggestion pass skipped", zap.Error(err))
		metrics.SuggestionsTotal.WithLabelValues("throttled").Inc()
		return nil, nil
	}

	var b domsuggest.Builder
	for _, word := range strings.Fields(query) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("suggest: %w", err)
		}
		if replacement, ok := s.correct(ctx, word); ok {
			b.Replace(replacement)
		} else {
			b.Keep(word)
		}
	}

	c := b.Correction()
	if c == nil {
		metrics.SuggestionsTotal.WithLabelValues("unchanged").Inc()
		return nil, nil
	}
	metrics.SuggestionsTotal.WithLabelValues("corrected").Inc()
	return c, nil
}

func (s *Service) allow() error {
	if s.limiter != nil && !s.limiter.Allow() {
		return domain.ErrSuggestionsThrottled
	}
	return nil
}

// correct returns the replacement for word, or false to keep it.
func (s *Service) correct(ctx context.Context, word string) (string, bool) {
	candidates, err := s.Candidates(ctx, word)
	if err != nil {
		s.logger.Warn("Suggestion lookup failed", zap.String("word", word), zap.Error(err))
		metrics.SuggestionErrorsTotal.WithLabelValues("lookup").Inc()
		return "", false
	}
	if len(candidates) == 0 || candidates[0].Distance == 0 {
		return "", false
	}

	for _, c := range candidates {
		n, err := s.search.Count(ctx, escape.Query(c.Keyword), s.cfg.Indexes...)
		if err != nil {
			s.logger.Warn("Suggestion probe failed",
				zap.String("word", word),
				zap.String("candidate", c.Keyword),
				zap.Error(err),
			)
			metrics.SuggestionErrorsTotal.WithLabelValues("probe").Inc()
			return "", false
		}
		if n > 0 {
			return c.Keyword, true
		}
	}
	return "", false
}

// Candidates looks word up in the trigram dictionary and keeps the keywords
// within the edit-distance threshold, in rank order.
func (s *Service) Candidates(ctx context.Context, word string) ([]domsuggest.Suggestion, error) {
	res, err := s.search.Find(ctx, s.lookupQuery(word))
	if err != nil {
		return nil, err
	}

	var out []domsuggest.Suggestion
	for _, m := range res.Matches() {
		keyword, ok := m.Attr("keyword")
		if !ok {
			continue
		}
		dist := domsuggest.Distance(word, keyword)
		if dist > s.cfg.LevenshteinThreshold {
			continue
		}
		rank, _ := m.IntAttr("myrank")
		out = append(out, domsuggest.Suggestion{Keyword: keyword, Rank: rank, Distance: dist})
	}
	return out, nil
}

func (s *Service) lookupQuery(word string) criteria.Query {
	length := domsuggest.Length(word)
	delta := s.cfg.LengthThreshold

	c := criteria.New()
	c.Select = fmt.Sprintf("*, WEIGHT() + %d - ABS(len - %d) AS myrank", delta, length)
	c.MatchMode = criteria.MatchExtended2
	c.RankingMode = criteria.RankWordCount
	c.SortMode = criteria.SortExtended
	c.AddOrder("myrank", criteria.Desc).AddOrder("freq", criteria.Desc)
	c.AddRange("len", float64(length-delta), float64(length+delta))
	c.Limit = s.cfg.TopCount

	text := `"` + escape.Query(domsuggest.Trigrams(word)) + `"/1`
	return criteria.NewQuery(text, c, s.cfg.Index)
}
