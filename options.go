package sphinxsuggest

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addr           string
	user           string
	password       string
	connectTimeout time.Duration
	readTimeout    time.Duration
	queryTimeout   time.Duration

	models         []Model
	partialMatch   bool
	minResultCount int

	suggest         SuggestOptions
	suggestDisabled bool
	indexing        bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		connectTimeout: time.Second,
		readTimeout:    5 * time.Second,
		queryTimeout:   3 * time.Second,
		partialMatch:   true,
	}
}

// WithSphinx sets the SphinxQL listener address (host:port). Required.
func WithSphinx(addr string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addr = addr
	})
}

// WithCredentials sets the user and password sent on connect.
func WithCredentials(user, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.user = user
		c.password = password
	})
}

// WithTimeouts sets the dial and read/write timeouts.
// Defaults: 1s connect, 5s read.
func WithTimeouts(connect, read time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.connectTimeout = connect
		c.readTimeout = read
	})
}

// WithQueryTimeout sets the max_query_time applied to every search.
// Default: 3s.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithModel registers a named search profile. Can be given several times.
func WithModel(m Model) Option {
	return optionFunc(func(c *clientConfig) {
		c.models = append(c.models, m)
	})
}

// WithPartialMatch toggles wrapping the query text in wildcards.
// Default: enabled.
func WithPartialMatch(enabled bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.partialMatch = enabled
	})
}

// WithMinResultCount sets the result count below which a suggestion is
// computed. Default: 10.
func WithMinResultCount(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minResultCount = n
	})
}

// WithSuggestions tunes the suggestion engine. Zero fields keep defaults.
func WithSuggestions(o SuggestOptions) Option {
	return optionFunc(func(c *clientConfig) {
		c.suggest = o
		c.suggestDisabled = false
	})
}

// WithoutSuggestions turns "did you mean" off.
func WithoutSuggestions() Option {
	return optionFunc(func(c *clientConfig) {
		c.suggestDisabled = true
	})
}

// WithIndexing enables Upsert and Delete against real-time indexes.
// Without it both return ErrIndexingDisabled.
func WithIndexing() Option {
	return optionFunc(func(c *clientConfig) {
		c.indexing = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
