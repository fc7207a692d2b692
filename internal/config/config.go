package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the sphinxsuggest service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Sphinx   SphinxConfig   `yaml:"sphinx"`
	Search   SearchConfig   `yaml:"search"`
	Suggest  SuggestConfig  `yaml:"suggest"`
	Models   []ModelConfig  `yaml:"models"`
	Indexing IndexingConfig `yaml:"indexing"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SphinxConfig holds SphinxQL listener settings.
type SphinxConfig struct {
	Addr             string `yaml:"addr"` // host:port of the mysql41 listener
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`
	ReadTimeoutMs    int    `yaml:"read_timeout_ms"`
	QueryTimeoutMs   int    `yaml:"query_timeout_ms"` // default max_query_time
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds service-wide search knobs.
type SearchConfig struct {
	PartialMatch      *bool `yaml:"partial_match"` // default true
	DefaultPageSize   int   `yaml:"default_page_size"`
	DefaultMaxMatches int   `yaml:"max_matches"`
	MinResultCount    int   `yaml:"min_result_count"`
}

// SuggestConfig holds suggestion engine settings.
type SuggestConfig struct {
	Enabled              *bool    `yaml:"enabled"` // default true
	Index                string   `yaml:"index"`
	Indexes              []string `yaml:"indexes"` // existence-probe indexes; empty = all
	LengthThreshold      int      `yaml:"length_threshold"`
	LevenshteinThreshold int      `yaml:"levenshtein_threshold"`
	TopCount             int      `yaml:"top_count"`
	MaxPerSecond         float64  `yaml:"max_per_second"` // 0 = unlimited
}

// ModelConfig is a named search profile.
type ModelConfig struct {
	Name           string         `yaml:"name"`
	Indexes        []string       `yaml:"indexes"`
	MaxMatches     int            `yaml:"max_matches"`
	PageSize       int            `yaml:"page_size"`
	Filters        []FilterConfig `yaml:"filters"`
	ExcludeFilters []FilterConfig `yaml:"exclude_filters"`
	Sort           SortConfig     `yaml:"sort"`
}

// FilterConfig restricts an attribute to a set of values.
type FilterConfig struct {
	Attribute string `yaml:"attribute"`
	Values    []any  `yaml:"values"`
}

// SortConfig is a model's result order.
type SortConfig struct {
	Attribute string `yaml:"attribute"`
	Mode      string `yaml:"mode"` // relevance (default), attr_asc, attr_desc, extended
}

// IndexingConfig holds real-time index sync settings.
type IndexingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Sphinx.ConnectTimeoutMs <= 0 {
		c.Sphinx.ConnectTimeoutMs = 1000
	}
	if c.Sphinx.ReadTimeoutMs <= 0 {
		c.Sphinx.ReadTimeoutMs = 5000
	}
	if c.Sphinx.QueryTimeoutMs <= 0 {
		c.Sphinx.QueryTimeoutMs = 3000
	}
	if c.Sphinx.ReadinessTimeout <= 0 {
		c.Sphinx.ReadinessTimeout = 10
	}
	if c.Search.PartialMatch == nil {
		c.Search.PartialMatch = boolPtr(true)
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.DefaultMaxMatches <= 0 {
		c.Search.DefaultMaxMatches = 1000
	}
	if c.Search.MinResultCount <= 0 {
		c.Search.MinResultCount = 10
	}
	if c.Suggest.Enabled == nil {
		c.Suggest.Enabled = boolPtr(true)
	}
	if c.Suggest.Index == "" {
		c.Suggest.Index = "suggest"
	}
	if c.Suggest.LengthThreshold <= 0 {
		c.Suggest.LengthThreshold = 3
	}
	if c.Suggest.LevenshteinThreshold <= 0 {
		c.Suggest.LevenshteinThreshold = 2
	}
	if c.Suggest.TopCount <= 0 {
		c.Suggest.TopCount = 10
	}
	for i := range c.Models {
		m := &c.Models[i]
		if m.PageSize <= 0 {
			m.PageSize = c.Search.DefaultPageSize
		}
		if m.MaxMatches <= 0 {
			m.MaxMatches = c.Search.DefaultMaxMatches
		}
		if m.Sort.Mode == "" {
			m.Sort.Mode = "relevance"
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Sphinx.Addr == "" {
		return fmt.Errorf("sphinx.addr is required")
	}
	if c.Suggest.MaxPerSecond < 0 {
		return fmt.Errorf("suggest.max_per_second must not be negative, got %v", c.Suggest.MaxPerSecond)
	}

	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("models[%d].name is required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("models.%s is defined twice", m.Name)
		}
		seen[m.Name] = true

		switch m.Sort.Mode {
		case "", "relevance":
		case "attr_asc", "attr_desc", "extended":
			if m.Sort.Attribute == "" {
				return fmt.Errorf("models.%s.sort.attribute is required for mode %q", m.Name, m.Sort.Mode)
			}
		default:
			return fmt.Errorf(
				"models.%s.sort.mode must be relevance, attr_asc, attr_desc or extended, got %q",
				m.Name, m.Sort.Mode,
			)
		}
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
