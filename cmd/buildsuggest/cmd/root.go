package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sphinxsuggest/internal/config"
	"github.com/kailas-cloud/sphinxsuggest/internal/db/sphinxql"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/suggest"
	logpkg "github.com/kailas-cloud/sphinxsuggest/internal/logger"
	"github.com/kailas-cloud/sphinxsuggest/internal/usecase/dictionary"
	"github.com/kailas-cloud/sphinxsuggest/internal/version"
)

type options struct {
	columns   string
	delimiter string
	count     int
	minFreq   int64
	table     string
	batch     int
	input     string
	logLevel  string

	rt       bool
	addr     string
	user     string
	password string
	timeout  time.Duration
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	defaults := dictionary.DefaultParseOptions()
	opts := &options{}

	root := &cobra.Command{
		Use:   "buildsuggest",
		Short: "Build the trigram suggestion dictionary from a keyword frequency list",
		Long: "Reads a delimited wordlist (stdin by default), keeps keywords seen at least\n" +
			"--min-freq times and writes them with their trigrams either as a MySQL dump\n" +
			"on stdout or, with --rt, into a real-time index over SphinxQL.\n\n" +
			"  indextool --dumpdict products | buildsuggest --columns 0,2 --delimiter , --count 4 | mysql shop",
		Version:      version.String(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := root.Flags()
	f.StringVar(&opts.columns, "columns", fmt.Sprintf("%d,%d", defaults.KeywordColumn, defaults.FreqColumn),
		"keyword and frequency column positions, zero-based")
	f.StringVar(&opts.delimiter, "delimiter", `\t`, `field delimiter; escapes such as \t are accepted`)
	f.IntVar(&opts.count, "count", defaults.Columns, "exact number of fields on a valid line")
	f.Int64Var(&opts.minFreq, "min-freq", defaults.MinFreq, "skip keywords seen fewer times")
	f.StringVar(&opts.table, "table", suggest.DefaultIndex, "dictionary table or RT index name")
	f.IntVar(&opts.batch, "batch", dictionary.DefaultBatchSize, "rows per INSERT statement in dump mode")
	f.StringVarP(&opts.input, "input", "i", "-", "wordlist file, - for stdin")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	f.BoolVar(&opts.rt, "rt", false, "write into a real-time index instead of printing a dump")
	f.StringVar(&opts.addr, "addr", envOr("SPHINX_ADDR", "127.0.0.1:9306"), "SphinxQL listener for --rt")
	f.StringVar(&opts.user, "user", "", "SphinxQL user for --rt")
	f.StringVar(&opts.password, "password", os.Getenv("SPHINX_PASSWORD"), "SphinxQL password for --rt")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Second, "how long to wait for the listener with --rt")

	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func run(cmd *cobra.Command, opts *options) error {
	parse, err := opts.parseOptions()
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(config.GetEnv(), "buildsuggest", opts.logLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	builder, err := dictionary.NewBuilder(parse, logger)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, opts.input)
	if err != nil {
		return err
	}
	defer closeIn()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closeSink, err := opts.sink(ctx, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}
	defer closeSink()

	stats, err := builder.Build(ctx, in, sink)
	if err != nil {
		return err
	}
	logger.Debug("Build finished", zap.Int("written", stats.Written), zap.String("table", opts.table))
	return nil
}

func (o *options) parseOptions() (dictionary.ParseOptions, error) {
	p := dictionary.DefaultParseOptions()

	kw, freq, err := parseColumns(o.columns)
	if err != nil {
		return p, err
	}
	delim, err := parseDelimiter(o.delimiter)
	if err != nil {
		return p, err
	}

	p.KeywordColumn = kw
	p.FreqColumn = freq
	p.Columns = o.count
	p.Delimiter = delim
	p.MinFreq = o.minFreq
	return p, p.Validate()
}

func (o *options) sink(ctx context.Context, out io.Writer, logger *zap.Logger) (dictionary.Sink, func(), error) {
	if !o.rt {
		s, err := dictionary.NewDumpSink(out, o.table, o.batch)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}

	client, err := sphinxql.NewClient(sphinxql.Config{
		Addr:           o.addr,
		User:           o.user,
		Password:       o.password,
		ConnectTimeout: time.Second,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := client.WaitForReady(ctx, o.timeout); err != nil {
		_ = client.Shutdown()
		return nil, nil, fmt.Errorf("connect %s: %w", o.addr, err)
	}
	logger.Info("Writing into RT index", zap.String("addr", o.addr), zap.String("index", o.table))

	return dictionary.NewRTSink(client, o.table), func() { _ = client.Shutdown() }, nil
}

// parseColumns reads a "keyword,freq" position pair.
func parseColumns(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("--columns must be two positions like 0,2, got %q", s)
	}
	kw, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("--columns keyword position: %w", err)
	}
	freq, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("--columns frequency position: %w", err)
	}
	return kw, freq, nil
}

// parseDelimiter resolves backslash escapes so a shell-friendly \t works.
func parseDelimiter(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	d, err := strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
	if err != nil {
		return "", fmt.Errorf("--delimiter %q: %w", s, err)
	}
	return d, nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path) //nolint:gosec // path is an operator-supplied CLI argument
	if err != nil {
		return nil, nil, fmt.Errorf("open wordlist: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
