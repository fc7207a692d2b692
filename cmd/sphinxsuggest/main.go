package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sphinxsuggest/internal/config"
	"github.com/kailas-cloud/sphinxsuggest/internal/db/sphinxql"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/criteria"
	logpkg "github.com/kailas-cloud/sphinxsuggest/internal/logger"
	"github.com/kailas-cloud/sphinxsuggest/internal/metrics"
	searchrepo "github.com/kailas-cloud/sphinxsuggest/internal/repository/search"
	chiTransport "github.com/kailas-cloud/sphinxsuggest/internal/transport/chi"
	healthuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/suggest"
	"github.com/kailas-cloud/sphinxsuggest/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, "sphinxsuggest", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sphinxsuggest API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("sphinx_addr", cfg.Sphinx.Addr),
		zap.Int("models", len(cfg.Models)),
	)

	client, err := sphinxql.NewClient(sphinxql.Config{
		Addr:           cfg.Sphinx.Addr,
		User:           cfg.Sphinx.User,
		Password:       cfg.Sphinx.Password,
		ConnectTimeout: time.Duration(cfg.Sphinx.ConnectTimeoutMs) * time.Millisecond,
		ReadTimeout:    time.Duration(cfg.Sphinx.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout:   time.Duration(cfg.Sphinx.ReadTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		logger.Fatal("Failed to create search engine client", zap.Error(err))
	}
	defer func() { _ = client.Shutdown() }()

	ctx := context.Background()
	if err := client.WaitForReady(ctx, time.Duration(cfg.Sphinx.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Search engine not ready", zap.Error(err))
	}
	logger.Info("Connected to search engine")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	repo := searchrepo.New(sphinxql.NewCompiler(cfg.Sphinx.QueryTimeoutMs), client)

	// Pass a nil interface (not a typed nil pointer) when suggestions are off.
	var suggester searchuc.Suggester
	if *cfg.Suggest.Enabled {
		suggester = suggestuc.New(repo, suggestuc.Config{
			Index:                cfg.Suggest.Index,
			Indexes:              cfg.Suggest.Indexes,
			LengthThreshold:      cfg.Suggest.LengthThreshold,
			LevenshteinThreshold: cfg.Suggest.LevenshteinThreshold,
			TopCount:             cfg.Suggest.TopCount,
			MaxPerSecond:         cfg.Suggest.MaxPerSecond,
		}, logger.Named("suggest"))
	}

	searchSvc := searchuc.New(repo, suggester, modelsFromConfig(cfg.Models), searchuc.Options{
		PartialMatch:      *cfg.Search.PartialMatch,
		MinResultCount:    cfg.Search.MinResultCount,
		DefaultPageSize:   cfg.Search.DefaultPageSize,
		DefaultMaxMatches: cfg.Search.DefaultMaxMatches,
	}, logger.Named("search"))
	indexingSvc := indexinguc.New(client, cfg.Indexing.Enabled, logger.Named("indexing"))

	var dictionary healthuc.DictionaryCounter
	if suggester != nil {
		dictionary = repo
	}
	healthSvc := healthuc.New(client, dictionary, cfg.Suggest.Index)

	server := chiTransport.NewServer(searchSvc, indexingSvc, client, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", addr),
			zap.Strings("models", searchSvc.Models()),
			zap.Bool("indexing", indexingSvc.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// modelsFromConfig maps configured search profiles onto service models.
func modelsFromConfig(in []config.ModelConfig) []searchuc.Model {
	out := make([]searchuc.Model, len(in))
	for i, m := range in {
		model := searchuc.Model{
			Name:       m.Name,
			Indexes:    m.Indexes,
			MaxMatches: m.MaxMatches,
			PageSize:   m.PageSize,
			Sort:       searchuc.Sort{Attribute: m.Sort.Attribute},
		}
		if m.Sort.Mode != "relevance" {
			model.Sort.Mode = criteria.SortMode(m.Sort.Mode)
		}
		for _, f := range m.Filters {
			model.Filters = append(model.Filters, searchuc.Filter{Attribute: f.Attribute, Values: f.Values})
		}
		for _, f := range m.ExcludeFilters {
			model.ExcludeFilters = append(model.ExcludeFilters, searchuc.Filter{Attribute: f.Attribute, Values: f.Values})
		}
		out[i] = model
	}
	return out
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", chi.RouteContext(r.Context()).RoutePattern()),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
