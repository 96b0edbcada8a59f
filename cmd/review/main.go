package main

import (
	"context"
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

	"github.com/kailas-cloud/review/internal/config"
	"github.com/kailas-cloud/review/internal/db"
	dbPostgres "github.com/kailas-cloud/review/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/review/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/review/internal/db/sqlite"
	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/review/internal/logger"
	"github.com/kailas-cloud/review/internal/metrics"
	catalogrepo "github.com/kailas-cloud/review/internal/repository/catalog"
	"github.com/kailas-cloud/review/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/review/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/review/internal/transport/openai"
	cataloguc "github.com/kailas-cloud/review/internal/usecase/catalog"
	embeddinguc "github.com/kailas-cloud/review/internal/usecase/embedding"
	finderuc "github.com/kailas-cloud/review/internal/usecase/finder"
	healthuc "github.com/kailas-cloud/review/internal/usecase/health"
	"github.com/kailas-cloud/review/internal/usecase/tools"
	"github.com/kailas-cloud/review/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting review API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("embedding_enabled", cfg.Embedding.Enabled()),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	ctx := context.Background()

	store, err := newStore(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	if err := catalogrepo.Migrate(ctx, store, cfg.Database.Dimensions); err != nil {
		logger.Fatal("Failed to migrate catalog schema", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterCascadeMetrics()

	// Optional embedding cache
	var cache db.Cache
	if cfg.Cache.Enabled {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create embedding cache", zap.Error(err))
		}
		defer redisStore.Close()
		cache = redisStore
	}

	// Embedder chain — composition root. Nil when no provider is configured:
	// the cascade then answers from keyword and fallback stages only.
	var (
		embedder domain.Embedder
		provider *openaiTransport.Embedder
	)
	if cfg.Embedding.Enabled() {
		provider = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
		embedder = buildEmbedder(provider, cache, &cfg, logger)
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Warn("Embedding provider not configured, vector stages disabled")
	}

	// Repositories and use cases
	repo := catalogrepo.New(store)

	var (
		finderEmb finderuc.Embedder
		lookupEmb cataloguc.Embedder
	)
	if embedder != nil {
		finderEmb, lookupEmb = embedder, embedder
	}
	finderSvc := finderuc.New(repo, finderEmb, finderConfig(&cfg.Search))
	lookupSvc := cataloguc.New(repo, lookupEmb, cfg.Search.SimilarityThreshold)
	registry := tools.New(finderSvc, lookupSvc)
	dispatcher := openaiTransport.NewDispatcher(registry, logger)

	// Health service. Typed nil pointers must not reach the interfaces.
	var (
		cachePinger healthuc.Pinger
		embChecker  healthuc.EmbeddingChecker
	)
	if cache != nil {
		cachePinger = cache
	}
	if provider != nil {
		embChecker = provider
	}
	healthSvc := healthuc.New(store, cachePinger, embChecker)

	server := chiTransport.NewServer(registry, dispatcher, healthSvc, logger)

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
		logger.Info("Starting HTTP server", zap.String("addr", addr))
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

// newStore opens the catalog store for the configured driver.
func newStore(ctx context.Context, cfg *config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return dbPostgres.NewStore(ctx, dbPostgres.Config{
			DSN:      cfg.DSN,
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
	case config.DriverSQLite:
		return dbSQLite.NewStore(dbSQLite.Config{Path: cfg.DSN})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(
	base *openaiTransport.Embedder,
	cache db.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = base
	if cache != nil {
		embedder = embcache.New(
			base, cache, cfg.Embedding.Model, cfg.Cache.TTL(), metrics.EmbeddingCacheTotal, logger,
		)
	}
	return embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Dimensions, logger,
	)
}

func finderConfig(s *config.SearchConfig) finderuc.Config {
	return finderuc.Config{
		SimilarityThreshold:    s.SimilarityThreshold,
		ReviewCandidates:       s.ReviewCandidates,
		SampleReviews:          s.SampleReviews,
		FallbackMinRatingCount: s.FallbackMinRatingCount,
		EmbeddingTimeout:       s.EmbeddingTimeout(),
		Defaults: request.Defaults{
			MinRating: s.DefaultMinRating,
			Limit:     s.DefaultLimit,
			MaxLimit:  s.MaxLimit,
		},
	}
}
