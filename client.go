package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/review/internal/db"
	dbPostgres "github.com/kailas-cloud/review/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/review/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/review/internal/db/sqlite"
	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/request"
	"github.com/kailas-cloud/review/internal/metrics"
	catalogrepo "github.com/kailas-cloud/review/internal/repository/catalog"
	"github.com/kailas-cloud/review/internal/repository/embcache"
	oaitransport "github.com/kailas-cloud/review/internal/transport/openai"
	cataloguc "github.com/kailas-cloud/review/internal/usecase/catalog"
	embeddinguc "github.com/kailas-cloud/review/internal/usecase/embedding"
	finderuc "github.com/kailas-cloud/review/internal/usecase/finder"
	ingestuc "github.com/kailas-cloud/review/internal/usecase/ingest"
	"github.com/kailas-cloud/review/internal/usecase/tools"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	// defaultDimensions sizes the embedding columns when no embedder is configured.
	defaultDimensions = 1536
)

// Client is the review SDK entry point. It is safe for concurrent use.
type Client struct {
	store      db.Store
	cache      db.Cache
	repo       *catalogrepo.Repo
	finder     *finderuc.Service
	registry   *tools.Registry
	dispatcher *oaitransport.Dispatcher
	ingest     *ingestuc.Service
	dimensions int
	obs        *observer
}

// Requirements is the product finder input.
type Requirements struct {
	// ExampleReview is a sample review or free-text description of the wanted product.
	ExampleReview string
	Category      string
	// MinRating defaults to 4 when nil.
	MinRating *float64
	// MaxRating is an inclusive ceiling; nil means none.
	MaxRating *float64
	// Limit defaults to 5 and is capped at 50.
	Limit int
}

// Stats counts catalog rows.
type Stats = catalogrepo.Stats

// LoadSummary reports what a catalog load wrote.
type LoadSummary = ingestuc.Summary

// New creates a Client, connects to the database and waits until it answers.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.dsn == "" {
		return nil, errors.New("review: database required (use WithPostgres or WithSQLite)")
	}
	if cfg.embedder != nil && cfg.openAI != nil {
		return nil, errors.New("review: WithEmbedder and WithOpenAI are mutually exclusive")
	}
	if (cfg.embedder != nil || cfg.openAI != nil) && cfg.dimensions <= 0 {
		return nil, errors.New("review: embedding dimensions must be positive")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("review: database not ready: %w", err)
	}

	c := &Client{store: store, obs: obs, dimensions: cfg.dimensions}
	if len(cfg.cacheAddrs) > 0 {
		cache, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.cacheAddrs, Password: cfg.cachePassword})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("review: create embedding cache: %w", err)
		}
		c.cache = cache
	}

	c.wire(cfg, buildEmbedder(cfg, c.cache))
	return c, nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverPostgres:
		s, err := dbPostgres.NewStore(ctx, dbPostgres.Config{DSN: cfg.dsn, MaxConns: cfg.maxConns})
		if err != nil {
			return nil, fmt.Errorf("review: create postgres store: %w", err)
		}
		return s, nil
	case driverSQLite:
		s, err := dbSQLite.NewStore(dbSQLite.Config{Path: cfg.dsn})
		if err != nil {
			return nil, fmt.Errorf("review: create sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("review: unknown driver %q", cfg.driver)
	}
}

// buildEmbedder assembles provider -> cache -> instrumented.
// Returns a nil interface when no provider is configured.
func buildEmbedder(cfg *clientConfig, cache db.Cache) domain.Embedder {
	var (
		inner    domain.Embedder
		provider = "custom"
		model    = "custom"
	)
	switch {
	case cfg.embedder != nil:
		inner = adaptEmbedder(cfg.embedder)
	case cfg.openAI != nil:
		provider, model = "openai", cfg.openAI.model
		inner = oaitransport.NewEmbedder(&oaitransport.Config{
			APIKey:     cfg.openAI.apiKey,
			BaseURL:    cfg.openAI.baseURL,
			Model:      cfg.openAI.model,
			Dimensions: cfg.dimensions,
			Provider:   provider,
			Logger:     cfg.logger,
		})
	default:
		return nil
	}

	if cache != nil {
		inner = embcache.New(inner, cache, model, cfg.cacheTTL, metrics.EmbeddingCacheTotal, cfg.logger)
	}
	return embeddinguc.NewInstrumentedEmbedder(inner, provider, model, cfg.dimensions, cfg.logger)
}

func (c *Client) wire(cfg *clientConfig, embed domain.Embedder) {
	c.repo = catalogrepo.New(c.store)

	s := cfg.search
	defaults := request.Defaults{MinRating: s.DefaultMinRating, Limit: s.DefaultLimit, MaxLimit: s.MaxLimit}
	if defaults.MinRating <= 0 {
		defaults.MinRating = request.DefaultMinRating
	}

	// Пустой embedder оставляем nil-интерфейсом: finder тогда пропускает векторные стадии.
	var finderEmb finderuc.Embedder
	var lookupEmb cataloguc.Embedder
	if embed != nil {
		finderEmb, lookupEmb = embed, embed
	}

	c.finder = finderuc.New(c.repo, finderEmb, finderuc.Config{
		SimilarityThreshold:    s.SimilarityThreshold,
		ReviewCandidates:       s.ReviewCandidates,
		SampleReviews:          s.SampleReviews,
		FallbackMinRatingCount: s.FallbackMinRatingCount,
		EmbeddingTimeout:       s.EmbeddingTimeout,
		Defaults:               defaults,
	})
	threshold := s.SimilarityThreshold
	if threshold <= 0 {
		threshold = finderuc.DefaultSimilarityThreshold
	}
	lookups := cataloguc.New(c.repo, lookupEmb, threshold)
	c.registry = tools.New(c.finder, lookups)
	c.dispatcher = oaitransport.NewDispatcher(c.registry, cfg.logger)
	c.ingest = ingestuc.New(c.repo, embed, cfg.dimensions, cfg.logger)
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Migrate creates the catalog tables and indexes if they do not exist.
func (c *Client) Migrate(ctx context.Context) (err error) {
	defer func(start time.Time) { c.obs.observe(opMigrate, start, err) }(time.Now())

	dim := c.dimensions
	if dim <= 0 {
		dim = defaultDimensions
	}
	return catalogrepo.Migrate(ctx, c.store, dim)
}

// LoadFile loads a JSON catalog export, embedding rows that have no vector.
func (c *Client) LoadFile(ctx context.Context, path string) (sum LoadSummary, err error) {
	defer func(start time.Time) { c.obs.observe(opLoad, start, err) }(time.Now())
	return c.ingest.LoadFile(ctx, path)
}

// Load loads a JSON catalog export from r.
func (c *Client) Load(ctx context.Context, r io.Reader) (sum LoadSummary, err error) {
	defer func(start time.Time) { c.obs.observe(opLoad, start, err) }(time.Now())
	return c.ingest.Load(ctx, r)
}

// Stats counts catalog rows.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	return c.repo.Stats(ctx)
}

// FindProductsByUserRequirements runs the retrieval cascade and returns its JSON
// answer. Validation problems and internal failures are part of the answer; the
// error is non-nil only if the answer cannot be encoded.
func (c *Client) FindProductsByUserRequirements(ctx context.Context, req Requirements) (out string, err error) {
	defer func(start time.Time) { c.obs.observe(opFind, start, err) }(time.Now())

	resp := c.finder.Find(ctx, finderuc.Input{
		ExampleReview: req.ExampleReview,
		Category:      req.Category,
		MinRating:     req.MinRating,
		MaxRating:     req.MaxRating,
		Limit:         req.Limit,
	})
	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("encode response: %w", err)
	}
	return string(data), nil
}

// Tools returns the tool declarations for a chat completion request.
func (c *Client) Tools() []openai.Tool {
	return oaitransport.ToolDefinitions(c.registry)
}

// InvokeTool runs a tool by name with JSON arguments.
// Returns ErrUnknownTool or ErrInvalidArguments; other failures are reported in the output.
func (c *Client) InvokeTool(ctx context.Context, name string, args json.RawMessage) (out json.RawMessage, err error) {
	defer func(start time.Time) { c.obs.observe(opInvokeTool, start, err) }(time.Now())
	return c.registry.Invoke(ctx, name, args)
}

// HandleToolCalls answers assistant tool calls with one tool message each, in order.
func (c *Client) HandleToolCalls(ctx context.Context, calls []openai.ToolCall) []openai.ChatCompletionMessage {
	defer func(start time.Time) { c.obs.observe(opToolCalls, start, nil) }(time.Now())
	return c.dispatcher.HandleAll(ctx, calls)
}
