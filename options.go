package review

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

type clientConfig struct {
	driver   string // "postgres" or "sqlite"
	dsn      string
	maxConns int

	readinessTimeout time.Duration

	embedder   Embedder
	openAI     *openAIConfig
	dimensions int

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	search SearchConfig

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

type openAIConfig struct {
	apiKey  string
	baseURL string
	model   string
}

// SearchConfig tunes the cascade. Zero values keep the defaults.
type SearchConfig struct {
	SimilarityThreshold    float64
	ReviewCandidates       int
	SampleReviews          int
	FallbackMinRatingCount int
	EmbeddingTimeout       time.Duration
	DefaultMinRating       float64
	DefaultLimit           int
	MaxLimit               int
}

// WithPostgres stores the catalog in PostgreSQL with the pgvector extension.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverPostgres
		c.dsn = dsn
	})
}

// WithSQLite stores the catalog in a SQLite file. Use ":memory:" for a private
// in-memory database.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverSQLite
		c.dsn = path
	})
}

// WithMaxConns caps the PostgreSQL pool size.
func WithMaxConns(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConns = n
	})
}

// WithReadinessTimeout bounds how long New waits for the database. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithEmbedder sets a custom embedding provider. dimensions is the vector size
// it produces and the size of the stored embedding columns.
// Without an embedder the cascade runs its keyword and fallback stages only.
func WithEmbedder(e Embedder, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.dimensions = dimensions
	})
}

// WithOpenAI uses the OpenAI embeddings API (or any compatible endpoint set with
// WithOpenAIBaseURL).
func WithOpenAI(apiKey, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		if c.openAI == nil {
			c.openAI = &openAIConfig{}
		}
		c.openAI.apiKey = apiKey
		c.openAI.model = model
		c.dimensions = dimensions
	})
}

// WithOpenAIBaseURL points WithOpenAI at a compatible provider.
func WithOpenAIBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.openAI == nil {
			c.openAI = &openAIConfig{}
		}
		c.openAI.baseURL = url
	})
}

// WithEmbeddingCache caches query and catalog embeddings in Redis or Valkey.
// ttl <= 0 keeps entries forever.
func WithEmbeddingCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithSearchConfig overrides cascade tuning.
func WithSearchConfig(s SearchConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.search = s
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
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
