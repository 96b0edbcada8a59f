// Package finder runs the product retrieval cascade: review and product vector
// similarity, review and product keyword matching, then a best-rated fallback.
package finder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/method"
	"github.com/kailas-cloud/review/internal/domain/search/request"
	"github.com/kailas-cloud/review/internal/domain/search/result"
	"github.com/kailas-cloud/review/internal/logger"
	"github.com/kailas-cloud/review/internal/metrics"
)

// Cascade tuning defaults.
const (
	DefaultSimilarityThreshold    = 0.3
	DefaultReviewCandidates       = 20
	DefaultSampleReviews          = 3
	DefaultFallbackMinRatingCount = 10
	DefaultEmbeddingTimeout       = 10 * time.Second
)

// Config tunes the cascade.
type Config struct {
	// SimilarityThreshold is the exclusive cosine distance bound of both vector stages.
	SimilarityThreshold float64
	// ReviewCandidates is how many nearest reviews the review vector stage groups.
	ReviewCandidates int
	// SampleReviews is the number of evidence reviews attached per product.
	SampleReviews int
	// FallbackMinRatingCount applies to the best-rated fallback without a category.
	FallbackMinRatingCount int
	EmbeddingTimeout       time.Duration
	Defaults               request.Defaults
}

// DefaultConfig returns the standard cascade settings.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold:    DefaultSimilarityThreshold,
		ReviewCandidates:       DefaultReviewCandidates,
		SampleReviews:          DefaultSampleReviews,
		FallbackMinRatingCount: DefaultFallbackMinRatingCount,
		EmbeddingTimeout:       DefaultEmbeddingTimeout,
		Defaults:               request.Standard,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	if c.ReviewCandidates <= 0 {
		c.ReviewCandidates = d.ReviewCandidates
	}
	if c.SampleReviews <= 0 {
		c.SampleReviews = d.SampleReviews
	}
	if c.FallbackMinRatingCount <= 0 {
		c.FallbackMinRatingCount = d.FallbackMinRatingCount
	}
	if c.EmbeddingTimeout <= 0 {
		c.EmbeddingTimeout = d.EmbeddingTimeout
	}
	if c.Defaults.Limit <= 0 {
		c.Defaults.Limit = request.DefaultLimit
	}
	if c.Defaults.MaxLimit <= 0 {
		c.Defaults.MaxLimit = request.MaxLimit
	}
}

// Input is the raw cascade input as received from a tool call.
type Input struct {
	ExampleReview string   `json:"example_review"`
	Category      string   `json:"category,omitempty"`
	MinRating     *float64 `json:"min_rating,omitempty"`
	MaxRating     *float64 `json:"max_rating,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

// Service finds products matching an example review.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	repo  Repository
	embed Embedder
	cfg   Config
}

// New creates a finder. embed may be nil: vector stages are then skipped.
func New(repo Repository, embed Embedder, cfg Config) *Service {
	cfg.applyDefaults()
	return &Service{repo: repo, embed: embed, cfg: cfg}
}

// Find validates the input and runs the cascade. It never returns an error:
// every failure is expressed as a response.
func (s *Service) Find(ctx context.Context, in Input) result.Response {
	req, err := s.cfg.Defaults.New(in.ExampleReview, in.Category, in.MinRating, in.MaxRating, in.Limit)
	if err != nil {
		logger.FromContext(ctx).Debug("Rejected product requirements", zap.Error(err))
		resp := result.Invalid(validationMessage(err))
		s.recordResult(&resp)
		return resp
	}
	return s.Run(ctx, &req)
}

// Run executes the stages in order and returns the first non-empty stage result.
// Stage errors before the fallback count as no match. A fallback error or a panic
// yields the failure response.
func (s *Service) Run(ctx context.Context, req *request.Requirements) (resp result.Response) {
	log := logger.FromContext(ctx).With(
		zap.String("category", req.Category().Raw()),
		zap.Float64("min_rating", req.MinRating()),
		zap.Int("limit", req.Limit()),
	)

	defer func() {
		if p := recover(); p != nil {
			log.Error("Product cascade panicked", zap.Any("panic", p), zap.Stack("stack"))
			resp = result.Failed()
		}
		s.recordResult(&resp)
	}()

	c := newCascade(s, req, log)
	for _, st := range c.stages() {
		start := time.Now()
		products, err := st.run(ctx)
		elapsed := time.Since(start)
		metrics.StageDuration.WithLabelValues(st.method.String()).Observe(elapsed.Seconds())

		switch {
		case errors.Is(err, errSkipped):
			s.recordStage(st.method, metrics.OutcomeSkipped)
			log.Debug("Stage skipped", zap.Stringer("stage", st.method), zap.Error(err))
		case err != nil && st.method == method.BestRated:
			s.recordStage(st.method, metrics.OutcomeError)
			log.Error("Fallback stage failed", zap.Stringer("stage", st.method), zap.Error(err))
			return result.Failed()
		case err != nil:
			s.recordStage(st.method, metrics.OutcomeError)
			log.Warn("Stage failed", zap.Stringer("stage", st.method),
				zap.Duration("duration", elapsed), zap.Error(err))
		case len(products) == 0:
			s.recordStage(st.method, metrics.OutcomeNoMatch)
			log.Debug("Stage found nothing", zap.Stringer("stage", st.method), zap.Duration("duration", elapsed))
		default:
			s.recordStage(st.method, metrics.OutcomeMatch)
			log.Debug("Stage matched", zap.Stringer("stage", st.method),
				zap.Int("matches", len(products)), zap.Duration("duration", elapsed))
			return result.Matched(st.method, req.ExampleReview(), products)
		}
	}

	return result.Exhausted(req.ExampleReview())
}

func (s *Service) recordStage(m method.Method, outcome string) {
	metrics.StageAttemptsTotal.WithLabelValues(m.String(), outcome).Inc()
}

func (s *Service) recordResult(resp *result.Response) {
	label := resp.Kind().String()
	if resp.Kind() == result.KindMatched {
		label = resp.Method().String()
	}
	metrics.CascadeResultsTotal.WithLabelValues(label).Inc()
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrRequirementsMissing):
		return result.MissingMessage
	case errors.Is(err, domain.ErrInvalidRatingBounds):
		return fmt.Sprintf("Invalid rating bounds: %v", domain.ErrInvalidRatingBounds)
	default:
		return fmt.Sprintf("Invalid requirements: %v", err)
	}
}
