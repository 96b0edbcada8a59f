package finder

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/criteria"
	"github.com/kailas-cloud/review/internal/domain/search/keyword"
	"github.com/kailas-cloud/review/internal/domain/search/method"
	"github.com/kailas-cloud/review/internal/domain/search/request"
	"github.com/kailas-cloud/review/internal/domain/search/result"
)

// errSkipped marks a stage that could not run (no query embedding).
var errSkipped = errors.New("stage skipped")

type stage struct {
	method method.Method
	run    func(ctx context.Context) ([]result.Product, error)
}

// cascade is the state of a single Run call.
type cascade struct {
	svc    *Service
	req    *request.Requirements
	common criteria.Common
	log    *zap.Logger

	embedded  bool
	embedding []float32
	embedErr  error

	extracted bool
	keywords  []string
}

func newCascade(s *Service, req *request.Requirements, log *zap.Logger) *cascade {
	return &cascade{svc: s, req: req, common: criteria.FromRequirements(req), log: log}
}

func (c *cascade) stages() []stage {
	return []stage{
		{method.ReviewVector, c.reviewVector},
		{method.ProductVector, c.productVector},
		{method.ReviewKeyword, c.reviewKeyword},
		{method.ProductKeyword, c.productKeyword},
		{method.BestRated, c.bestRated},
	}
}

// queryEmbedding embeds the example review once per cascade. A failure is remembered
// so the second vector stage is skipped without another provider call.
func (c *cascade) queryEmbedding(ctx context.Context) ([]float32, error) {
	if c.embedded {
		return c.embedding, c.embedErr
	}
	c.embedded = true

	if c.svc.embed == nil {
		c.embedErr = fmt.Errorf("no embedding provider configured: %w", errSkipped)
		return nil, c.embedErr
	}

	ectx, cancel := context.WithTimeout(ctx, c.svc.cfg.EmbeddingTimeout)
	defer cancel()

	res, err := c.svc.embed.Embed(ectx, c.req.ExampleReview())
	switch {
	case err != nil && errors.Is(ectx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		err = fmt.Errorf("%w after %s: %w", domain.ErrEmbeddingTimeout, c.svc.cfg.EmbeddingTimeout, errSkipped)
	case err != nil:
		err = fmt.Errorf("vectorize example review: %w: %w", err, errSkipped)
	case len(res.Embedding) == 0:
		err = fmt.Errorf("empty query embedding: %w", errSkipped)
	}
	if err != nil {
		c.log.Warn("Query embedding unavailable, vector stages skipped", zap.Error(err))
		c.embedErr = err
		return nil, err
	}

	c.embedding = res.Embedding
	return c.embedding, nil
}

// extractKeywords runs once, after the vector stages.
func (c *cascade) extractKeywords() []string {
	if !c.extracted {
		c.extracted = true
		c.keywords = keyword.Extract(c.req.ExampleReview())
		c.log.Debug("Extracted keywords", zap.Strings("keywords", c.keywords))
	}
	return c.keywords
}

func (c *cascade) reviewVector(ctx context.Context) ([]result.Product, error) {
	emb, err := c.queryEmbedding(ctx)
	if err != nil {
		return nil, err
	}
	cfg := c.svc.cfg

	products, err := c.svc.repo.ReviewVectorMatches(ctx, &criteria.ReviewVector{
		Common:     c.common,
		Embedding:  emb,
		Threshold:  cfg.SimilarityThreshold,
		Candidates: cfg.ReviewCandidates,
	})
	if err != nil {
		return nil, err
	}

	// One query per product, sequential.
	for i := range products {
		p := &products[i]
		p.SearchMethod = method.ReviewVector
		samples, err := c.svc.repo.SimilarReviews(ctx, p.ProductID, emb, cfg.SimilarityThreshold, cfg.SampleReviews)
		if err != nil {
			return nil, fmt.Errorf("sample reviews of %s: %w", p.ProductID, err)
		}
		p.SampleMatchingReviews = samples
	}
	return products, nil
}

func (c *cascade) productVector(ctx context.Context) ([]result.Product, error) {
	emb, err := c.queryEmbedding(ctx)
	if err != nil {
		return nil, err
	}

	products, err := c.svc.repo.ProductVectorMatches(ctx, &criteria.ProductVector{
		Common:    c.common,
		Embedding: emb,
		Threshold: c.svc.cfg.SimilarityThreshold,
	})
	if err != nil {
		return nil, err
	}
	tag(products, method.ProductVector)
	return products, nil
}

func (c *cascade) reviewKeyword(ctx context.Context) ([]result.Product, error) {
	kws := c.extractKeywords()
	if len(kws) == 0 {
		return nil, nil
	}
	crit := &criteria.ReviewKeyword{Common: c.common, Keywords: kws}

	products, err := c.svc.repo.ReviewKeywordMatches(ctx, crit)
	if err != nil {
		return nil, err
	}

	for i := range products {
		p := &products[i]
		p.SearchMethod = method.ReviewKeyword
		samples, err := c.svc.repo.KeywordReviews(ctx, p.ProductID, crit, c.svc.cfg.SampleReviews)
		if err != nil {
			return nil, fmt.Errorf("sample reviews of %s: %w", p.ProductID, err)
		}
		p.SampleMatchingReviews = samples
	}
	return products, nil
}

func (c *cascade) productKeyword(ctx context.Context) ([]result.Product, error) {
	kws := c.extractKeywords()
	if len(kws) == 0 {
		return nil, nil
	}

	products, err := c.svc.repo.ProductKeywordMatches(ctx, &criteria.ProductKeyword{Common: c.common, Keywords: kws})
	if err != nil {
		return nil, err
	}
	tag(products, method.ProductKeyword)
	return products, nil
}

func (c *cascade) bestRated(ctx context.Context) ([]result.Product, error) {
	products, err := c.svc.repo.BestRated(ctx, &criteria.BestRated{
		Common:         c.common,
		MinRatingCount: c.svc.cfg.FallbackMinRatingCount,
	})
	if err != nil {
		return nil, err
	}

	m := method.OverallBest
	if c.common.Category.HasCategory() {
		m = method.CategoryBest
	}
	tag(products, m)
	return products, nil
}

func tag(products []result.Product, m method.Method) {
	for i := range products {
		products[i].SearchMethod = m
	}
}
