package finder

import (
	"context"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/criteria"
	"github.com/kailas-cloud/review/internal/domain/search/result"
)

// Repository defines the storage contract of the cascade stages.
type Repository interface {
	ReviewVectorMatches(ctx context.Context, c *criteria.ReviewVector) ([]result.Product, error)
	SimilarReviews(
		ctx context.Context, productID string, embedding []float32, threshold float64, limit int,
	) ([]result.Review, error)
	ProductVectorMatches(ctx context.Context, c *criteria.ProductVector) ([]result.Product, error)
	ReviewKeywordMatches(ctx context.Context, c *criteria.ReviewKeyword) ([]result.Product, error)
	KeywordReviews(
		ctx context.Context, productID string, c *criteria.ReviewKeyword, limit int,
	) ([]result.Review, error)
	ProductKeywordMatches(ctx context.Context, c *criteria.ProductKeyword) ([]result.Product, error)
	BestRated(ctx context.Context, c *criteria.BestRated) ([]result.Product, error)
}

// Embedder vectorizes the example review.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
