package catalog

import (
	"context"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/criteria"
	"github.com/kailas-cloud/review/internal/domain/search/filter"
	"github.com/kailas-cloud/review/internal/domain/search/result"
)

// Repository defines the storage contract for catalog lookups.
type Repository interface {
	FindByTitle(ctx context.Context, name string, limit int) ([]result.Product, error)
	TopReviews(ctx context.Context, productID string, limit int) ([]result.Review, error)
	Popular(ctx context.Context, category filter.Category, limit int) ([]result.Product, error)
	BestRatedWithReviews(ctx context.Context, category filter.Category, minReviews, limit int) ([]result.Product, error)
	Product(ctx context.Context, id string) (result.Product, error)
	RatingDistribution(ctx context.Context, productID string) ([]domain.RatingBucket, error)
	ProductVectorMatches(ctx context.Context, c *criteria.ProductVector) ([]result.Product, error)
}

// Embedder vectorizes lookup text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
