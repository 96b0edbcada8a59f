package tools

import (
	"context"

	"github.com/kailas-cloud/review/internal/domain/search/result"
	"github.com/kailas-cloud/review/internal/usecase/catalog"
	"github.com/kailas-cloud/review/internal/usecase/finder"
)

// Finder runs the requirement cascade.
type Finder interface {
	Find(ctx context.Context, in finder.Input) result.Response
}

// Lookups answers the catalog lookup tools.
type Lookups interface {
	FindByName(ctx context.Context, name string) (catalog.ProductDetails, error)
	Popular(ctx context.Context, category string, limit int) (catalog.ProductList, error)
	BestRated(ctx context.Context, category string, limit, minReviews int) (catalog.ProductList, error)
	FindByDescription(ctx context.Context, description string) (catalog.DescriptionMatches, error)
	ReviewDetails(ctx context.Context, productID string, limit int) (catalog.ReviewDetails, error)
}
