// Package catalog implements the product lookup tools that complement the
// requirement cascade: by name, by description, popularity, rating and review details.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/criteria"
	"github.com/kailas-cloud/review/internal/domain/search/filter"
	"github.com/kailas-cloud/review/internal/domain/search/method"
	"github.com/kailas-cloud/review/internal/domain/search/request"
	"github.com/kailas-cloud/review/internal/domain/search/result"
	"github.com/kailas-cloud/review/internal/logger"
)

// Lookup defaults.
const (
	NameLimit           = 5
	NameReviews         = 10
	DescriptionLimit    = 5
	DefaultListLimit    = 10
	DefaultMinReviews   = 5
	DefaultReviewsLimit = 5
	AllCategories       = "All categories"
)

// Messages returned when a lookup finds nothing.
const (
	NoNameMatch        = "No products found matching the name"
	NoDescriptionMatch = "No products found matching the description"
)

// ErrNoEmbedder signals that a vector lookup was requested without an embedding provider.
var ErrNoEmbedder = errors.New("embedding provider is not configured")

// ProductDetails is the find_product_by_name output.
type ProductDetails struct {
	Product      *result.Product  `json:"product,omitempty"`
	Reviews      []result.Review  `json:"reviews,omitempty"`
	Alternatives []result.Product `json:"alternatives,omitempty"`
	Message      string           `json:"message,omitempty"`
}

// ProductList is the output of the popularity and rating lookups.
type ProductList struct {
	Category   string           `json:"category"`
	MinReviews *int             `json:"min_reviews,omitempty"`
	Count      int              `json:"count"`
	Products   []result.Product `json:"products"`
}

// DescriptionMatches is the find_product_by_description output.
type DescriptionMatches struct {
	SearchMethod method.Method    `json:"search_method,omitempty"`
	MatchesFound int              `json:"matches_found"`
	BestMatch    *result.Product  `json:"best_match,omitempty"`
	OtherMatches []result.Product `json:"other_matches,omitempty"`
	Message      string           `json:"message,omitempty"`
}

// ReviewDetails is the get_product_reviews_details output.
type ReviewDetails struct {
	Product            ProductSummary        `json:"product"`
	RatingDistribution []domain.RatingBucket `json:"rating_distribution"`
	TopReviews         []result.Review       `json:"top_reviews"`
}

// ProductSummary identifies a product in review details.
type ProductSummary struct {
	ProductID     string  `json:"product_id"`
	Title         string  `json:"title"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
	Category      string  `json:"category,omitempty"`
}

// Service answers catalog lookups.
type Service struct {
	repo      Repository
	embed     Embedder
	threshold float64
}

// New creates a lookup service. threshold is the cosine distance bound of
// description and name-fallback similarity. embed may be nil.
func New(repo Repository, embed Embedder, threshold float64) *Service {
	return &Service{repo: repo, embed: embed, threshold: threshold}
}

// FindByName returns the most rated product whose title contains name, its most helpful
// reviews and the other title matches. Without a title match it falls back to product
// similarity with the name as query.
func (s *Service) FindByName(ctx context.Context, name string) (ProductDetails, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ProductDetails{}, fmt.Errorf("product name is required: %w", domain.ErrInvalidArguments)
	}

	products, err := s.repo.FindByTitle(ctx, name, NameLimit)
	if err != nil {
		return ProductDetails{}, fmt.Errorf("find by title: %w", err)
	}

	if len(products) == 0 && s.embed != nil {
		products, err = s.similar(ctx, name, NameLimit)
		if err != nil {
			// Title search already answered; the vector fallback is best effort.
			logger.FromContext(ctx).Warn("Name similarity fallback failed", zap.Error(err))
			products = nil
		}
	}
	if len(products) == 0 {
		return ProductDetails{Message: NoNameMatch}, nil
	}

	best := products[0]
	reviews, err := s.repo.TopReviews(ctx, best.ProductID, NameReviews)
	if err != nil {
		return ProductDetails{}, fmt.Errorf("top reviews: %w", err)
	}

	return ProductDetails{
		Product:      &best,
		Reviews:      nonNil(reviews),
		Alternatives: nonNil(products[1:]),
	}, nil
}

// Popular returns the most reviewed products, optionally within a category.
func (s *Service) Popular(ctx context.Context, category string, limit int) (ProductList, error) {
	cat, err := filter.NewCategory(category)
	if err != nil {
		return ProductList{}, err
	}
	products, err := s.repo.Popular(ctx, cat, listLimit(limit))
	if err != nil {
		return ProductList{}, fmt.Errorf("popular products: %w", err)
	}
	return ProductList{
		Category: categoryLabel(cat),
		Count:    len(products),
		Products: nonNil(products),
	}, nil
}

// BestRated returns the best rated products with at least minReviews ratings.
// minReviews < 0 means the default.
func (s *Service) BestRated(ctx context.Context, category string, limit, minReviews int) (ProductList, error) {
	if minReviews < 0 {
		minReviews = DefaultMinReviews
	}
	cat, err := filter.NewCategory(category)
	if err != nil {
		return ProductList{}, err
	}
	products, err := s.repo.BestRatedWithReviews(ctx, cat, minReviews, listLimit(limit))
	if err != nil {
		return ProductList{}, fmt.Errorf("best rated products: %w", err)
	}
	return ProductList{
		Category:   categoryLabel(cat),
		MinReviews: &minReviews,
		Count:      len(products),
		Products:   nonNil(products),
	}, nil
}

// FindByDescription ranks products by embedding distance to description.
func (s *Service) FindByDescription(ctx context.Context, description string) (DescriptionMatches, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return DescriptionMatches{}, fmt.Errorf("product description is required: %w", domain.ErrInvalidArguments)
	}

	products, err := s.similar(ctx, description, DescriptionLimit)
	if err != nil {
		return DescriptionMatches{}, err
	}
	if len(products) == 0 {
		return DescriptionMatches{Message: NoDescriptionMatch}, nil
	}

	return DescriptionMatches{
		SearchMethod: method.Vector,
		MatchesFound: len(products),
		BestMatch:    &products[0],
		OtherMatches: nonNil(products[1:]),
	}, nil
}

// ReviewDetails returns a product summary, its rating distribution and most helpful reviews.
func (s *Service) ReviewDetails(ctx context.Context, productID string, limit int) (ReviewDetails, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ReviewDetails{}, fmt.Errorf("product_id is required: %w", domain.ErrInvalidArguments)
	}
	if limit <= 0 {
		limit = DefaultReviewsLimit
	}
	limit = min(limit, request.MaxLimit)

	p, err := s.repo.Product(ctx, productID)
	if err != nil {
		return ReviewDetails{}, fmt.Errorf("get product: %w", err)
	}

	dist, err := s.repo.RatingDistribution(ctx, productID)
	if err != nil {
		return ReviewDetails{}, fmt.Errorf("rating distribution: %w", err)
	}
	reviews, err := s.repo.TopReviews(ctx, productID, limit)
	if err != nil {
		return ReviewDetails{}, fmt.Errorf("top reviews: %w", err)
	}

	return ReviewDetails{
		Product: ProductSummary{
			ProductID:     p.ProductID,
			Title:         p.Title,
			AverageRating: p.AverageRating,
			RatingCount:   p.RatingCount,
			Category:      p.Category,
		},
		RatingDistribution: nonNil(dist),
		TopReviews:         nonNil(reviews),
	}, nil
}

// similar embeds text and returns products under the distance threshold, with no rating floor.
func (s *Service) similar(ctx context.Context, text string, limit int) ([]result.Product, error) {
	if s.embed == nil {
		return nil, ErrNoEmbedder
	}
	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize text: %w", err)
	}

	products, err := s.repo.ProductVectorMatches(ctx, &criteria.ProductVector{
		Common:    criteria.Common{Limit: limit},
		Embedding: emb.Embedding,
		Threshold: s.threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("product similarity: %w", err)
	}
	return products, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, request.MaxLimit)
}

func categoryLabel(c filter.Category) string {
	if c.HasCategory() {
		return c.Raw()
	}
	return AllCategories
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
