package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/review/internal/db"
	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/filter"
	"github.com/kailas-cloud/review/internal/domain/search/result"
)

// Stats counts catalog rows.
type Stats struct {
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Reviews    int `json:"reviews"`
}

// categoryNameSQL selects the broadest category name of product p, restricted to
// categories matching c when present.
func categoryNameSQL(q *db.Query, c filter.Category) string {
	match := ""
	if c.HasCategory() {
		match = " AND " + q.Dialect().ContainsFold("c.name", q.Bind(c.Needle()))
	}
	return "COALESCE((SELECT c.name FROM product_categories pc JOIN categories c ON c.id = pc.category_id " +
		"WHERE pc.product_id = p.id" + match + " ORDER BY c.level, c.name LIMIT 1), '')"
}

// FindByTitle returns products whose title contains name case-insensitively, most rated first.
func (r *Repo) FindByTitle(ctx context.Context, name string, limit int) ([]result.Product, error) {
	q := r.newQuery()
	sql := "SELECT " + productColumns + " FROM products p" +
		where(q.Dialect().ContainsFold("p.title", q.Bind(strings.ToLower(strings.TrimSpace(name))))) +
		" ORDER BY p.rating_count DESC, p.id" + limitSQL(q, limit)

	products, err := r.queryProducts(ctx, sql, q.Args(), nil)
	if err != nil {
		return nil, fmt.Errorf("find by title: %w", err)
	}
	return products, nil
}

// TopReviews returns a product's most helpful reviews.
func (r *Repo) TopReviews(ctx context.Context, productID string, limit int) ([]result.Review, error) {
	q := r.newQuery()
	sql := "SELECT " + reviewColumns + " FROM reviews r" +
		where("r.product_id = "+q.Bind(productID)) +
		" ORDER BY r.helpful_votes DESC, r.rating DESC, r.id" + limitSQL(q, limit)

	reviews, err := r.queryReviews(ctx, sql, q.Args())
	if err != nil {
		return nil, fmt.Errorf("top reviews: %w", err)
	}
	return reviews, nil
}

// Popular returns the most rated products, optionally within a category.
func (r *Repo) Popular(ctx context.Context, category filter.Category, limit int) ([]result.Product, error) {
	q := r.newQuery()
	sql := "SELECT " + productColumns + ", " + categoryNameSQL(q, category) + " AS category FROM products p" +
		where(categorySQL(q, category)) +
		" ORDER BY p.rating_count DESC, p.average_rating DESC, p.id" + limitSQL(q, limit)

	products, err := r.queryProducts(ctx, sql, q.Args(), func(p *result.Product) []any {
		return []any{&p.Category}
	})
	if err != nil {
		return nil, fmt.Errorf("popular products: %w", err)
	}
	return products, nil
}

// BestRatedWithReviews returns the best rated products having at least minReviews ratings.
func (r *Repo) BestRatedWithReviews(
	ctx context.Context, category filter.Category, minReviews, limit int,
) ([]result.Product, error) {
	q := r.newQuery()
	sql := "SELECT " + productColumns + ", " + categoryNameSQL(q, category) + " AS category FROM products p" +
		where("p.rating_count >= "+q.Bind(minReviews), categorySQL(q, category)) +
		" ORDER BY p.average_rating DESC, p.rating_count DESC, p.id" + limitSQL(q, limit)

	products, err := r.queryProducts(ctx, sql, q.Args(), func(p *result.Product) []any {
		return []any{&p.Category}
	})
	if err != nil {
		return nil, fmt.Errorf("best rated products: %w", err)
	}
	return products, nil
}

// Product returns one product or domain.ErrProductNotFound.
func (r *Repo) Product(ctx context.Context, id string) (result.Product, error) {
	q := r.newQuery()
	sql := "SELECT " + productColumns + ", " + categoryNameSQL(q, filter.Category{}) + " AS category FROM products p" +
		where("p.id = "+q.Bind(id))

	products, err := r.queryProducts(ctx, sql, q.Args(), func(p *result.Product) []any {
		return []any{&p.Category}
	})
	if err != nil {
		return result.Product{}, fmt.Errorf("get product: %w", err)
	}
	if len(products) == 0 {
		return result.Product{}, domain.ErrProductNotFound
	}
	return products[0], nil
}

// RatingDistribution counts a product's reviews per rating, highest rating first.
func (r *Repo) RatingDistribution(ctx context.Context, productID string) ([]domain.RatingBucket, error) {
	q := r.newQuery()
	sql := "SELECT r.rating, COUNT(*) FROM reviews r" +
		where("r.product_id = "+q.Bind(productID)) +
		" GROUP BY r.rating ORDER BY r.rating DESC"

	rows, err := r.store.Query(ctx, sql, q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}
	defer rows.Close()

	var out []domain.RatingBucket
	for rows.Next() {
		var b domain.RatingBucket
		if err := rows.Scan(&b.Rating, &b.Count); err != nil {
			return nil, fmt.Errorf("rating distribution: %w", &db.Error{Op: db.OpScan, Err: err})
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rating distribution: %w", &db.Error{Op: db.OpQuery, Err: err})
	}
	return out, nil
}

// Stats counts categories, products and reviews.
func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var errs []error
	var err error
	if s.Categories, err = r.queryInt(ctx, "SELECT COUNT(*) FROM categories"); err != nil {
		errs = append(errs, err)
	}
	if s.Products, err = r.queryInt(ctx, "SELECT COUNT(*) FROM products"); err != nil {
		errs = append(errs, err)
	}
	if s.Reviews, err = r.queryInt(ctx, "SELECT COUNT(*) FROM reviews"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Stats{}, fmt.Errorf("catalog stats: %w", errors.Join(errs...))
	}
	return s, nil
}
