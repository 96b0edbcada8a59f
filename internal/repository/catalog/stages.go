package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/review/internal/domain/search/criteria"
	"github.com/kailas-cloud/review/internal/domain/search/result"
)

const productGroupBy = " GROUP BY p.id, p.title, p.description, p.features, p.price, p.average_rating, p.rating_count, p.store"

// ReviewVectorMatches takes the Candidates nearest reviews within the rating bounds and
// distance threshold, attributes them to their products (after the category filter) and
// ranks products by match count, then average rating.
func (r *Repo) ReviewVectorMatches(ctx context.Context, c *criteria.ReviewVector) ([]result.Product, error) {
	q := r.newQuery()
	d := q.Dialect()
	emb := q.BindVector(c.Embedding)
	dist := d.CosineDistance("r.embedding", emb)

	nearest := "SELECT r.product_id, " + dist + " AS distance FROM reviews r" +
		where("r.embedding IS NOT NULL", boundsSQL(q, "r.rating", c.Bounds), dist+" < "+q.Bind(c.Threshold)) +
		" ORDER BY distance, r.id" + limitSQL(q, c.Candidates)

	sql := "WITH nearest AS (" + nearest + ") " +
		"SELECT " + productColumns + ", COUNT(*) AS matches " +
		"FROM nearest n JOIN products p ON p.id = n.product_id" +
		where(categorySQL(q, c.Category)) +
		productGroupBy +
		" ORDER BY matches DESC, p.average_rating DESC, p.id" + limitSQL(q, c.Limit)

	products, err := r.queryProducts(ctx, sql, q.Args(), func(p *result.Product) []any {
		return []any{&p.MatchingReviewsCount}
	})
	if err != nil {
		return nil, fmt.Errorf("review vector matches: %w", err)
	}
	return products, nil
}

// SimilarReviews returns up to limit reviews of a product closest to the embedding
// and within the distance threshold.
func (r *Repo) SimilarReviews(
	ctx context.Context, productID string, embedding []float32, threshold float64, limit int,
) ([]result.Review, error) {
	q := r.newQuery()
	dist := q.Dialect().CosineDistance("r.embedding", q.BindVector(embedding))

	sql := "SELECT " + reviewColumns + " FROM reviews r" +
		where("r.product_id = "+q.Bind(productID), "r.embedding IS NOT NULL", dist+" < "+q.Bind(threshold)) +
		" ORDER BY " + dist + ", r.id" + limitSQL(q, limit)

	reviews, err := r.queryReviews(ctx, sql, q.Args())
	if err != nil {
		return nil, fmt.Errorf("similar reviews: %w", err)
	}
	return reviews, nil
}

// ProductVectorMatches returns products within the distance threshold, rating bounds and
// category, nearest first. VectorScore carries the distance.
func (r *Repo) ProductVectorMatches(ctx context.Context, c *criteria.ProductVector) ([]result.Product, error) {
	q := r.newQuery()
	dist := q.Dialect().CosineDistance("p.embedding", q.BindVector(c.Embedding))

	sql := "SELECT " + productColumns + ", " + dist + " AS distance FROM products p" +
		where(
			"p.embedding IS NOT NULL",
			dist+" < "+q.Bind(c.Threshold),
			boundsSQL(q, "p.average_rating", c.Bounds),
			categorySQL(q, c.Category),
		) +
		" ORDER BY distance, p.id" + limitSQL(q, c.Limit)

	products, err := r.queryProducts(ctx, sql, q.Args(), func(p *result.Product) []any {
		p.VectorScore = new(float64)
		return []any{p.VectorScore}
	})
	if err != nil {
		return nil, fmt.Errorf("product vector matches: %w", err)
	}
	return products, nil
}

// ReviewKeywordMatches ranks products by the number of their reviews within the rating
// bounds whose text contains any keyword. No keywords means no matches.
func (r *Repo) ReviewKeywordMatches(ctx context.Context, c *criteria.ReviewKeyword) ([]result.Product, error) {
	if len(c.Keywords) == 0 {
		return nil, nil
	}
	q := r.newQuery()

	hits := "SELECT r.product_id, COUNT(*) AS matches FROM reviews r" +
		where(boundsSQL(q, "r.rating", c.Bounds), anyKeywordSQL(q, "r.text", c.Keywords)) +
		" GROUP BY r.product_id"

	sql := "WITH hits AS (" + hits + ") " +
		"SELECT " + productColumns + ", h.matches " +
		"FROM hits h JOIN products p ON p.id = h.product_id" +
		where(categorySQL(q, c.Category)) +
		" ORDER BY h.matches DESC, p.average_rating DESC, p.id" + limitSQL(q, c.Limit)

	products, err := r.queryProducts(ctx, sql, q.Args(), func(p *result.Product) []any {
		return []any{&p.MatchingReviewsCount}
	})
	if err != nil {
		return nil, fmt.Errorf("review keyword matches: %w", err)
	}
	return products, nil
}

// KeywordReviews returns up to limit of a product's reviews within the rating bounds that
// contain any keyword, most helpful first.
func (r *Repo) KeywordReviews(
	ctx context.Context, productID string, c *criteria.ReviewKeyword, limit int,
) ([]result.Review, error) {
	if len(c.Keywords) == 0 {
		return nil, nil
	}
	q := r.newQuery()

	sql := "SELECT " + reviewColumns + " FROM reviews r" +
		where(
			"r.product_id = "+q.Bind(productID),
			boundsSQL(q, "r.rating", c.Bounds),
			anyKeywordSQL(q, "r.text", c.Keywords),
		) +
		" ORDER BY r.helpful_votes DESC, r.rating DESC, r.id" + limitSQL(q, limit)

	reviews, err := r.queryReviews(ctx, sql, q.Args())
	if err != nil {
		return nil, fmt.Errorf("keyword reviews: %w", err)
	}
	return reviews, nil
}

// ProductKeywordMatches scores each product by keyword presence: TitleWeight per keyword
// found in the title plus DescriptionWeight and FeaturesWeight for the other fields.
// Zero-score products are dropped.
func (r *Repo) ProductKeywordMatches(ctx context.Context, c *criteria.ProductKeyword) ([]result.Product, error) {
	if len(c.Keywords) == 0 {
		return nil, nil
	}
	q := r.newQuery()
	d := q.Dialect()

	terms := make([]string, 0, len(c.Keywords)*3)
	for _, kw := range c.Keywords {
		p := q.Bind(kw)
		terms = append(terms,
			fmt.Sprintf("CASE WHEN %s THEN %d ELSE 0 END", d.ContainsFold("p.title", p), criteria.TitleWeight),
			fmt.Sprintf("CASE WHEN %s THEN %d ELSE 0 END", d.ContainsFold("p.description", p), criteria.DescriptionWeight),
			fmt.Sprintf("CASE WHEN %s THEN %d ELSE 0 END", d.ContainsFold("p.features", p), criteria.FeaturesWeight),
		)
	}
	score := "(" + strings.Join(terms, " + ") + ")"

	inner := "SELECT " + productColumns + ", " + score + " AS score FROM products p" +
		where(boundsSQL(q, "p.average_rating", c.Bounds), categorySQL(q, c.Category))

	sql := "SELECT id, title, description, features, price, average_rating, rating_count, store, score " +
		"FROM (" + inner + ") scored WHERE score > 0" +
		" ORDER BY score DESC, average_rating DESC, id" + limitSQL(q, c.Limit)

	products, err := r.queryProducts(ctx, sql, q.Args(), func(p *result.Product) []any {
		return []any{&p.KeywordScore}
	})
	if err != nil {
		return nil, fmt.Errorf("product keyword matches: %w", err)
	}
	return products, nil
}

// BestRated returns products within the rating bounds and category, best rated first.
// Without a category, products also need at least MinRatingCount ratings.
func (r *Repo) BestRated(ctx context.Context, c *criteria.BestRated) ([]result.Product, error) {
	q := r.newQuery()

	countSQL := ""
	if !c.Category.HasCategory() && c.MinRatingCount > 0 {
		countSQL = "p.rating_count >= " + q.Bind(c.MinRatingCount)
	}

	sql := "SELECT " + productColumns + " FROM products p" +
		where(boundsSQL(q, "p.average_rating", c.Bounds), countSQL, categorySQL(q, c.Category)) +
		" ORDER BY p.average_rating DESC, p.rating_count DESC, p.id" + limitSQL(q, c.Limit)

	products, err := r.queryProducts(ctx, sql, q.Args(), nil)
	if err != nil {
		return nil, fmt.Errorf("best rated: %w", err)
	}
	return products, nil
}
