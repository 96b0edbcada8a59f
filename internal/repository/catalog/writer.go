package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/review/internal/db"
	"github.com/kailas-cloud/review/internal/domain"
)

// Batch is a set of catalog rows written in one transaction.
type Batch struct {
	Categories []domain.Category
	Products   []domain.Product
	Reviews    []domain.Review
}

// Write upserts the batch: categories, then products with their category memberships,
// then reviews. A stored embedding is kept when the incoming row has none.
func (r *Repo) Write(ctx context.Context, b *Batch) error {
	d := r.store.Dialect()
	err := r.store.InTx(ctx, func(tx db.Execer) error {
		for i := range b.Categories {
			if err := upsertCategory(ctx, tx, d, &b.Categories[i]); err != nil {
				return err
			}
		}
		for i := range b.Products {
			if err := upsertProduct(ctx, tx, d, &b.Products[i]); err != nil {
				return err
			}
		}
		for i := range b.Reviews {
			if err := upsertReview(ctx, tx, d, &b.Reviews[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write catalog batch: %w", err)
	}
	return nil
}

func upsertCategory(ctx context.Context, tx db.Execer, d db.Dialect, c *domain.Category) error {
	q := db.NewQuery(d)
	sql := "INSERT INTO categories (id, name, level) VALUES (" +
		q.Bind(c.ID) + ", " + q.Bind(c.Name) + ", " + q.Bind(c.Level) + ") " +
		"ON CONFLICT (id) DO UPDATE SET name = excluded.name, level = excluded.level"
	if err := tx.Exec(ctx, sql, q.Args()...); err != nil {
		return fmt.Errorf("category %s: %w", c.ID, err)
	}
	return nil
}

func upsertProduct(ctx context.Context, tx db.Execer, d db.Dialect, p *domain.Product) error {
	q := db.NewQuery(d)
	sql := "INSERT INTO products (id, title, description, features, price, average_rating, rating_count, store, embedding) " +
		"VALUES (" + q.Bind(p.ID) + ", " + q.Bind(p.Title) + ", " + q.Bind(p.Description) + ", " +
		q.Bind(p.Features) + ", " + q.Bind(nullable(p.Price)) + ", " + q.Bind(p.AverageRating) + ", " +
		q.Bind(p.RatingCount) + ", " + q.Bind(p.Store) + ", " + q.BindVector(p.Embedding) + ") " +
		"ON CONFLICT (id) DO UPDATE SET title = excluded.title, description = excluded.description, " +
		"features = excluded.features, price = excluded.price, average_rating = excluded.average_rating, " +
		"rating_count = excluded.rating_count, store = excluded.store, " +
		"embedding = COALESCE(excluded.embedding, products.embedding)"
	if err := tx.Exec(ctx, sql, q.Args()...); err != nil {
		return fmt.Errorf("product %s: %w", p.ID, err)
	}

	if p.Categories == nil {
		return nil
	}
	del := db.NewQuery(d)
	if err := tx.Exec(ctx, "DELETE FROM product_categories WHERE product_id = "+del.Bind(p.ID), del.Args()...); err != nil {
		return fmt.Errorf("product %s categories: %w", p.ID, err)
	}
	for _, categoryID := range p.Categories {
		ins := db.NewQuery(d)
		sql := "INSERT INTO product_categories (product_id, category_id) VALUES (" +
			ins.Bind(p.ID) + ", " + ins.Bind(categoryID) + ") ON CONFLICT (product_id, category_id) DO NOTHING"
		if err := tx.Exec(ctx, sql, ins.Args()...); err != nil {
			return fmt.Errorf("product %s category %s: %w", p.ID, categoryID, err)
		}
	}
	return nil
}

func upsertReview(ctx context.Context, tx db.Execer, d db.Dialect, rv *domain.Review) error {
	q := db.NewQuery(d)
	sql := "INSERT INTO reviews (id, product_id, rating, title, text, helpful_votes, verified_purchase, embedding) " +
		"VALUES (" + q.Bind(rv.ID) + ", " + q.Bind(rv.ProductID) + ", " + q.Bind(rv.Rating) + ", " +
		q.Bind(rv.Title) + ", " + q.Bind(rv.Text) + ", " + q.Bind(rv.HelpfulVotes) + ", " +
		q.Bind(rv.VerifiedPurchase) + ", " + q.BindVector(rv.Embedding) + ") " +
		"ON CONFLICT (id) DO UPDATE SET product_id = excluded.product_id, rating = excluded.rating, " +
		"title = excluded.title, text = excluded.text, helpful_votes = excluded.helpful_votes, " +
		"verified_purchase = excluded.verified_purchase, " +
		"embedding = COALESCE(excluded.embedding, reviews.embedding)"
	if err := tx.Exec(ctx, sql, q.Args()...); err != nil {
		return fmt.Errorf("review %s: %w", rv.ID, err)
	}
	return nil
}

func nullable(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// Migrate creates the catalog tables.
func Migrate(ctx context.Context, s db.Store, dim int) error {
	return db.Migrate(ctx, s, Tables(dim))
}
