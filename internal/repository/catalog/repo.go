package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/review/internal/db"
	"github.com/kailas-cloud/review/internal/domain/search/filter"
	"github.com/kailas-cloud/review/internal/domain/search/request"
	"github.com/kailas-cloud/review/internal/domain/search/result"
)

// store is the consumer interface for catalog operations (ISP).
type store interface {
	db.Querier
	db.TxRunner
	Dialect() db.Dialect
}

// Repo implements the catalog read and write queries.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

const productColumns = "p.id, p.title, p.description, p.features, p.price, p.average_rating, p.rating_count, p.store"

const reviewColumns = "r.id, r.rating, r.title, r.text, r.helpful_votes, r.verified_purchase"

func (r *Repo) newQuery() *db.Query {
	return db.NewQuery(r.store.Dialect())
}

// boundsSQL renders an inclusive range test on expr.
func boundsSQL(q *db.Query, expr string, b request.Range) string {
	s := expr + " >= " + q.Bind(b.Min)
	if b.Max != nil {
		s += " AND " + expr + " <= " + q.Bind(*b.Max)
	}
	return s
}

// categorySQL renders the membership test for product alias p, or "" without a category.
// EXISTS keeps a product that sits in several matching categories from being duplicated.
func categorySQL(q *db.Query, c filter.Category) string {
	if !c.HasCategory() {
		return ""
	}
	return "EXISTS (SELECT 1 FROM product_categories pc JOIN categories c ON c.id = pc.category_id " +
		"WHERE pc.product_id = p.id AND " + q.Dialect().ContainsFold("c.name", q.Bind(c.Needle())) + ")"
}

// anyKeywordSQL renders an OR over containment of each keyword in expr.
func anyKeywordSQL(q *db.Query, expr string, keywords []string) string {
	parts := make([]string, len(keywords))
	for i, kw := range keywords {
		parts[i] = q.Dialect().ContainsFold(expr, q.Bind(kw))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func where(conds ...string) string {
	kept := conds[:0]
	for _, c := range conds {
		if c != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(kept, " AND ")
}

// queryProducts runs sql and scans productColumns followed by extra destinations per row.
func (r *Repo) queryProducts(
	ctx context.Context, sql string, args []any, extra func(p *result.Product) []any,
) ([]result.Product, error) {
	rows, err := r.store.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []result.Product
	for rows.Next() {
		var p result.Product
		dest := []any{
			&p.ProductID, &p.Title, &p.Description, &p.Features,
			&p.Price, &p.AverageRating, &p.RatingCount, &p.Store,
		}
		if extra != nil {
			dest = append(dest, extra(&p)...)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

func (r *Repo) queryReviews(ctx context.Context, sql string, args []any) ([]result.Review, error) {
	rows, err := r.store.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []result.Review
	for rows.Next() {
		var rv result.Review
		if err := rows.Scan(&rv.ID, &rv.Rating, &rv.Title, &rv.Text, &rv.HelpfulVotes, &rv.VerifiedPurchase); err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

func (r *Repo) queryInt(ctx context.Context, sql string, args ...any) (int, error) {
	rows, err := r.store.Query(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, &db.Error{Op: db.OpScan, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, &db.Error{Op: db.OpQuery, Err: err}
	}
	return n, nil
}

func limitSQL(q *db.Query, limit int) string {
	return fmt.Sprintf(" LIMIT %s", q.Bind(limit))
}
