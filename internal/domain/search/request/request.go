package request

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/filter"
)

// Requirement parameter limits.
const (
	// MaxExampleReviewLength is the maximum accepted example review length in bytes.
	MaxExampleReviewLength = 8192
	DefaultMinRating       = 4
	DefaultLimit           = 5
	MaxLimit               = 50
)

// Defaults holds the values applied when optional parameters are absent.
type Defaults struct {
	MinRating float64
	Limit     int
	MaxLimit  int
}

// Standard is the default parameter set.
var Standard = Defaults{MinRating: DefaultMinRating, Limit: DefaultLimit, MaxLimit: MaxLimit}

// Requirements is a validated product-finder query.
type Requirements struct {
	exampleReview string
	category      filter.Category
	minRating     float64
	maxRating     float64
	hasMaxRating  bool
	limit         int
}

// New validates requirements using the Standard defaults.
func New(exampleReview, category string, minRating, maxRating *float64, limit int) (Requirements, error) {
	return Standard.New(exampleReview, category, minRating, maxRating, limit)
}

// New validates and normalizes requirements.
// exampleReview must be non-blank. A nil minRating means the default floor, a nil maxRating
// means no upper bound. limit <= 0 means the default and is capped at MaxLimit.
func (d Defaults) New(exampleReview, category string, minRating, maxRating *float64, limit int) (Requirements, error) {
	exampleReview = strings.TrimSpace(exampleReview)
	if exampleReview == "" {
		return Requirements{}, domain.ErrRequirementsMissing
	}
	if len(exampleReview) > MaxExampleReviewLength {
		return Requirements{}, fmt.Errorf("example_review too long (max %d bytes): %w",
			MaxExampleReviewLength, domain.ErrInvalidArguments)
	}

	cat, err := filter.NewCategory(category)
	if err != nil {
		return Requirements{}, err
	}

	r := Requirements{
		exampleReview: exampleReview,
		category:      cat,
		minRating:     d.MinRating,
		limit:         d.Limit,
	}
	if minRating != nil {
		if math.IsNaN(*minRating) {
			return Requirements{}, fmt.Errorf("min_rating is not a number: %w", domain.ErrInvalidArguments)
		}
		r.minRating = *minRating
	}
	if maxRating != nil {
		if math.IsNaN(*maxRating) {
			return Requirements{}, fmt.Errorf("max_rating is not a number: %w", domain.ErrInvalidArguments)
		}
		if *maxRating < r.minRating {
			return Requirements{}, domain.ErrInvalidRatingBounds
		}
		r.maxRating = *maxRating
		r.hasMaxRating = true
	}

	if limit > 0 {
		r.limit = limit
	}
	if r.limit <= 0 {
		r.limit = DefaultLimit
	}
	maxLimit := d.MaxLimit
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if r.limit > maxLimit {
		r.limit = maxLimit
	}

	return r, nil
}

// ExampleReview returns the trimmed requirement text.
func (r *Requirements) ExampleReview() string { return r.exampleReview }

// Category returns the category constraint.
func (r *Requirements) Category() filter.Category { return r.category }

// MinRating returns the inclusive rating floor.
func (r *Requirements) MinRating() float64 { return r.minRating }

// MaxRating returns the inclusive rating ceiling and whether one was supplied.
func (r *Requirements) MaxRating() (float64, bool) { return r.maxRating, r.hasMaxRating }

// Limit returns the maximum number of products to return.
func (r *Requirements) Limit() int { return r.limit }

// Bounds returns the rating bounds as a Range.
func (r *Requirements) Bounds() Range {
	b := Range{Min: r.minRating}
	if r.hasMaxRating {
		mx := r.maxRating
		b.Max = &mx
	}
	return b
}

// Range is an inclusive rating interval. A nil Max means unbounded above.
type Range struct {
	Min float64
	Max *float64
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if v < r.Min {
		return false
	}
	return r.Max == nil || v <= *r.Max
}
