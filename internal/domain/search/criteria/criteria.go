// Package criteria holds the parameters of each cascade stage query.
package criteria

import (
	"github.com/kailas-cloud/review/internal/domain/search/filter"
	"github.com/kailas-cloud/review/internal/domain/search/request"
)

// Common is shared by every stage: rating bounds, category constraint and result limit.
// Bounds apply to review ratings in review stages and to average_rating in product stages.
type Common struct {
	Bounds   request.Range
	Category filter.Category
	Limit    int
}

// FromRequirements derives the shared stage parameters.
func FromRequirements(r *request.Requirements) Common {
	return Common{Bounds: r.Bounds(), Category: r.Category(), Limit: r.Limit()}
}

// ReviewVector ranks products by how many of the nearest reviews they own.
type ReviewVector struct {
	Common
	Embedding  []float32
	Threshold  float64 // exclusive cosine distance bound
	Candidates int     // nearest reviews considered before grouping
}

// ProductVector ranks products by embedding distance.
type ProductVector struct {
	Common
	Embedding []float32
	Threshold float64
}

// ReviewKeyword ranks products by the number of reviews containing any keyword.
type ReviewKeyword struct {
	Common
	Keywords []string
}

// ProductKeyword ranks products by weighted keyword presence in title, description and features.
type ProductKeyword struct {
	Common
	Keywords []string
}

// BestRated ranks products by rating. MinRatingCount applies only without a category.
type BestRated struct {
	Common
	MinRatingCount int
}

// Per-keyword weights for ProductKeyword scoring.
const (
	TitleWeight       = 2
	DescriptionWeight = 1
	FeaturesWeight    = 1
)
