package method

// Method names the retrieval strategy that produced a result.
type Method string

// Cascade stage methods, in evaluation order.
const (
	ReviewVector   Method = "vector_review_similarity"
	ProductVector  Method = "vector_product_similarity"
	ReviewKeyword  Method = "keyword_review_match"
	ProductKeyword Method = "keyword_product_match"
	BestRated      Method = "fallback_best_rated"
)

// Per-product tags emitted by the best-rated fallback.
const (
	CategoryBest Method = "fallback_category_best"
	OverallBest  Method = "fallback_overall_best"
)

// Vector is the method reported by the standalone description lookup.
const Vector Method = "vector"

// Cascade lists the stage methods in the order they are tried.
var Cascade = []Method{ReviewVector, ProductVector, ReviewKeyword, ProductKeyword, BestRated}

// IsStage reports whether m is one of the cascade stage methods.
func (m Method) IsStage() bool {
	for _, s := range Cascade {
		if m == s {
			return true
		}
	}
	return false
}

// NeedsEmbedding reports whether the stage ranks by vector distance.
func (m Method) NeedsEmbedding() bool {
	return m == ReviewVector || m == ProductVector
}

// String returns the wire name.
func (m Method) String() string { return string(m) }
