package result

import (
	"encoding/json"

	"github.com/kailas-cloud/review/internal/domain/search/method"
)

// Fixed response texts.
const (
	FallbackNote     = "No direct matches found, showing best rated products instead"
	ExhaustedMessage = "No products found matching your requirements"
	FailureMessage   = "Failed to find products matching user requirements"
	FailureHint      = "Make sure to provide a detailed example_review describing what you're looking for"
	MissingMessage   = "Example review or user requirements are required"
)

// Review is a review attached to a product as evidence.
type Review struct {
	ID               string  `json:"review_id,omitempty"`
	Rating           float64 `json:"rating"`
	Title            string  `json:"title"`
	Text             string  `json:"text"`
	HelpfulVotes     int     `json:"helpful_votes"`
	VerifiedPurchase bool    `json:"verified_purchase"`
}

// Product is a single product returned by a retrieval stage or catalog lookup.
// Stage-specific fields are omitted when the producing stage does not set them.
type Product struct {
	ProductID     string   `json:"product_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Features      string   `json:"features"`
	Price         *float64 `json:"price"`
	AverageRating float64  `json:"average_rating"`
	RatingCount   int      `json:"rating_count"`
	Store         string   `json:"store,omitempty"`
	Category      string   `json:"category,omitempty"`

	SearchMethod          method.Method `json:"search_method,omitempty"`
	MatchingReviewsCount  int           `json:"matching_reviews_count,omitempty"`
	SampleMatchingReviews []Review      `json:"sample_matching_reviews,omitempty"`
	KeywordScore          int           `json:"keyword_score,omitempty"`
	VectorScore           *float64      `json:"vector_score,omitempty"`
}

// Kind classifies a cascade response.
type Kind int

const (
	// KindMatched means a stage produced products.
	KindMatched Kind = iota
	// KindExhausted means every stage ran without a match.
	KindExhausted
	// KindFailed means an unexpected failure aborted the cascade.
	KindFailed
	// KindInvalid means the input was rejected before any stage ran.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindMatched:
		return "matched"
	case KindExhausted:
		return "exhausted"
	case KindFailed:
		return "failed"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Response is the single JSON object produced by the cascade.
type Response struct {
	kind         Kind
	method       method.Method
	requirements string
	products     []Product
	note         string
	message      string
}

// Matched builds a success response for the winning stage.
// The best-rated fallback carries FallbackNote.
func Matched(m method.Method, requirements string, products []Product) Response {
	r := Response{kind: KindMatched, method: m, requirements: requirements, products: products}
	if m == method.BestRated {
		r.note = FallbackNote
	}
	return r
}

// Exhausted builds the "no products found" response.
func Exhausted(requirements string) Response {
	return Response{kind: KindExhausted, requirements: requirements, message: ExhaustedMessage}
}

// Failed builds the generic error response with its usage hint.
func Failed() Response {
	return Response{kind: KindFailed, message: FailureMessage}
}

// Invalid builds the validation error response.
func Invalid(message string) Response {
	return Response{kind: KindInvalid, message: message}
}

// Kind returns the response classification.
func (r *Response) Kind() Kind { return r.kind }

// Method returns the winning stage (empty unless matched).
func (r *Response) Method() method.Method { return r.method }

// Requirements returns the echoed requirement text.
func (r *Response) Requirements() string { return r.requirements }

// Products returns the matched products.
func (r *Response) Products() []Product { return r.products }

// Note returns the fallback note, if any.
func (r *Response) Note() string { return r.note }

// Message returns the error or exhaustion message.
func (r *Response) Message() string { return r.message }

type matchedJSON struct {
	SearchMethod     method.Method `json:"search_method"`
	UserRequirements string        `json:"user_requirements"`
	MatchesFound     int           `json:"matches_found"`
	Products         []Product     `json:"products"`
	Note             string        `json:"note,omitempty"`
}

type exhaustedJSON struct {
	UserRequirements string    `json:"user_requirements"`
	Message          string    `json:"message"`
	Products         []Product `json:"products"`
}

type errorJSON struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// MarshalJSON emits the shape that corresponds to the response kind.
func (r Response) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindMatched:
		products := r.products
		if products == nil {
			products = []Product{}
		}
		return json.Marshal(matchedJSON{
			SearchMethod:     r.method,
			UserRequirements: r.requirements,
			MatchesFound:     len(products),
			Products:         products,
			Note:             r.note,
		})
	case KindExhausted:
		return json.Marshal(exhaustedJSON{
			UserRequirements: r.requirements,
			Message:          r.message,
			Products:         []Product{},
		})
	case KindFailed:
		return json.Marshal(errorJSON{Error: r.message, Hint: FailureHint})
	default:
		return json.Marshal(errorJSON{Error: r.message})
	}
}
