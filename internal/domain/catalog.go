package domain

import (
	"fmt"
	"strings"
)

// Product is a catalog product as stored.
type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Features      string    `json:"features"`
	Price         *float64  `json:"price,omitempty"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int       `json:"rating_count"`
	Store         string    `json:"store,omitempty"`
	Categories    []string  `json:"categories,omitempty"` // category IDs
	Embedding     []float32 `json:"embedding,omitempty"`
}

// EmbeddingText is the text a product embedding is computed from.
func (p *Product) EmbeddingText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.Description, p.Features} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Validate checks required fields.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product id is required: %w", ErrInvalidArguments)
	}
	if p.Title == "" {
		return fmt.Errorf("product %q: title is required: %w", p.ID, ErrInvalidArguments)
	}
	if p.RatingCount < 0 {
		return fmt.Errorf("product %q: negative rating_count: %w", p.ID, ErrInvalidArguments)
	}
	return nil
}

// Review is a customer review of one product.
type Review struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	Rating           float64   `json:"rating"`
	Title            string    `json:"title"`
	Text             string    `json:"text"`
	HelpfulVotes     int       `json:"helpful_votes"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	Embedding        []float32 `json:"embedding,omitempty"`
}

// EmbeddingText is the text a review embedding is computed from.
func (r *Review) EmbeddingText() string {
	title, text := strings.TrimSpace(r.Title), strings.TrimSpace(r.Text)
	switch {
	case title == "":
		return text
	case text == "":
		return title
	default:
		return title + "\n" + text
	}
}

// Validate checks required fields.
func (r *Review) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("review id is required: %w", ErrInvalidArguments)
	}
	if r.ProductID == "" {
		return fmt.Errorf("review %q: product_id is required: %w", r.ID, ErrInvalidArguments)
	}
	return nil
}

// Category is a node of the product taxonomy. Lower levels are broader.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// RatingBucket is the number of reviews with a given rating.
type RatingBucket struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}
