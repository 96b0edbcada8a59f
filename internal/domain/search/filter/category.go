package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/review/internal/domain"
)

// MaxCategoryLength bounds the category substring accepted from callers.
const MaxCategoryLength = 256

// Category is an optional case-insensitive category-name substring constraint.
// The zero value means "no constraint".
type Category struct {
	raw    string
	needle string
}

// NewCategory trims the input; a blank value yields an empty (unconstrained) Category.
// Values longer than MaxCategoryLength bytes are rejected with domain.ErrInvalidArguments.
func NewCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Category{}, nil
	}
	if len(raw) > MaxCategoryLength {
		return Category{}, fmt.Errorf("category too long (max %d bytes): %w",
			MaxCategoryLength, domain.ErrInvalidArguments)
	}
	return Category{raw: raw, needle: strings.ToLower(raw)}, nil
}

// MustCategory is NewCategory for trusted constant input. It panics on error.
func MustCategory(raw string) Category {
	c, err := NewCategory(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// HasCategory reports whether a constraint is present.
func (c Category) HasCategory() bool { return c.needle != "" }

// Raw returns the trimmed value as supplied.
func (c Category) Raw() string { return c.raw }

// Needle returns the lower-cased substring used for matching.
func (c Category) Needle() string { return c.needle }

// Matches reports whether any of the names contains the needle case-insensitively.
// An empty Category matches everything.
func (c Category) Matches(names []string) bool {
	if !c.HasCategory() {
		return true
	}
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), c.needle) {
			return true
		}
	}
	return false
}
