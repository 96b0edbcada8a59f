package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/filter"
)

func ptr(f float64) *float64 { return &f }

func TestNew_Defaults(t *testing.T) {
	r, err := New("  quiet blender for smoothies  ", "", nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ExampleReview() != "quiet blender for smoothies" {
		t.Errorf("ExampleReview() = %q", r.ExampleReview())
	}
	if r.Category().HasCategory() {
		t.Error("Category().HasCategory() = true, want false")
	}
	if r.MinRating() != DefaultMinRating {
		t.Errorf("MinRating() = %f, want %d", r.MinRating(), DefaultMinRating)
	}
	if _, ok := r.MaxRating(); ok {
		t.Error("MaxRating() present, want absent")
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
}

func TestNew_ExplicitValues(t *testing.T) {
	r, err := New("durable hiking boots", "Shoes", ptr(3.5), ptr(4.5), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Category().Needle() != "shoes" {
		t.Errorf("Category().Needle() = %q", r.Category().Needle())
	}
	if r.MinRating() != 3.5 {
		t.Errorf("MinRating() = %f", r.MinRating())
	}
	if mx, ok := r.MaxRating(); !ok || mx != 4.5 {
		t.Errorf("MaxRating() = %f, %v", mx, ok)
	}
	if r.Limit() != 3 {
		t.Errorf("Limit() = %d", r.Limit())
	}
}

func TestNew_ZeroMinRatingIsExplicit(t *testing.T) {
	r, err := New("anything", "", ptr(0), nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MinRating() != 0 {
		t.Errorf("MinRating() = %f, want 0", r.MinRating())
	}
}

func TestNew_EmptyExampleReview(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := New(in, "", nil, nil, 0)
		if !errors.Is(err, domain.ErrRequirementsMissing) {
			t.Errorf("New(%q) error = %v, want ErrRequirementsMissing", in, err)
		}
	}
}

func TestNew_TooLong(t *testing.T) {
	_, err := New(strings.Repeat("x", MaxExampleReviewLength+1), "", nil, nil, 0)
	if !errors.Is(err, domain.ErrInvalidArguments) {
		t.Errorf("error = %v, want ErrInvalidArguments", err)
	}
}

func TestNew_CategoryTooLong(t *testing.T) {
	_, err := New("quiet kettle", strings.Repeat("a", filter.MaxCategoryLength+3), nil, nil, 0)
	if !errors.Is(err, domain.ErrInvalidArguments) {
		t.Errorf("error = %v, want ErrInvalidArguments", err)
	}
}

func TestNew_MaxBelowMin(t *testing.T) {
	_, err := New("text", "", ptr(4), ptr(3), 0)
	if !errors.Is(err, domain.ErrInvalidRatingBounds) {
		t.Errorf("error = %v, want ErrInvalidRatingBounds", err)
	}
}

func TestNew_LimitClamped(t *testing.T) {
	r, err := New("text", "", nil, nil, MaxLimit+100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}

	r, err = New("text", "", nil, nil, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
}

func TestDefaults_Custom(t *testing.T) {
	d := Defaults{MinRating: 3, Limit: 8, MaxLimit: 10}
	r, err := d.New("text", "", nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MinRating() != 3 || r.Limit() != 8 {
		t.Errorf("got min=%f limit=%d, want 3/8", r.MinRating(), r.Limit())
	}
	r, _ = d.New("text", "", nil, nil, 20)
	if r.Limit() != 10 {
		t.Errorf("Limit() = %d, want 10", r.Limit())
	}
}

func TestRange_Contains(t *testing.T) {
	open := Range{Min: 4}
	if !open.Contains(4) || !open.Contains(5) || open.Contains(3.9) {
		t.Error("open range bounds wrong")
	}
	closed := Range{Min: 3, Max: ptr(4)}
	if !closed.Contains(3) || !closed.Contains(4) || closed.Contains(4.1) || closed.Contains(2.9) {
		t.Error("closed range bounds wrong")
	}
}

func TestRequirements_Bounds(t *testing.T) {
	r, _ := New("text", "", ptr(2), ptr(4), 0)
	b := r.Bounds()
	if b.Min != 2 || b.Max == nil || *b.Max != 4 {
		t.Errorf("Bounds() = %+v", b)
	}
}
