package filter

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/review/internal/domain"
)

func TestNewCategory_Blank(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		c, err := NewCategory(raw)
		if err != nil {
			t.Fatalf("NewCategory(%q): %v", raw, err)
		}
		if c.HasCategory() {
			t.Errorf("NewCategory(%q).HasCategory() = true, want false", raw)
		}
		if !c.Matches(nil) {
			t.Errorf("empty category must match everything")
		}
	}
}

func TestNewCategory_TrimsAndLowers(t *testing.T) {
	c := MustCategory("  Home & Kitchen ")
	if c.Raw() != "Home & Kitchen" {
		t.Errorf("Raw() = %q", c.Raw())
	}
	if c.Needle() != "home & kitchen" {
		t.Errorf("Needle() = %q", c.Needle())
	}
}

func TestCategory_Matches(t *testing.T) {
	c := MustCategory("electronics")

	tests := []struct {
		names []string
		want  bool
	}{
		{[]string{"Electronics"}, true},
		{[]string{"Consumer ELECTRONICS & Audio"}, true},
		{[]string{"Books", "Portable Electronics"}, true},
		{[]string{"Books", "Garden"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := c.Matches(tt.names); got != tt.want {
			t.Errorf("Matches(%v) = %v, want %v", tt.names, got, tt.want)
		}
	}
}

func TestNewCategory_TooLong(t *testing.T) {
	c, err := NewCategory(strings.Repeat("a", MaxCategoryLength) + "zzz")
	if !errors.Is(err, domain.ErrInvalidArguments) {
		t.Fatalf("error = %v, want ErrInvalidArguments", err)
	}
	if c.HasCategory() {
		t.Error("rejected category must not constrain anything")
	}
}

func TestNewCategory_MaxLengthAccepted(t *testing.T) {
	raw := strings.Repeat("é", MaxCategoryLength/2)
	c, err := NewCategory(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Raw() != raw {
		t.Errorf("Raw() changed the input")
	}
	if !c.Matches([]string{"x" + raw}) {
		t.Error("full value must match a name containing it")
	}
}

func TestMustCategory_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustCategory(strings.Repeat("a", MaxCategoryLength+1))
}
