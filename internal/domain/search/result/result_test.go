package result

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/review/internal/domain/search/method"
)

func decode(t *testing.T, r Response) map[string]any {
	t.Helper()
	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestResponse_Matched(t *testing.T) {
	r := Matched(method.ProductKeyword, "travel headphones", []Product{
		{ProductID: "p1", Title: "Travel Headphones", AverageRating: 4.5, KeywordScore: 4},
		{ProductID: "p2", Title: "Studio Headphones", AverageRating: 4.2, KeywordScore: 2},
	})
	out := decode(t, r)

	if out["search_method"] != "keyword_product_match" {
		t.Errorf("search_method = %v", out["search_method"])
	}
	if out["user_requirements"] != "travel headphones" {
		t.Errorf("user_requirements = %v", out["user_requirements"])
	}
	if out["matches_found"] != float64(2) {
		t.Errorf("matches_found = %v", out["matches_found"])
	}
	if _, ok := out["note"]; ok {
		t.Error("note must be absent for non-fallback stages")
	}
	products, _ := out["products"].([]any)
	if len(products) != 2 {
		t.Fatalf("products len = %d", len(products))
	}
	first, _ := products[0].(map[string]any)
	if first["keyword_score"] != float64(4) {
		t.Errorf("keyword_score = %v", first["keyword_score"])
	}
	if _, ok := first["sample_matching_reviews"]; ok {
		t.Error("sample_matching_reviews must be omitted when empty")
	}
}

func TestResponse_FallbackNote(t *testing.T) {
	r := Matched(method.BestRated, "anything", []Product{{ProductID: "p1", SearchMethod: method.OverallBest}})
	out := decode(t, r)
	if out["note"] != FallbackNote {
		t.Errorf("note = %v", out["note"])
	}
	if r.Note() != FallbackNote {
		t.Errorf("Note() = %q", r.Note())
	}
}

func TestResponse_Exhausted(t *testing.T) {
	out := decode(t, Exhausted("gold plated toaster"))
	if out["message"] != ExhaustedMessage {
		t.Errorf("message = %v", out["message"])
	}
	if out["user_requirements"] != "gold plated toaster" {
		t.Errorf("user_requirements = %v", out["user_requirements"])
	}
	products, ok := out["products"].([]any)
	if !ok || len(products) != 0 {
		t.Errorf("products = %v, want empty array", out["products"])
	}
	if _, ok := out["search_method"]; ok {
		t.Error("search_method must be absent")
	}
}

func TestResponse_Failed(t *testing.T) {
	out := decode(t, Failed())
	if out["error"] != FailureMessage {
		t.Errorf("error = %v", out["error"])
	}
	if out["hint"] != FailureHint {
		t.Errorf("hint = %v", out["hint"])
	}
}

func TestResponse_Invalid(t *testing.T) {
	r := Invalid(MissingMessage)
	out := decode(t, r)
	if out["error"] != MissingMessage {
		t.Errorf("error = %v", out["error"])
	}
	if _, ok := out["hint"]; ok {
		t.Error("hint must be absent for validation errors")
	}
	if r.Kind() != KindInvalid {
		t.Errorf("Kind() = %v", r.Kind())
	}
}

func TestResponse_MatchedNilProducts(t *testing.T) {
	out := decode(t, Matched(method.ReviewVector, "x", nil))
	if products, ok := out["products"].([]any); !ok || len(products) != 0 {
		t.Errorf("products = %v, want []", out["products"])
	}
}
