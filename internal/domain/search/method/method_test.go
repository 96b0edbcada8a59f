package method

import "testing"

func TestCascadeOrder(t *testing.T) {
	want := []Method{
		"vector_review_similarity",
		"vector_product_similarity",
		"keyword_review_match",
		"keyword_product_match",
		"fallback_best_rated",
	}
	if len(Cascade) != len(want) {
		t.Fatalf("len(Cascade) = %d, want %d", len(Cascade), len(want))
	}
	for i := range want {
		if Cascade[i] != want[i] {
			t.Errorf("Cascade[%d] = %q, want %q", i, Cascade[i], want[i])
		}
	}
}

func TestMethod_IsStage(t *testing.T) {
	for _, m := range Cascade {
		if !m.IsStage() {
			t.Errorf("%q.IsStage() = false", m)
		}
	}
	for _, m := range []Method{CategoryBest, OverallBest, Vector, ""} {
		if m.IsStage() {
			t.Errorf("%q.IsStage() = true", m)
		}
	}
}

func TestMethod_NeedsEmbedding(t *testing.T) {
	if !ReviewVector.NeedsEmbedding() || !ProductVector.NeedsEmbedding() {
		t.Error("vector stages must need an embedding")
	}
	if ReviewKeyword.NeedsEmbedding() || ProductKeyword.NeedsEmbedding() || BestRated.NeedsEmbedding() {
		t.Error("non-vector stages must not need an embedding")
	}
}
