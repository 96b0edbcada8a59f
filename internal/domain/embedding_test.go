package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	results map[string]EmbeddingResult
	err     error
	calls   []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.calls = append(s.calls, text)
	if s.err != nil {
		return EmbeddingResult{}, s.err
	}
	return s.results[text], nil
}

func TestBatchFallback_EmbedsInOrder(t *testing.T) {
	inner := &stubEmbedder{results: map[string]EmbeddingResult{
		"wireless earbuds": {Embedding: []float32{0.1}, PromptTokens: 2, TotalTokens: 2},
		"espresso machine": {Embedding: []float32{0.2}, PromptTokens: 3, TotalTokens: 3},
	}}

	res, err := BatchFallback(context.Background(), inner, []string{"wireless earbuds", "espresso machine"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
	if res.Embeddings[0][0] != 0.1 || res.Embeddings[1][0] != 0.2 {
		t.Errorf("embeddings out of order: %v", res.Embeddings)
	}
	if res.PromptTokens != 5 || res.TotalTokens != 5 {
		t.Errorf("tokens = %d/%d, want 5/5", res.PromptTokens, res.TotalTokens)
	}
	if len(inner.calls) != 2 {
		t.Errorf("expected 2 inner calls, got %d", len(inner.calls))
	}
}

func TestBatchFallback_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubEmbedder{err: innerErr}

	_, err := BatchFallback(context.Background(), inner, []string{"a", "b"})
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
	if len(inner.calls) != 1 {
		t.Errorf("expected to stop after first failure, got %d calls", len(inner.calls))
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
		ok   bool
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 0, true},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1, true},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2, true},
		{"dim mismatch", []float32{1, 0}, []float32{1}, 0, false},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0, false},
		{"empty", nil, nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CosineDistance(tt.a, tt.b)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (got-tt.want > 1e-6 || tt.want-got > 1e-6) {
				t.Errorf("distance = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestProduct_EmbeddingText(t *testing.T) {
	p := Product{Title: "Kettle", Description: "  ", Features: "1.7L, auto shut-off"}
	if got := p.EmbeddingText(); got != "Kettle\n1.7L, auto shut-off" {
		t.Errorf("EmbeddingText() = %q", got)
	}
}

func TestReview_EmbeddingText(t *testing.T) {
	tests := []struct {
		r    Review
		want string
	}{
		{Review{Title: "Great", Text: "Boils fast"}, "Great\nBoils fast"},
		{Review{Text: "Boils fast"}, "Boils fast"},
		{Review{Title: "Great"}, "Great"},
	}
	for _, tt := range tests {
		if got := tt.r.EmbeddingText(); got != tt.want {
			t.Errorf("EmbeddingText() = %q, want %q", got, tt.want)
		}
	}
}

func TestProduct_Validate(t *testing.T) {
	if err := (&Product{ID: "p1", Title: "Kettle"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (&Product{Title: "Kettle"}).Validate(); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("missing id: error = %v", err)
	}
	if err := (&Product{ID: "p1"}).Validate(); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("missing title: error = %v", err)
	}
	if err := (&Review{ID: "r1"}).Validate(); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("missing product_id: error = %v", err)
	}
}
