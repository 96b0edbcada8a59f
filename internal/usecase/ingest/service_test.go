package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/repository/catalog"
)

type mockWriter struct {
	batches []catalog.Batch
	err     error
}

func (m *mockWriter) Write(_ context.Context, b *catalog.Batch) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, *b)
	return nil
}

func (m *mockWriter) products() []domain.Product {
	var out []domain.Product
	for _, b := range m.batches {
		out = append(out, b.Products...)
	}
	return out
}

func (m *mockWriter) reviews() []domain.Review {
	var out []domain.Review
	for _, b := range m.batches {
		out = append(out, b.Reviews...)
	}
	return out
}

type mockBatchEmbedder struct {
	dim        int
	batchCalls int
	texts      []string
}

func (m *mockBatchEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: make([]float32, m.dim)}, nil
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.texts = append(m.texts, texts...)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, m.dim)
		out[i][0] = 1
	}
	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: len(texts)}, nil
}

type plainEmbedder struct {
	err   error
	calls int
}

func (m *plainEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 2, 3}, TotalTokens: 2}, nil
}

func TestLoadFile_EmbedsMissingVectors(t *testing.T) {
	w := &mockWriter{}
	emb := &mockBatchEmbedder{dim: 3}
	svc := New(w, emb, 3, zap.NewNop())

	sum, err := svc.LoadFile(context.Background(), "testdata/catalog.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sum.Categories != 2 || sum.Products != 2 || sum.Reviews != 2 {
		t.Errorf("summary = %+v", sum)
	}
	// p-speaker already carries a vector.
	if sum.EmbeddedProducts != 1 || sum.EmbeddedReviews != 2 {
		t.Errorf("embedded = %d products, %d reviews", sum.EmbeddedProducts, sum.EmbeddedReviews)
	}
	if sum.EmbeddingTokens != 3 {
		t.Errorf("tokens = %d", sum.EmbeddingTokens)
	}
	if emb.texts[0] != "Quiet Travel Headphones\nOver-ear noise cancelling headphones\nBluetooth; 30h battery" {
		t.Errorf("product embedding text = %q", emb.texts[0])
	}
	if emb.texts[1] != "Great\nBlocks engine noise on flights" {
		t.Errorf("review embedding text = %q", emb.texts[1])
	}

	for _, p := range w.products() {
		if len(p.Embedding) != 3 {
			t.Errorf("product %s embedding = %v", p.ID, p.Embedding)
		}
	}
	if w.products()[1].Embedding[0] != 0.1 {
		t.Error("provided embedding must be kept")
	}
	if len(w.batches[0].Categories) != 2 {
		t.Error("categories must be written first")
	}
}

func TestLoad_GeneratesStableReviewIDs(t *testing.T) {
	load := func() string {
		w := &mockWriter{}
		svc := New(w, nil, 0, zap.NewNop())
		if _, err := svc.LoadFile(context.Background(), "testdata/catalog.json"); err != nil {
			t.Fatal(err)
		}
		return w.reviews()[1].ID
	}
	first, second := load(), load()
	if first == "" || first != second {
		t.Errorf("generated ids %q and %q must be equal and non-empty", first, second)
	}
}

func TestLoad_WithoutEmbedder(t *testing.T) {
	w := &mockWriter{}
	svc := New(w, nil, 3, zap.NewNop())

	sum, err := svc.LoadFile(context.Background(), "testdata/catalog.json")
	if err != nil {
		t.Fatal(err)
	}
	if sum.SkippedEmbeddings != 3 || sum.EmbeddedProducts != 0 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestLoad_FallbackToSingleEmbeds(t *testing.T) {
	w := &mockWriter{}
	emb := &plainEmbedder{}
	svc := New(w, emb, 3, zap.NewNop())

	if _, err := svc.LoadFile(context.Background(), "testdata/catalog.json"); err != nil {
		t.Fatal(err)
	}
	if emb.calls != 3 {
		t.Errorf("embed calls = %d, want 3", emb.calls)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		emb  domain.Embedder
		dim  int
		want error
	}{
		{"bad json", `{"products": [`, nil, 0, domain.ErrInvalidArguments},
		{"missing product id", `{"products":[{"title":"x"}]}`, nil, 0, domain.ErrInvalidArguments},
		{"review without product", `{"reviews":[{"id":"r","text":"x"}]}`, nil, 0, domain.ErrInvalidArguments},
		{"category without name", `{"categories":[{"id":"c"}]}`, nil, 0, domain.ErrInvalidArguments},
		{"dimension mismatch", `{"products":[{"id":"p","title":"x","embedding":[1,2]}]}`, nil, 3, domain.ErrVectorDimMismatch},
		{
			"provider failure", `{"products":[{"id":"p","title":"x"}]}`,
			&plainEmbedder{err: domain.ErrEmbeddingProviderError}, 3, domain.ErrEmbeddingProviderError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &mockWriter{}
			svc := New(w, tt.emb, tt.dim, zap.NewNop())
			_, err := svc.Load(context.Background(), strings.NewReader(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(w.batches) != 0 {
				t.Error("nothing may be written on failure")
			}
		})
	}
}

func TestLoad_WriteBatches(t *testing.T) {
	w := &mockWriter{}
	svc := New(w, nil, 0, zap.NewNop())
	svc.writeBatch = 2

	doc := &Document{}
	for _, id := range []string{"a", "b", "c"} {
		doc.Products = append(doc.Products, domain.Product{ID: id, Title: id})
	}
	if _, err := svc.LoadDocument(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	// categories + 2 product chunks
	if len(w.batches) != 3 {
		t.Errorf("batches = %d, want 3", len(w.batches))
	}
}

func TestLoad_WriterError(t *testing.T) {
	w := &mockWriter{err: errors.New("disk full")}
	svc := New(w, nil, 0, zap.NewNop())
	if _, err := svc.LoadFile(context.Background(), "testdata/catalog.json"); err == nil {
		t.Fatal("expected writer error")
	}
}
