// Package ingest loads a JSON catalog export into the store, embedding rows
// that arrive without vectors.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/repository/catalog"
)

// Chunk sizes for embedding calls and write transactions.
const (
	DefaultEmbedBatch = 64
	DefaultWriteBatch = 500
)

// reviewNamespace derives stable IDs for reviews exported without one,
// so loading the same file twice updates rather than duplicates.
var reviewNamespace = uuid.MustParse("6f0c1c9e-6a53-4b8e-9a43-2f1d3c0b7e51")

// Document is the catalog file layout.
type Document struct {
	Categories []domain.Category `json:"categories"`
	Products   []domain.Product  `json:"products"`
	Reviews    []domain.Review   `json:"reviews"`
}

// Summary reports what a load wrote.
type Summary struct {
	Categories        int `json:"categories"`
	Products          int `json:"products"`
	Reviews           int `json:"reviews"`
	EmbeddedProducts  int `json:"embedded_products"`
	EmbeddedReviews   int `json:"embedded_reviews"`
	EmbeddingTokens   int `json:"embedding_tokens"`
	SkippedEmbeddings int `json:"skipped_embeddings"`
}

// Service loads catalog documents.
type Service struct {
	writer     Writer
	embed      domain.Embedder
	dimensions int
	embedBatch int
	writeBatch int
	logger     *zap.Logger
}

// New creates a loader. embed may be nil: rows without vectors are then stored
// without them and only match keyword stages. dimensions > 0 rejects vectors of other sizes.
func New(w Writer, embed domain.Embedder, dimensions int, logger *zap.Logger) *Service {
	return &Service{
		writer:     w,
		embed:      embed,
		dimensions: dimensions,
		embedBatch: DefaultEmbedBatch,
		writeBatch: DefaultWriteBatch,
		logger:     logger,
	}
}

// LoadFile reads and loads a catalog file.
func (s *Service) LoadFile(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return s.Load(ctx, f)
}

// Load decodes a catalog document from r and loads it.
func (s *Service) Load(ctx context.Context, r io.Reader) (Summary, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Summary{}, fmt.Errorf("decode catalog: %w: %w", err, domain.ErrInvalidArguments)
	}
	return s.LoadDocument(ctx, &doc)
}

// LoadDocument validates, embeds and writes a decoded document.
func (s *Service) LoadDocument(ctx context.Context, doc *Document) (Summary, error) {
	if err := s.prepare(doc); err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Categories: len(doc.Categories),
		Products:   len(doc.Products),
		Reviews:    len(doc.Reviews),
	}

	if err := s.embedMissing(ctx, doc, &sum); err != nil {
		return Summary{}, err
	}

	// Categories and products first: reviews reference them.
	if err := s.writer.Write(ctx, &catalog.Batch{Categories: doc.Categories}); err != nil {
		return Summary{}, err
	}
	for start := 0; start < len(doc.Products); start += s.writeBatch {
		end := min(start+s.writeBatch, len(doc.Products))
		if err := s.writer.Write(ctx, &catalog.Batch{Products: doc.Products[start:end]}); err != nil {
			return Summary{}, err
		}
	}
	for start := 0; start < len(doc.Reviews); start += s.writeBatch {
		end := min(start+s.writeBatch, len(doc.Reviews))
		if err := s.writer.Write(ctx, &catalog.Batch{Reviews: doc.Reviews[start:end]}); err != nil {
			return Summary{}, err
		}
	}

	s.logger.Info("Catalog loaded",
		zap.Int("categories", sum.Categories),
		zap.Int("products", sum.Products),
		zap.Int("reviews", sum.Reviews),
		zap.Int("embedded_products", sum.EmbeddedProducts),
		zap.Int("embedded_reviews", sum.EmbeddedReviews),
		zap.Int("embedding_tokens", sum.EmbeddingTokens),
	)
	return sum, nil
}

func (s *Service) prepare(doc *Document) error {
	for i := range doc.Categories {
		if doc.Categories[i].ID == "" || doc.Categories[i].Name == "" {
			return fmt.Errorf("category %d: id and name are required: %w", i, domain.ErrInvalidArguments)
		}
	}
	for i := range doc.Products {
		p := &doc.Products[i]
		if err := p.Validate(); err != nil {
			return err
		}
		if err := s.checkDim(p.Embedding); err != nil {
			return fmt.Errorf("product %q: %w", p.ID, err)
		}
	}
	for i := range doc.Reviews {
		rv := &doc.Reviews[i]
		if rv.ID == "" {
			rv.ID = uuid.NewSHA1(reviewNamespace, []byte(rv.ProductID+"\x00"+rv.Title+"\x00"+rv.Text)).String()
		}
		if err := rv.Validate(); err != nil {
			return err
		}
		if err := s.checkDim(rv.Embedding); err != nil {
			return fmt.Errorf("review %q: %w", rv.ID, err)
		}
	}
	return nil
}

func (s *Service) checkDim(vec []float32) error {
	if len(vec) > 0 && s.dimensions > 0 && len(vec) != s.dimensions {
		return fmt.Errorf("got %d dimensions, want %d: %w", len(vec), s.dimensions, domain.ErrVectorDimMismatch)
	}
	return nil
}

func (s *Service) embedMissing(ctx context.Context, doc *Document, sum *Summary) error {
	var productIdx, reviewIdx []int
	for i := range doc.Products {
		if len(doc.Products[i].Embedding) == 0 {
			productIdx = append(productIdx, i)
		}
	}
	for i := range doc.Reviews {
		if len(doc.Reviews[i].Embedding) == 0 {
			reviewIdx = append(reviewIdx, i)
		}
	}

	if s.embed == nil {
		sum.SkippedEmbeddings = len(productIdx) + len(reviewIdx)
		if sum.SkippedEmbeddings > 0 {
			s.logger.Warn("No embedding provider, rows stored without vectors",
				zap.Int("rows", sum.SkippedEmbeddings))
		}
		return nil
	}

	err := s.embedRows(ctx, productIdx, func(i int) string {
		return doc.Products[i].EmbeddingText()
	}, func(i int, vec []float32) {
		doc.Products[i].Embedding = vec
	}, sum)
	if err != nil {
		return fmt.Errorf("embed products: %w", err)
	}
	sum.EmbeddedProducts = len(productIdx)

	err = s.embedRows(ctx, reviewIdx, func(i int) string {
		return doc.Reviews[i].EmbeddingText()
	}, func(i int, vec []float32) {
		doc.Reviews[i].Embedding = vec
	}, sum)
	if err != nil {
		return fmt.Errorf("embed reviews: %w", err)
	}
	sum.EmbeddedReviews = len(reviewIdx)
	return nil
}

func (s *Service) embedRows(
	ctx context.Context, idx []int, text func(int) string, set func(int, []float32), sum *Summary,
) error {
	for start := 0; start < len(idx); start += s.embedBatch {
		chunk := idx[start:min(start+s.embedBatch, len(idx))]
		texts := make([]string, len(chunk))
		for j, i := range chunk {
			texts[j] = text(i)
		}

		var res domain.BatchEmbeddingResult
		var err error
		if be, ok := s.embed.(domain.BatchEmbedder); ok {
			res, err = be.BatchEmbed(ctx, texts)
		} else {
			res, err = domain.BatchFallback(ctx, s.embed, texts)
		}
		if err != nil {
			return err
		}
		if len(res.Embeddings) != len(chunk) {
			return fmt.Errorf("got %d embeddings for %d texts: %w",
				len(res.Embeddings), len(chunk), domain.ErrEmbeddingProviderError)
		}

		for j, i := range chunk {
			if err := s.checkDim(res.Embeddings[j]); err != nil {
				return err
			}
			set(i, res.Embeddings[j])
		}
		sum.EmbeddingTokens += res.TotalTokens
		s.logger.Debug("Embedded chunk", zap.Int("offset", start), zap.Int("size", len(chunk)))
	}
	return nil
}
