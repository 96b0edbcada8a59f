package catalog

import (
	"context"
	"testing"

	"github.com/kailas-cloud/review/internal/db/sqlite"
	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/domain/search/criteria"
	"github.com/kailas-cloud/review/internal/domain/search/filter"
	"github.com/kailas-cloud/review/internal/domain/search/request"
)

const testDim = 3

func price(f float64) *float64 { return &f }

func fixture() *Batch {
	return &Batch{
		Categories: []domain.Category{
			{ID: "c-el", Name: "Electronics", Level: 1},
			{ID: "c-audio", Name: "Audio Electronics", Level: 2},
			{ID: "c-kitchen", Name: "Home & Kitchen", Level: 1},
		},
		Products: []domain.Product{
			{
				ID: "p-head1", Title: "Travel Headphones",
				Description: "Noise cancelling over-ear headphones for travel",
				Features:    "Bluetooth 5.3; 30h battery", Price: price(199),
				AverageRating: 4.6, RatingCount: 120, Store: "SoundCo",
				Categories: []string{"c-el", "c-audio"}, Embedding: []float32{1, 0, 0},
			},
			{
				ID: "p-head2", Title: "Studio Headphones", Description: "Flat response monitors",
				AverageRating: 4.2, RatingCount: 40,
				Categories: []string{"c-el"}, Embedding: []float32{0.9, 0.1, 0},
			},
			{
				ID: "p-speaker", Title: "Bluetooth Speaker", Description: "Portable and loud",
				AverageRating: 3.5, RatingCount: 300,
				Categories: []string{"c-el"}, Embedding: []float32{0, 1, 0},
			},
			{
				ID: "p-kettle", Title: "Electric Kettle", Description: "Boils water fast",
				AverageRating: 4.8, RatingCount: 8,
				Categories: []string{"c-kitchen"}, Embedding: []float32{0, 0, 1},
			},
			{
				ID: "p-blender", Title: "Quiet Blender", Description: "Smoothies without the noise",
				AverageRating: 4.4, RatingCount: 55,
				Categories: []string{"c-kitchen"},
			},
			{
				ID: "p-lamp", Title: "Desk Lamp", Description: "Warm light",
				AverageRating: 4.9, RatingCount: 15,
			},
		},
		Reviews: []domain.Review{
			{ID: "r1", ProductID: "p-head1", Rating: 5, Title: "Great for flights",
				Text: "Noise cancelling is superb on long flights", HelpfulVotes: 10,
				VerifiedPurchase: true, Embedding: []float32{1, 0, 0}},
			{ID: "r2", ProductID: "p-head1", Rating: 4, Title: "Comfy",
				Text: "Comfortable for travel", HelpfulVotes: 3, Embedding: []float32{0.95, 0.05, 0}},
			{ID: "r3", ProductID: "p-head2", Rating: 5, Title: "Crisp",
				Text: "Crisp sound, comfortable fit", HelpfulVotes: 7, Embedding: []float32{0.9, 0.1, 0}},
			{ID: "r4", ProductID: "p-head2", Rating: 2, Title: "Broke",
				Text: "These headphones broke after a week", HelpfulVotes: 20, Embedding: []float32{1, 0, 0}},
			{ID: "r5", ProductID: "p-kettle", Rating: 5, Title: "Fast",
				Text: "Boils water fast and quiet", HelpfulVotes: 4, Embedding: []float32{0, 0, 1}},
			{ID: "r6", ProductID: "p-speaker", Rating: 4, Title: "Loud",
				Text: "Loud and comfortable to carry", HelpfulVotes: 1, Embedding: []float32{0, 1, 0}},
			{ID: "r7", ProductID: "p-blender", Rating: 5, Title: "Silent",
				Text: "Very quiet blender", HelpfulVotes: 9},
		},
	}
}

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	s, err := sqlite.NewStore(sqlite.Config{Path: sqlite.Memory})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(s.Close)

	ctx := context.Background()
	if err := Migrate(ctx, s, testDim); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := New(s)
	if err := repo.Write(ctx, fixture()); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return repo
}

func common(minRating float64, category string, limit int) criteria.Common {
	return criteria.Common{
		Bounds:   request.Range{Min: minRating},
		Category: filter.MustCategory(category),
		Limit:    limit,
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}
