package review

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	openai "github.com/sashabaranov/go-openai"
)

// fakeEmbedder maps a few topics onto fixed 3-dim vectors.
type fakeEmbedder struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.err != nil {
		return EmbeddingResult{}, f.err
	}

	lower := strings.ToLower(text)
	vec := []float32{0, 1, 0}
	switch {
	case strings.Contains(lower, "noise") || strings.Contains(lower, "flight"):
		vec = []float32{1, 0, 0}
	case strings.Contains(lower, "water") || strings.Contains(lower, "kettle"):
		vec = []float32{0, 0, 1}
	}
	return EmbeddingResult{Embedding: vec, PromptTokens: 2, TotalTokens: 2}, nil
}

func (f *fakeEmbedder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	ctx := context.Background()
	c, err := New(ctx, append([]Option{WithSQLite(":memory:")}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)

	if err := c.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return c
}

func loadFixture(t *testing.T, c *Client) LoadSummary {
	t.Helper()
	sum, err := c.LoadFile(context.Background(), "testdata/catalog.json")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return sum
}

func decodeAnswer(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return m
}

func productIDs(m map[string]any) []string {
	list, _ := m["products"].([]any)
	ids := make([]string, 0, len(list))
	for _, p := range list {
		if obj, ok := p.(map[string]any); ok {
			ids = append(ids, obj["product_id"].(string))
		}
	}
	return ids
}

func TestNew_NoDatabase(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error when no database configured")
	}
}

func TestNew_ConflictingEmbedders(t *testing.T) {
	_, err := New(context.Background(),
		WithSQLite(":memory:"),
		WithEmbedder(&fakeEmbedder{}, 3),
		WithOpenAI("sk-test", "text-embedding-3-small", 3),
	)
	if err == nil {
		t.Fatal("expected error for two embedding providers")
	}
}

func TestNew_BadDimensions(t *testing.T) {
	_, err := New(context.Background(), WithSQLite(":memory:"), WithEmbedder(&fakeEmbedder{}, 0))
	if err == nil {
		t.Fatal("expected error for zero dimensions")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", dsn: "x"}
	if _, err := createStore(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithPostgres("postgres://localhost/review").apply(cfg)
	if cfg.driver != driverPostgres || cfg.dsn != "postgres://localhost/review" {
		t.Errorf("postgres option: %+v", cfg)
	}
	WithSQLite("catalog.db").apply(cfg)
	if cfg.driver != driverSQLite || cfg.dsn != "catalog.db" {
		t.Errorf("sqlite option: %+v", cfg)
	}

	WithOpenAIBaseURL("http://localhost:8000/v1").apply(cfg)
	WithOpenAI("sk", "m", 8).apply(cfg)
	if cfg.openAI.baseURL != "http://localhost:8000/v1" || cfg.openAI.model != "m" || cfg.dimensions != 8 {
		t.Errorf("openai options: %+v", cfg.openAI)
	}

	WithSearchConfig(SearchConfig{SampleReviews: 1}).apply(cfg)
	if cfg.search.SampleReviews != 1 {
		t.Errorf("search config not applied")
	}
}

func TestEmbedderAdapter(t *testing.T) {
	a := adaptEmbedder(&fakeEmbedder{})
	r, err := a.Embed(context.Background(), "noise")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Embedding) != 3 || r.Embedding[0] != 1 {
		t.Errorf("embedding = %v", r.Embedding)
	}

	a = adaptEmbedder(&fakeEmbedder{err: errors.New("provider down")})
	if _, err := a.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestClient_LoadEmbedsMissingVectors(t *testing.T) {
	emb := &fakeEmbedder{}
	c := newTestClient(t, WithEmbedder(emb, 3))

	sum := loadFixture(t, c)
	if sum.Products != 3 || sum.Reviews != 3 || sum.Categories != 3 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.EmbeddedProducts != 1 {
		t.Errorf("embedded products = %d, want 1", sum.EmbeddedProducts)
	}

	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Products != 3 || stats.Reviews != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestClient_FindByReviewSimilarity(t *testing.T) {
	emb := &fakeEmbedder{}
	c := newTestClient(t, WithEmbedder(emb, 3))
	loadFixture(t, c)
	before := emb.calls()

	out, err := c.FindProductsByUserRequirements(context.Background(), Requirements{
		ExampleReview: "I want noise cancelling for long flights",
	})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	m := decodeAnswer(t, out)
	if m["search_method"] != "vector_review_similarity" {
		t.Fatalf("search_method = %v in %s", m["search_method"], out)
	}
	ids := productIDs(m)
	if len(ids) == 0 || ids[0] != "p-head1" {
		t.Errorf("products = %v", ids)
	}
	if emb.calls()-before != 1 {
		t.Errorf("query embedded %d times, want 1", emb.calls()-before)
	}
}

func TestClient_FindWithoutEmbedderUsesKeywords(t *testing.T) {
	c := newTestClient(t)
	loadFixture(t, c)

	out, err := c.FindProductsByUserRequirements(context.Background(), Requirements{
		ExampleReview: "quiet blender",
	})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	m := decodeAnswer(t, out)
	if m["search_method"] != "keyword_review_match" {
		t.Fatalf("search_method = %v in %s", m["search_method"], out)
	}
	found := false
	for _, id := range productIDs(m) {
		found = found || id == "p-blender"
	}
	if !found {
		t.Errorf("p-blender missing from %s", out)
	}
}

func TestClient_FindInvalidInput(t *testing.T) {
	c := newTestClient(t)

	out, err := c.FindProductsByUserRequirements(context.Background(), Requirements{ExampleReview: "  "})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	m := decodeAnswer(t, out)
	if m["error"] == nil {
		t.Errorf("expected error answer, got %s", out)
	}
}

func TestClient_Tools(t *testing.T) {
	c := newTestClient(t)
	loadFixture(t, c)
	ctx := context.Background()

	defs := c.Tools()
	if len(defs) != 6 {
		t.Fatalf("tools = %d, want 6", len(defs))
	}

	out, err := c.InvokeTool(ctx, "find_product_by_name", json.RawMessage(`{"name":"Quiet Blender"}`))
	if err != nil {
		t.Fatalf("InvokeTool: %v", err)
	}
	if !strings.Contains(string(out), "p-blender") {
		t.Errorf("output = %s", out)
	}

	if _, err := c.InvokeTool(ctx, "no_such_tool", json.RawMessage(`{}`)); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("err = %v, want ErrUnknownTool", err)
	}

	msgs := c.HandleToolCalls(ctx, []openai.ToolCall{{
		ID:   "call_1",
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      "get_popular_products",
			Arguments: `{"category":"Home & Kitchen"}`,
		},
	}})
	if len(msgs) != 1 || msgs[0].ToolCallID != "call_1" || msgs[0].Role != openai.ChatMessageRoleTool {
		t.Fatalf("messages = %+v", msgs)
	}
	if !strings.Contains(msgs[0].Content, "p-blender") {
		t.Errorf("content = %s", msgs[0].Content)
	}
}

func TestClient_PrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, WithPrometheus(reg))

	if _, err := c.FindProductsByUserRequirements(context.Background(), Requirements{ExampleReview: "kettle"}); err != nil {
		t.Fatalf("Find: %v", err)
	}

	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues(opMigrate, "ok")); got != 1 {
		t.Errorf("migrate ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues(opFind, "ok")); got != 1 {
		t.Errorf("find ok = %v, want 1", got)
	}

	// A second client on the same registry reuses the collectors.
	newTestClient(t, WithPrometheus(reg))
}

func TestClient_Ping(t *testing.T) {
	c := newTestClient(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
