package postgres

import (
	"testing"

	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/review/internal/db"
)

func TestDialect_Rendering(t *testing.T) {
	d := Dialect{}
	if got := d.Placeholder(3); got != "$3" {
		t.Errorf("Placeholder(3) = %q", got)
	}
	if got := d.CosineDistance("r.embedding", "$1"); got != "(r.embedding <=> $1)" {
		t.Errorf("CosineDistance = %q", got)
	}
	if got := d.ContainsFold("c.name", "$2"); got != "strpos(lower(c.name), $2) > 0" {
		t.Errorf("ContainsFold = %q", got)
	}
}

func TestDialect_VectorArg(t *testing.T) {
	d := Dialect{}
	if d.VectorArg(nil) != nil {
		t.Error("empty vector must bind as NULL")
	}
	v, ok := d.VectorArg([]float32{1, 2}).(pgvector.Vector)
	if !ok {
		t.Fatalf("VectorArg type = %T", d.VectorArg([]float32{1, 2}))
	}
	if len(v.Slice()) != 2 {
		t.Errorf("vector len = %d", len(v.Slice()))
	}
}

func TestDialect_Schema(t *testing.T) {
	tbl := db.NewTable("products").
		Key("id").
		NullableReal("price").
		Vector("embedding", 1536).
		MustBuild()

	stmts := tbl.Statements(Dialect{})
	if len(stmts) != 2 {
		t.Fatalf("statements = %v", stmts)
	}
	want := "CREATE INDEX IF NOT EXISTS products_embedding_hnsw_idx ON products USING hnsw (embedding vector_cosine_ops)"
	if stmts[1] != want {
		t.Errorf("vector index = %q", stmts[1])
	}
	d := Dialect{}
	if got := d.ColumnType(tbl.Column("embedding")); got != "vector(1536)" {
		t.Errorf("ColumnType = %q", got)
	}
}

func TestDialect_VectorIndexSkippedForLargeDims(t *testing.T) {
	c := &db.Column{Name: "embedding", Type: db.ColumnVector, VectorDim: 3072}
	if got := (Dialect{}).VectorIndex("reviews", c); got != "" {
		t.Errorf("VectorIndex = %q, want empty", got)
	}
}

func TestNewStore_RequiresDSN(t *testing.T) {
	if _, err := NewStore(t.Context(), Config{}); err == nil {
		t.Fatal("expected error")
	}
}
