package postgres

import (
	"fmt"
	"strconv"

	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/review/internal/db"
)

// maxHNSWDim is the largest dimension pgvector can index with HNSW.
const maxHNSWDim = 2000

// Dialect renders PostgreSQL + pgvector SQL.
type Dialect struct{}

var _ db.Dialect = Dialect{}

// Name returns "postgres".
func (Dialect) Name() string { return "postgres" }

// Placeholder returns $n.
func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// CosineDistance uses the pgvector <=> operator.
func (Dialect) CosineDistance(column, param string) string {
	return "(" + column + " <=> " + param + ")"
}

// ContainsFold expects param to be bound to an already lower-cased needle.
func (Dialect) ContainsFold(expr, param string) string {
	return "strpos(lower(" + expr + "), " + param + ") > 0"
}

// VectorArg wraps v as a pgvector value.
func (Dialect) VectorArg(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

// ColumnType maps portable types to PostgreSQL types.
func (Dialect) ColumnType(c *db.Column) string {
	switch c.Type {
	case db.ColumnReal:
		return "DOUBLE PRECISION"
	case db.ColumnInt:
		return "BIGINT"
	case db.ColumnBool:
		return "BOOLEAN"
	case db.ColumnVector:
		return fmt.Sprintf("vector(%d)", c.VectorDim)
	default:
		return "TEXT"
	}
}

// Preamble enables the pgvector extension.
func (Dialect) Preamble() []string {
	return []string{"CREATE EXTENSION IF NOT EXISTS vector"}
}

// VectorIndex creates an HNSW cosine index when the dimension allows it.
func (Dialect) VectorIndex(table string, c *db.Column) string {
	if c.VectorDim > maxHNSWDim {
		return ""
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_%s_hnsw_idx ON %s USING hnsw (%s vector_cosine_ops)",
		table, c.Name, table, c.Name)
}
