package sqlite

import (
	"strconv"

	"github.com/kailas-cloud/review/internal/db"
)

// Dialect renders SQLite SQL using the functions registered by this package.
type Dialect struct{}

var _ db.Dialect = Dialect{}

// Name returns "sqlite".
func (Dialect) Name() string { return "sqlite" }

// Placeholder returns ?n.
func (Dialect) Placeholder(n int) string { return "?" + strconv.Itoa(n) }

// CosineDistance calls the registered cosine_distance function.
func (Dialect) CosineDistance(column, param string) string {
	return fnCosineDistance + "(" + column + ", " + param + ")"
}

// ContainsFold calls the registered contains_fold function.
func (Dialect) ContainsFold(expr, param string) string {
	return fnContainsFold + "(" + expr + ", " + param + ") = 1"
}

// VectorArg encodes v as a float32 blob.
func (Dialect) VectorArg(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return EncodeVector(v)
}

// ColumnType maps portable types to SQLite storage classes.
func (Dialect) ColumnType(c *db.Column) string {
	switch c.Type {
	case db.ColumnReal:
		return "REAL"
	case db.ColumnInt, db.ColumnBool:
		return "INTEGER"
	case db.ColumnVector:
		return "BLOB"
	default:
		return "TEXT"
	}
}

// Preamble is empty for SQLite.
func (Dialect) Preamble() []string { return nil }

// VectorIndex is unsupported; distance is computed by a full scan.
func (Dialect) VectorIndex(string, *db.Column) string { return "" }
