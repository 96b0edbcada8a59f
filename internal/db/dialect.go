package db

// Dialect renders the backend-specific parts of catalog SQL.
// Parameters passed to rendering methods are already-bound placeholders.
type Dialect interface {
	// Name is the driver name ("postgres", "sqlite").
	Name() string
	// Placeholder returns the n-th (1-based) positional parameter marker.
	Placeholder(n int) string
	// CosineDistance renders 1 - cos(column, param).
	CosineDistance(column, param string) string
	// ContainsFold renders a case-insensitive containment test of a lower-cased needle param in expr.
	ContainsFold(expr, param string) string
	// VectorArg converts a vector to the driver's parameter value; nil or empty becomes NULL.
	VectorArg(v []float32) any
	// ColumnType maps a column definition to a native SQL type.
	ColumnType(c *Column) string
	// Preamble lists statements that must run before any table is created.
	Preamble() []string
	// VectorIndex renders an ANN index over a vector column, or "" when unsupported.
	VectorIndex(table string, c *Column) string
}
