package db

// Query accumulates bound parameters for a single statement.
type Query struct {
	dialect Dialect
	args    []any
}

// NewQuery starts a parameter list for the given dialect.
func NewQuery(d Dialect) *Query {
	return &Query{dialect: d}
}

// Bind appends v and returns its placeholder. The placeholder may be reused.
func (q *Query) Bind(v any) string {
	q.args = append(q.args, v)
	return q.dialect.Placeholder(len(q.args))
}

// BindVector binds a vector through the dialect conversion.
func (q *Query) BindVector(v []float32) string {
	return q.Bind(q.dialect.VectorArg(v))
}

// Dialect returns the dialect the query renders for.
func (q *Query) Dialect() Dialect { return q.dialect }

// Args returns the bound parameters in placeholder order.
func (q *Query) Args() []any { return q.args }
