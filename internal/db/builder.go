package db

import (
	"strings"
)

// TableBuilder is a fluent builder for table definitions.
type TableBuilder struct {
	def TableDefinition
}

// NewTable starts building a table definition.
func NewTable(name string) *TableBuilder {
	return &TableBuilder{def: TableDefinition{Name: name}}
}

func (b *TableBuilder) add(c Column) *TableBuilder {
	b.def.Columns = append(b.def.Columns, c)
	return b
}

// Key adds a TEXT primary key column.
func (b *TableBuilder) Key(name string) *TableBuilder {
	b.def.PrimaryKey = []string{name}
	return b.add(Column{Name: name, Type: ColumnText})
}

// CompositeKey sets a multi-column primary key over existing columns.
func (b *TableBuilder) CompositeKey(names ...string) *TableBuilder {
	b.def.PrimaryKey = append([]string(nil), names...)
	return b
}

// Text adds a non-null TEXT column defaulting to the empty string.
func (b *TableBuilder) Text(name string) *TableBuilder {
	return b.add(Column{Name: name, Type: ColumnText, Default: "''"})
}

// Real adds a non-null double column defaulting to 0.
func (b *TableBuilder) Real(name string) *TableBuilder {
	return b.add(Column{Name: name, Type: ColumnReal, Default: "0"})
}

// NullableReal adds a nullable double column.
func (b *TableBuilder) NullableReal(name string) *TableBuilder {
	return b.add(Column{Name: name, Type: ColumnReal, Nullable: true})
}

// Int adds a non-null integer column defaulting to 0.
func (b *TableBuilder) Int(name string) *TableBuilder {
	return b.add(Column{Name: name, Type: ColumnInt, Default: "0"})
}

// Bool adds a non-null boolean column defaulting to false.
func (b *TableBuilder) Bool(name string) *TableBuilder {
	return b.add(Column{Name: name, Type: ColumnBool, Default: "FALSE"})
}

// Vector adds a nullable embedding column.
func (b *TableBuilder) Vector(name string, dim int) *TableBuilder {
	return b.add(Column{Name: name, Type: ColumnVector, Nullable: true, VectorDim: dim})
}

// Ref adds a non-null TEXT foreign key column referencing table(column).
func (b *TableBuilder) Ref(name, table, column string) *TableBuilder {
	return b.add(Column{Name: name, Type: ColumnText, References: table + "(" + column + ")"})
}

// Index adds a secondary index named <table>_<cols>_idx.
func (b *TableBuilder) Index(columns ...string) *TableBuilder {
	b.def.Indexes = append(b.def.Indexes, IndexDefinition{
		Name:    b.def.Name + "_" + strings.Join(columns, "_") + "_idx",
		Columns: append([]string(nil), columns...),
	})
	return b
}

// Build validates and returns the table definition.
func (b *TableBuilder) Build() (*TableDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *TableBuilder) MustBuild() *TableDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// Statements renders the DDL for t in dialect d: the table, its indexes and any vector indexes.
func (t *TableDefinition) Statements(d Dialect) []string {
	cols := make([]string, 0, len(t.Columns)+1)
	for i := range t.Columns {
		c := &t.Columns[i]
		parts := []string{c.Name, d.ColumnType(c)}
		if !c.Nullable {
			parts = append(parts, "NOT NULL")
		}
		if c.Default != "" {
			parts = append(parts, "DEFAULT", c.Default)
		}
		if c.References != "" {
			parts = append(parts, "REFERENCES", c.References, "ON DELETE CASCADE")
		}
		cols = append(cols, strings.Join(parts, " "))
	}
	if len(t.PrimaryKey) > 0 {
		cols = append(cols, "PRIMARY KEY ("+strings.Join(t.PrimaryKey, ", ")+")")
	}

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + t.Name + " (\n\t" + strings.Join(cols, ",\n\t") + "\n)",
	}
	for _, idx := range t.Indexes {
		stmts = append(stmts, "CREATE INDEX IF NOT EXISTS "+idx.Name+" ON "+t.Name+
			" ("+strings.Join(idx.Columns, ", ")+")")
	}
	for i := range t.Columns {
		if t.Columns[i].Type != ColumnVector {
			continue
		}
		if stmt := d.VectorIndex(t.Name, &t.Columns[i]); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
