package db

import (
	"errors"
	"strconv"
)

// ColumnType enumerates the portable column types.
type ColumnType int

const (
	// ColumnText is a variable-length string.
	ColumnText ColumnType = iota
	// ColumnReal is a double-precision float.
	ColumnReal
	// ColumnInt is a 64-bit integer.
	ColumnInt
	// ColumnBool is a boolean.
	ColumnBool
	// ColumnVector is a float32 embedding vector.
	ColumnVector
)

// Column describes a single table column.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
	Default  string // literal SQL default, empty for none

	// References is "table(column)" for a foreign key.
	References string

	// VECTOR options
	VectorDim int
}

// IndexDefinition is a secondary B-tree index.
type IndexDefinition struct {
	Name    string
	Columns []string
}

// TableDefinition is a complete table definition used by Migrate.
type TableDefinition struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
	Indexes    []IndexDefinition
}

// Validate checks that the table definition is well-formed.
func (t *TableDefinition) Validate() error {
	if t.Name == "" {
		return errors.New("table name is required")
	}
	if !IsValidIdentifier(t.Name) {
		return errors.New("table name contains invalid characters")
	}
	if len(t.Columns) == 0 {
		return errors.New("at least one column is required")
	}

	seen := make(map[string]bool)
	for i := range t.Columns {
		c := &t.Columns[i]
		if c.Name == "" {
			return errors.New("column name is required at index " + strconv.Itoa(i))
		}
		if !IsValidIdentifier(c.Name) {
			return errors.New("column name contains invalid characters: " + c.Name)
		}
		if seen[c.Name] {
			return errors.New("duplicate column name: " + c.Name)
		}
		seen[c.Name] = true

		if c.Type == ColumnVector && c.VectorDim <= 0 {
			return errors.New("vector column requires positive dimension")
		}
	}

	for _, k := range t.PrimaryKey {
		if !seen[k] {
			return errors.New("primary key references unknown column: " + k)
		}
	}
	for _, idx := range t.Indexes {
		if !IsValidIdentifier(idx.Name) {
			return errors.New("index name contains invalid characters: " + idx.Name)
		}
		for _, c := range idx.Columns {
			if !seen[c] {
				return errors.New("index " + idx.Name + " references unknown column: " + c)
			}
		}
	}

	return nil
}

// Column returns the named column or nil.
func (t *TableDefinition) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// IsValidIdentifier returns true if s matches [a-z_][a-z0-9_]*.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		if !isLower && r != '_' && (!isDigit || i == 0) {
			return false
		}
	}
	return true
}
