package core

import (
	"fmt"
	"strconv"
	"strings"
)

type ColumnType int

const (
	IntegerType ColumnType = iota
	TextType
	RealType
)

// String returns the name stored in schema files.
func (t ColumnType) String() string {
	switch t {
	case IntegerType:
		return "integer"
	case TextType:
		return "text"
	case RealType:
		return "real"
	default:
		return "unknown"
	}
}

// ParseColumnType resolves a type name, accepting the common aliases.
func ParseColumnType(name string) (ColumnType, error) {
	switch strings.ToLower(name) {
	case "integer", "int":
		return IntegerType, nil
	case "text", "varchar", "string":
		return TextType, nil
	case "real", "double", "float":
		return RealType, nil
	default:
		return 0, fmt.Errorf("unknown column type %q (expected integer, text or real)", name)
	}
}

type Column struct {
	Name       string     `json:"name"`
	Type       ColumnType `json:"type"`
	PrimaryKey bool       `json:"primaryKey"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Row is one cell per column, in the table's column order.
type Row []string

// ColumnIndex returns the position of the named column, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// PrimaryKey returns the primary key column and its position.
// ok is false when the table has no primary key.
func (t Table) PrimaryKey() (col Column, index int, ok bool) {
	for i, c := range t.Columns {
		if c.PrimaryKey {
			return c, i, true
		}
	}
	return Column{}, -1, false
}

func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Validate checks the invariants a table definition must hold before it is
// persisted: at least one column, unique column names, at most one primary key.
func (t Table) Validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("%w: table %s has no columns", ErrValidation, t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	primaryKeys := 0
	for _, col := range t.Columns {
		if seen[col.Name] {
			return fmt.Errorf("%w: duplicate column %s", ErrValidation, col.Name)
		}
		seen[col.Name] = true
		if col.PrimaryKey {
			primaryKeys++
		}
	}
	if primaryKeys > 1 {
		return fmt.Errorf("%w: table %s declares %d primary keys", ErrValidation, t.Name, primaryKeys)
	}
	return nil
}

// CheckValue reports whether value is acceptable for the column.
func (c Column) CheckValue(value string) error {
	if strings.ContainsAny(value, "|\r\n") {
		return fmt.Errorf("%w: value for %s contains a reserved character", ErrValidation, c.Name)
	}
	switch c.Type {
	case IntegerType:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("%w: %q is not an integer (column %s)", ErrValidation, value, c.Name)
		}
	case RealType:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%w: %q is not a real (column %s)", ErrValidation, value, c.Name)
		}
	}
	return nil
}
