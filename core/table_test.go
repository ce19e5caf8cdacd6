package core

import (
	"errors"
	"testing"
)

func usersTable() Table {
	return Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", Type: IntegerType, PrimaryKey: true},
			{Name: "name", Type: TextType},
			{Name: "score", Type: RealType},
		},
	}
}

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		name     string
		expected ColumnType
	}{
		{"integer", IntegerType},
		{"INT", IntegerType},
		{"text", TextType},
		{"varchar", TextType},
		{"Real", RealType},
		{"double", RealType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColumnType(tt.name)
			if err != nil {
				t.Fatalf("ParseColumnType(%q) failed: %v", tt.name, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	if _, err := ParseColumnType("blob"); err == nil {
		t.Error("Expected error for unknown type")
	}
}

func TestColumnIndexAndPrimaryKey(t *testing.T) {
	table := usersTable()

	if idx := table.ColumnIndex("name"); idx != 1 {
		t.Errorf("Expected index 1 for name, got %d", idx)
	}
	if idx := table.ColumnIndex("missing"); idx != -1 {
		t.Errorf("Expected -1 for missing column, got %d", idx)
	}

	col, idx, ok := table.PrimaryKey()
	if !ok || col.Name != "id" || idx != 0 {
		t.Errorf("Expected primary key id at 0, got %v %d %v", col.Name, idx, ok)
	}

	noKey := Table{Name: "t", Columns: []Column{{Name: "a", Type: TextType}}}
	if _, _, ok := noKey.PrimaryKey(); ok {
		t.Error("Expected no primary key")
	}
}

func TestTableValidate(t *testing.T) {
	if err := usersTable().Validate(); err != nil {
		t.Fatalf("Expected valid table, got %v", err)
	}

	twoKeys := Table{Name: "t", Columns: []Column{
		{Name: "a", Type: IntegerType, PrimaryKey: true},
		{Name: "b", Type: IntegerType, PrimaryKey: true},
	}}
	if err := twoKeys.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for two primary keys, got %v", err)
	}

	dup := Table{Name: "t", Columns: []Column{{Name: "a"}, {Name: "a"}}}
	if err := dup.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for duplicate columns, got %v", err)
	}

	empty := Table{Name: "t"}
	if err := empty.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for empty table, got %v", err)
	}
}

func TestColumnCheckValue(t *testing.T) {
	tests := []struct {
		column Column
		value  string
		valid  bool
	}{
		{Column{Name: "id", Type: IntegerType}, "42", true},
		{Column{Name: "id", Type: IntegerType}, "-7", true},
		{Column{Name: "id", Type: IntegerType}, "4.2", false},
		{Column{Name: "id", Type: IntegerType}, "abc", false},
		{Column{Name: "score", Type: RealType}, "4.2", true},
		{Column{Name: "score", Type: RealType}, "10", true},
		{Column{Name: "score", Type: RealType}, "ten", false},
		{Column{Name: "name", Type: TextType}, "Alice", true},
		{Column{Name: "name", Type: TextType}, "", true},
		{Column{Name: "name", Type: TextType}, "a|b", false},
		{Column{Name: "name", Type: TextType}, "a\nb", false},
	}

	for _, tt := range tests {
		err := tt.column.CheckValue(tt.value)
		if tt.valid && err != nil {
			t.Errorf("Expected %q valid for %s, got %v", tt.value, tt.column.Type, err)
		}
		if !tt.valid && !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation for %q as %s, got %v", tt.value, tt.column.Type, err)
		}
	}
}
