package op

import (
	"fmt"
	"iter"

	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/ps"
)

type TableOp struct {
	Table       core.Table
	Persistence *ps.Persistence
}

// CreateTable writes the schema and an empty data file. A table whose data
// file already exists is left alone.
func CreateTable(table core.Table, persistence *ps.Persistence) (*TableOp, error) {
	if persistence.TableExists(table.Name) {
		return nil, fmt.Errorf("table %s: %w", table.Name, core.ErrAlreadyExists)
	}

	if err := persistence.CreateSchema(table); err != nil {
		return nil, err
	}
	if err := persistence.CreateTableFile(table.Name); err != nil {
		_ = persistence.DeleteSchema(table.Name)
		return nil, err
	}

	return &TableOp{
		Table:       table,
		Persistence: persistence,
	}, nil
}

// GetTable requires both the data file and the schema file.
func GetTable(tableName string, persistence *ps.Persistence) (*TableOp, error) {
	if !persistence.TableExists(tableName) {
		return nil, fmt.Errorf("table %s: %w", tableName, core.ErrNotFound)
	}

	table, err := persistence.GetSchema(tableName)
	if err != nil {
		return nil, err
	}

	return &TableOp{
		Table:       *table,
		Persistence: persistence,
	}, nil
}

// Scan yields every row in file order. A row whose cell count differs from
// the schema is reported as ps.ErrMalformedRow.
func (op *TableOp) Scan() iter.Seq2[core.Row, error] {
	return func(yield func(core.Row, error) bool) {
		lineNumber := 0
		for row, err := range op.Persistence.ReadRows(op.Table.Name) {
			if err != nil {
				yield(nil, err)
				return
			}
			lineNumber++
			if len(row) != len(op.Table.Columns) {
				yield(nil, fmt.Errorf("%w: table %s line %d has %d cells, expected %d",
					ps.ErrMalformedRow, op.Table.Name, lineNumber, len(row), len(op.Table.Columns)))
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// ValidateRow checks the cell count and every cell against its column type.
func (op *TableOp) ValidateRow(row core.Row) error {
	if len(row) != len(op.Table.Columns) {
		return fmt.Errorf("%w: table %s has %d columns, got %d values",
			core.ErrValidation, op.Table.Name, len(op.Table.Columns), len(row))
	}
	for i, column := range op.Table.Columns {
		if err := column.CheckValue(row[i]); err != nil {
			return err
		}
	}
	return nil
}

// PrimaryKeyAvailable reports whether no stored row already holds candidate
// as its primary key. Tables without a primary key accept anything.
func (op *TableOp) PrimaryKeyAvailable(candidate string) (bool, error) {
	_, index, ok := op.Table.PrimaryKey()
	if !ok {
		return true, nil
	}

	for row, err := range op.Scan() {
		if err != nil {
			return false, err
		}
		if row[index] == candidate {
			return false, nil
		}
	}
	return true, nil
}

// Insert validates row, enforces primary key uniqueness and appends it.
func (op *TableOp) Insert(row core.Row) error {
	if err := op.ValidateRow(row); err != nil {
		return err
	}

	if pk, index, ok := op.Table.PrimaryKey(); ok {
		available, err := op.PrimaryKeyAvailable(row[index])
		if err != nil {
			return err
		}
		if !available {
			return fmt.Errorf("%w: duplicate value %q for primary key %s",
				core.ErrConstraintViolation, row[index], pk.Name)
		}
	}

	return op.Persistence.AppendRow(op.Table.Name, row)
}

// Rewrite replaces the table content with rows.
func (op *TableOp) Rewrite(rows iter.Seq2[core.Row, error]) error {
	return op.Persistence.RewriteTable(op.Table.Name, rows)
}
