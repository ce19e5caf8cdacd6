package db

import (
	"fmt"
	"time"

	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/op"
	"github.com/nickyhof/LightDB/ps"
	"github.com/nickyhof/LightDB/sql"
)

// Engine executes one statement at a time against a Persistence. It has no
// transaction state of its own; use a Session for BEGIN/END/COMMIT/ROLLBACK.
type Engine struct {
	*ps.Persistence
	Identity core.Identity
}

func NewEngine(persistence *ps.Persistence, identity core.Identity) *Engine {
	return &Engine{
		Persistence: persistence,
		Identity:    identity,
	}
}

// Execute parses and runs a single statement. Every mutation is recorded as
// its own snapshot when history is enabled.
func (engine *Engine) Execute(query string) (Result, error) {
	return engine.execute(query, true)
}

func (engine *Engine) execute(query string, snapshot bool) (Result, error) {
	statement, err := sql.NewParser(query).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrParseMismatch, err)
	}
	return engine.executeStatement(statement, query, snapshot)
}

func (engine *Engine) executeStatement(statement sql.Statement, query string, snapshot bool) (Result, error) {
	var (
		result CommitResult
		err    error
	)

	switch statement.Type() {
	case sql.SelectStatementType:
		return engine.executeSelectStatement(statement.(sql.SelectStatement))
	case sql.InsertStatementType:
		result, err = engine.executeInsertStatement(statement.(sql.InsertStatement))
	case sql.UpdateStatementType:
		result, err = engine.executeUpdateStatement(statement.(sql.UpdateStatement))
	case sql.DeleteStatementType:
		result, err = engine.executeDeleteStatement(statement.(sql.DeleteStatement))
	case sql.CreateTableStatementType:
		result, err = engine.executeCreateTableStatement(statement.(sql.CreateTableStatement))
	case sql.BeginStatementType, sql.EndStatementType, sql.CommitStatementType, sql.RollbackStatementType:
		return nil, fmt.Errorf("%w: %s requires a session", core.ErrTransactionState, statement.Type())
	default:
		return nil, fmt.Errorf("unsupported statement type: %v", statement.Type())
	}
	if err != nil {
		return nil, err
	}

	if snapshot {
		txn, err := engine.Snapshot(query, engine.Identity)
		if err != nil {
			return nil, err
		}
		result.Transaction = txn
	}
	return result, nil
}

func (engine *Engine) executeSelectStatement(statement sql.SelectStatement) (QueryResult, error) {
	startTime := time.Now()

	tableOp, err := op.GetTable(statement.Table, engine.Persistence)
	if err != nil {
		return QueryResult{}, err
	}

	// Determine columns to select
	columns := statement.Columns
	if len(columns) == 0 {
		columns = tableOp.Table.ColumnNames()
	}

	indexes := make([]int, len(columns))
	for i, column := range columns {
		indexes[i] = tableOp.Table.ColumnIndex(column)
		if indexes[i] < 0 {
			return QueryResult{}, fmt.Errorf("%w: table %s has no column %s", core.ErrValidation, statement.Table, column)
		}
	}

	result := QueryResult{
		Table:   statement.Table,
		Columns: columns,
		Data:    [][]string{},
	}
	for row, err := range tableOp.Scan() {
		if err != nil {
			return QueryResult{}, err
		}
		result.RowsScanned++

		if !matchesWhereClause(tableOp.Table, row, statement.Where) {
			continue
		}

		values := make([]string, len(indexes))
		for i, index := range indexes {
			values[i] = row[index]
		}
		result.Data = append(result.Data, values)
	}

	result.RecordsRead = len(result.Data)
	result.ExecutionOps = result.RowsScanned
	result.ExecutionTimeSec = time.Since(startTime).Seconds()
	return result, nil
}

func (engine *Engine) executeInsertStatement(statement sql.InsertStatement) (CommitResult, error) {
	startTime := time.Now()

	tableOp, err := op.GetTable(statement.Table, engine.Persistence)
	if err != nil {
		return CommitResult{}, err
	}

	if err := tableOp.Insert(core.Row(statement.Values)); err != nil {
		return CommitResult{}, err
	}

	return CommitResult{
		RecordsWritten:   1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     1,
	}, nil
}

// executeUpdateStatement rewrites every matching row with the assignments
// applied. A new primary key value must be unused and may only be given to
// a single row.
func (engine *Engine) executeUpdateStatement(statement sql.UpdateStatement) (CommitResult, error) {
	startTime := time.Now()

	tableOp, err := op.GetTable(statement.Table, engine.Persistence)
	if err != nil {
		return CommitResult{}, err
	}
	table := tableOp.Table

	assignments := make(map[int]string, len(statement.Updates))
	for _, update := range statement.Updates {
		index := table.ColumnIndex(update.Column)
		if index < 0 {
			return CommitResult{}, fmt.Errorf("%w: table %s has no column %s", core.ErrValidation, table.Name, update.Column)
		}
		if err := table.Columns[index].CheckValue(update.Value); err != nil {
			return CommitResult{}, err
		}
		assignments[index] = update.Value
	}

	matched := 0
	scanned := 0
	for row, err := range tableOp.Scan() {
		if err != nil {
			return CommitResult{}, err
		}
		scanned++
		if matchesWhereClause(table, row, statement.Where) {
			matched++
		}
	}
	if matched == 0 {
		return CommitResult{
			ExecutionTimeSec: time.Since(startTime).Seconds(),
			ExecutionOps:     scanned,
		}, nil
	}

	if pk, index, ok := table.PrimaryKey(); ok {
		if value, assigned := assignments[index]; assigned {
			if matched > 1 {
				return CommitResult{}, fmt.Errorf("%w: %d rows would share primary key %s=%q",
					core.ErrConstraintViolation, matched, pk.Name, value)
			}
			// Every row counts, including the one being updated
			available, err := tableOp.PrimaryKeyAvailable(value)
			if err != nil {
				return CommitResult{}, err
			}
			if !available {
				return CommitResult{}, fmt.Errorf("%w: duplicate value %q for primary key %s",
					core.ErrConstraintViolation, value, pk.Name)
			}
		}
	}

	rows := func(yield func(core.Row, error) bool) {
		for row, err := range tableOp.Scan() {
			if err == nil && matchesWhereClause(table, row, statement.Where) {
				updated := make(core.Row, len(row))
				copy(updated, row)
				for index, value := range assignments {
					updated[index] = value
				}
				row = updated
			}
			if !yield(row, err) {
				return
			}
		}
	}
	if err := tableOp.Rewrite(rows); err != nil {
		return CommitResult{}, err
	}

	return CommitResult{
		RecordsWritten:   matched,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     scanned + matched,
	}, nil
}

func (engine *Engine) executeDeleteStatement(statement sql.DeleteStatement) (CommitResult, error) {
	startTime := time.Now()

	tableOp, err := op.GetTable(statement.Table, engine.Persistence)
	if err != nil {
		return CommitResult{}, err
	}

	deleted := 0
	scanned := 0
	for row, err := range tableOp.Scan() {
		if err != nil {
			return CommitResult{}, err
		}
		scanned++
		if matchesWhereClause(tableOp.Table, row, statement.Where) {
			deleted++
		}
	}

	if deleted > 0 {
		kept := func(yield func(core.Row, error) bool) {
			for row, err := range tableOp.Scan() {
				if err == nil && matchesWhereClause(tableOp.Table, row, statement.Where) {
					continue
				}
				if !yield(row, err) {
					return
				}
			}
		}
		if err := tableOp.Rewrite(kept); err != nil {
			return CommitResult{}, err
		}
	}

	return CommitResult{
		RecordsDeleted:   deleted,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     scanned,
	}, nil
}

func (engine *Engine) executeCreateTableStatement(statement sql.CreateTableStatement) (CommitResult, error) {
	startTime := time.Now()

	_, err := op.CreateTable(core.Table{
		Name:    statement.Table,
		Columns: statement.Columns,
	}, engine.Persistence)
	if err != nil {
		return CommitResult{}, err
	}

	return CommitResult{
		TablesCreated:    1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     2, // schema and table file
	}, nil
}
