package db

import (
	"strings"

	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/sql"
)

// MatchesCondition evaluates a WHERE condition given as text, for example
// "brand=acme or color=red", against one row of table.
func MatchesCondition(table core.Table, row core.Row, conditionText string) (bool, error) {
	where, err := sql.ParseCondition(conditionText)
	if err != nil {
		return false, err
	}
	return matchesWhereClause(table, row, where), nil
}

func matchesWhereClause(table core.Table, row core.Row, where sql.WhereClause) bool {
	if where.IsEmpty() {
		return true
	}

	result := evaluateCondition(table, row, where.Conditions[0])
	if len(where.Conditions) == 1 {
		return result
	}

	second := evaluateCondition(table, row, where.Conditions[1])
	switch where.LogicalOp {
	case sql.LogicalOr:
		return result || second
	default:
		return result && second
	}
}

// evaluateCondition compares case-insensitively. A column the table does
// not have never matches.
func evaluateCondition(table core.Table, row core.Row, condition sql.WhereCondition) bool {
	index := table.ColumnIndex(condition.Column)
	if index < 0 || index >= len(row) {
		return false
	}
	return strings.EqualFold(row[index], condition.Value)
}
