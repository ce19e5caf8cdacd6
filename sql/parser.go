package sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nickyhof/LightDB/core"
)

type StatementType int

const (
	CreateTableStatementType StatementType = iota
	SelectStatementType
	InsertStatementType
	UpdateStatementType
	DeleteStatementType
	BeginStatementType
	EndStatementType
	CommitStatementType
	RollbackStatementType
)

func (t StatementType) String() string {
	switch t {
	case CreateTableStatementType:
		return "CREATE TABLE"
	case SelectStatementType:
		return "SELECT"
	case InsertStatementType:
		return "INSERT"
	case UpdateStatementType:
		return "UPDATE"
	case DeleteStatementType:
		return "DELETE"
	case BeginStatementType:
		return "BEGIN TRANSACTION"
	case EndStatementType:
		return "END TRANSACTION"
	case CommitStatementType:
		return "COMMIT"
	case RollbackStatementType:
		return "ROLLBACK"
	default:
		return fmt.Sprintf("StatementType(%d)", int(t))
	}
}

type Statement interface {
	Type() StatementType
}

type CreateTableStatement struct {
	Table   string
	Columns []core.Column
}

type SelectStatement struct {
	Table   string
	Columns []string // empty means *
	Where   WhereClause
}

type InsertStatement struct {
	Table  string
	Values []string
}

type UpdateStatement struct {
	Table   string
	Updates []SetClause
	Where   WhereClause
}

type SetClause struct {
	Column string
	Value  string
}

type DeleteStatement struct {
	Table string
	Where WhereClause
}

type BeginStatement struct{}
type EndStatement struct{}
type CommitStatement struct{}
type RollbackStatement struct{}

// WhereClause holds zero, one or two equality conditions. With two
// conditions LogicalOp joins them.
type WhereClause struct {
	Conditions []WhereCondition
	LogicalOp  LogicalOperator
}

type LogicalOperator int

const (
	LogicalAnd LogicalOperator = iota
	LogicalOr
)

type WhereCondition struct {
	Column string
	Value  string
}

func (where WhereClause) IsEmpty() bool {
	return len(where.Conditions) == 0
}

func (s CreateTableStatement) Type() StatementType {
	return CreateTableStatementType
}

func (s SelectStatement) Type() StatementType {
	return SelectStatementType
}

func (s InsertStatement) Type() StatementType {
	return InsertStatementType
}

func (s UpdateStatement) Type() StatementType {
	return UpdateStatementType
}

func (s DeleteStatement) Type() StatementType {
	return DeleteStatementType
}

func (s BeginStatement) Type() StatementType {
	return BeginStatementType
}

func (s EndStatement) Type() StatementType {
	return EndStatementType
}

func (s CommitStatement) Type() StatementType {
	return CommitStatementType
}

func (s RollbackStatement) Type() StatementType {
	return RollbackStatementType
}

type Parser struct {
	lexer *Lexer
}

func NewParser(sql string) *Parser {
	lexer := NewLexer(sql)
	return &Parser{lexer: lexer}
}

// Parse parses exactly one statement. Anything after the statement other
// than a single trailing semicolon is an error.
func Parse(sql string) (Statement, error) {
	return NewParser(sql).Parse()
}

func (parser *Parser) Parse() (Statement, error) {
	statement, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	if err := parser.expectEnd(); err != nil {
		return nil, err
	}
	return statement, nil
}

func (parser *Parser) parseStatement() (Statement, error) {
	token := parser.lexer.NextToken()
	switch token.Type {
	case Create:
		return ParseCreateTable(parser)
	case Select:
		return ParseSelect(parser)
	case Insert:
		return ParseInsert(parser)
	case Update:
		return ParseUpdate(parser)
	case Delete:
		return ParseDelete(parser)
	case Begin:
		if parser.lexer.PeekToken().Type == TransactionIdentifier {
			parser.lexer.NextToken()
		}
		return BeginStatement{}, nil
	case End:
		if parser.lexer.NextToken().Type != TransactionIdentifier {
			return nil, errors.New("expected TRANSACTION after END")
		}
		return EndStatement{}, nil
	case Commit:
		return CommitStatement{}, nil
	case Rollback:
		return RollbackStatement{}, nil
	case EOF:
		return nil, errors.New("empty statement")
	default:
		return nil, fmt.Errorf("unknown statement type near %q", token.Value)
	}
}

func (parser *Parser) expectEnd() error {
	token := parser.lexer.NextToken()
	if token.Type == Semicolon {
		token = parser.lexer.NextToken()
	}
	if token.Type != EOF {
		return fmt.Errorf("unexpected %s after end of statement", token)
	}
	return nil
}

func (parser *Parser) parseName(what string) (string, error) {
	token := parser.lexer.NextToken()
	if token.Type != Identifier || !isValidName(token.Value) {
		return "", fmt.Errorf("expected %s, got %s", what, token)
	}
	return token.Value, nil
}

// isValidName accepts names that are safe to use as file names.
func isValidName(name string) bool {
	if name == "" || isDigit(name[0]) {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isLetter(name[i]) && !isDigit(name[i]) {
			return false
		}
	}
	return true
}

// ParseCreateTable parses: CREATE TABLE name (col type [primarykey], ...)
func ParseCreateTable(parser *Parser) (Statement, error) {
	var createTableStatement CreateTableStatement

	if parser.lexer.NextToken().Type != TableIdentifier {
		return nil, errors.New("expected TABLE after CREATE")
	}

	table, err := parser.parseName("table name")
	if err != nil {
		return nil, err
	}
	createTableStatement.Table = table

	if parser.lexer.NextToken().Type != ParenOpen {
		return nil, errors.New("expected '(' after table name")
	}

	for {
		columnName, err := parser.parseName("column name")
		if err != nil {
			return nil, err
		}

		token := parser.lexer.NextToken()
		if token.Type != Identifier {
			return nil, fmt.Errorf("expected column type for %s", columnName)
		}
		columnType, err := core.ParseColumnType(token.Value)
		if err != nil {
			return nil, err
		}

		isPrimaryKey := false
		token = parser.lexer.PeekToken()
		if token.Type == PrimaryKey || (token.Type == Identifier && strings.EqualFold(token.Value, "primarykey")) {
			parser.lexer.NextToken()
			isPrimaryKey = true
		}

		createTableStatement.Columns = append(createTableStatement.Columns, core.Column{
			Name:       columnName,
			Type:       columnType,
			PrimaryKey: isPrimaryKey,
		})

		token = parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		} else if token.Type == ParenClose {
			break
		} else {
			return nil, errors.New("expected ',' or ')' in column list")
		}
	}

	return createTableStatement, nil
}

func ParseSelect(parser *Parser) (Statement, error) {
	var selectStatement SelectStatement

	token := parser.lexer.NextToken()
	if token.Type == Wildcard {
		selectStatement.Columns = []string{}
		token = parser.lexer.NextToken()
	} else if token.Type == Identifier {
		selectStatement.Columns = append(selectStatement.Columns, token.Value)
		for {
			token = parser.lexer.NextToken()
			if token.Type == Comma {
				token = parser.lexer.NextToken()
				if token.Type != Identifier {
					return nil, errors.New("expected column name after comma")
				}
				selectStatement.Columns = append(selectStatement.Columns, token.Value)
			} else {
				break
			}
		}
	} else {
		return nil, errors.New("expected column name or *")
	}

	if token.Type != From {
		return nil, errors.New("expected FROM")
	}

	table, err := parser.parseName("table name")
	if err != nil {
		return nil, err
	}
	selectStatement.Table = table

	if parser.lexer.PeekToken().Type == Where {
		parser.lexer.NextToken()
		whereClause, err := ParseWhere(parser)
		if err != nil {
			return nil, err
		}
		selectStatement.Where = whereClause
	}

	return selectStatement, nil
}

// ParseWhere parses col=value, optionally followed by one AND or OR and a
// second col=value. Longer chains are rejected.
func ParseWhere(parser *Parser) (WhereClause, error) {
	var whereClause WhereClause

	condition, err := parseCondition(parser)
	if err != nil {
		return whereClause, err
	}
	whereClause.Conditions = append(whereClause.Conditions, condition)

	switch parser.lexer.PeekToken().Type {
	case And:
		whereClause.LogicalOp = LogicalAnd
	case Or:
		whereClause.LogicalOp = LogicalOr
	default:
		return whereClause, nil
	}
	parser.lexer.NextToken() // consume AND/OR

	condition, err = parseCondition(parser)
	if err != nil {
		return whereClause, err
	}
	whereClause.Conditions = append(whereClause.Conditions, condition)

	if next := parser.lexer.PeekToken().Type; next == And || next == Or {
		return whereClause, errors.New("only one AND or OR is supported in a WHERE clause")
	}

	return whereClause, nil
}

func parseCondition(parser *Parser) (WhereCondition, error) {
	token := parser.lexer.NextToken()
	if token.Type != Identifier {
		return WhereCondition{}, errors.New("expected column name in WHERE clause")
	}
	column := token.Value

	if parser.lexer.NextToken().Type != Equals {
		return WhereCondition{}, errors.New("expected '=' in WHERE clause")
	}

	token = parser.lexer.NextToken()
	if !token.IsValue() {
		return WhereCondition{}, errors.New("expected value in WHERE clause")
	}

	return WhereCondition{Column: column, Value: token.Value}, nil
}

// ParseCondition parses a standalone WHERE fragment such as "id=1 and name=Bob".
// Blank input yields an empty clause, which matches every row.
func ParseCondition(text string) (WhereClause, error) {
	if strings.TrimSpace(text) == "" {
		return WhereClause{}, nil
	}
	parser := NewParser(text)
	whereClause, err := ParseWhere(parser)
	if err != nil {
		return WhereClause{}, err
	}
	if token := parser.lexer.NextToken(); token.Type != EOF {
		return WhereClause{}, fmt.Errorf("unexpected %s in condition", token)
	}
	return whereClause, nil
}

func ParseInsert(parser *Parser) (Statement, error) {
	var insertStatement InsertStatement

	if parser.lexer.NextToken().Type != Into {
		return nil, errors.New("expected INTO after INSERT")
	}

	table, err := parser.parseName("table name after INSERT INTO")
	if err != nil {
		return nil, err
	}
	insertStatement.Table = table

	if parser.lexer.NextToken().Type != Values {
		return nil, errors.New("expected VALUES after table name")
	}

	if parser.lexer.NextToken().Type != ParenOpen {
		return nil, errors.New("expected '(' after VALUES")
	}

	for {
		token := parser.lexer.NextToken()
		if !token.IsValue() {
			return nil, errors.New("expected value")
		}
		insertStatement.Values = append(insertStatement.Values, token.Value)

		token = parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		} else if token.Type == ParenClose {
			break
		} else {
			return nil, errors.New("expected ',' or ')' in value list")
		}
	}

	return insertStatement, nil
}

func ParseUpdate(parser *Parser) (Statement, error) {
	var updateStatement UpdateStatement

	table, err := parser.parseName("table name after UPDATE")
	if err != nil {
		return nil, err
	}
	updateStatement.Table = table

	if parser.lexer.NextToken().Type != Set {
		return nil, errors.New("expected SET after table name")
	}

	for {
		token := parser.lexer.NextToken()
		if token.Type != Identifier {
			return nil, errors.New("expected column name in SET clause")
		}
		column := token.Value

		if parser.lexer.NextToken().Type != Equals {
			return nil, errors.New("expected '=' in SET clause")
		}

		token = parser.lexer.NextToken()
		if !token.IsValue() {
			return nil, errors.New("expected value in SET clause")
		}

		updateStatement.Updates = append(updateStatement.Updates, SetClause{
			Column: column,
			Value:  token.Value,
		})

		if parser.lexer.PeekToken().Type != Comma {
			break
		}
		parser.lexer.NextToken() // consume comma
	}

	if parser.lexer.PeekToken().Type == Where {
		parser.lexer.NextToken()
		whereClause, err := ParseWhere(parser)
		if err != nil {
			return nil, err
		}
		updateStatement.Where = whereClause
	}

	return updateStatement, nil
}

func ParseDelete(parser *Parser) (Statement, error) {
	var deleteStatement DeleteStatement

	if parser.lexer.NextToken().Type != From {
		return nil, errors.New("expected FROM after DELETE")
	}

	table, err := parser.parseName("table name after FROM")
	if err != nil {
		return nil, err
	}
	deleteStatement.Table = table

	if parser.lexer.PeekToken().Type == Where {
		parser.lexer.NextToken()
		whereClause, err := ParseWhere(parser)
		if err != nil {
			return nil, err
		}
		deleteStatement.Where = whereClause
	}

	return deleteStatement, nil
}
