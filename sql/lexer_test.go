package sql

import (
	"reflect"
	"testing"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []Token
	}{
		{
			"select wildcard",
			"select * from users;",
			[]Token{
				{Select, "select"}, {Wildcard, "*"}, {From, "from"}, {Identifier, "users"}, {Semicolon, ";"}, {EOF, ""},
			},
		},
		{
			"insert values",
			"INSERT INTO t VALUES (1,'Alice Smith',-2.5)",
			[]Token{
				{Insert, "INSERT"}, {Into, "INTO"}, {Identifier, "t"}, {Values, "VALUES"}, {ParenOpen, "("},
				{Int, "1"}, {Comma, ","}, {String, "Alice Smith"}, {Comma, ","}, {Float, "-2.5"}, {ParenClose, ")"}, {EOF, ""},
			},
		},
		{
			"primary key",
			"id integer PRIMARY KEY",
			[]Token{
				{Identifier, "id"}, {Identifier, "integer"}, {PrimaryKey, "PRIMARY KEY"}, {EOF, ""},
			},
		},
		{
			"primary without key",
			"primary color",
			[]Token{
				{Identifier, "primary"}, {Identifier, "color"}, {EOF, ""},
			},
		},
		{
			"digits followed by letters",
			"2nd",
			[]Token{
				{Identifier, "2nd"}, {EOF, ""},
			},
		},
		{
			"transaction keywords",
			"End Transaction;",
			[]Token{
				{End, "End"}, {TransactionIdentifier, "Transaction"}, {Semicolon, ";"}, {EOF, ""},
			},
		},
		{
			"column names containing connectives",
			"brand=x or color=y",
			[]Token{
				{Identifier, "brand"}, {Equals, "="}, {Identifier, "x"}, {Or, "or"},
				{Identifier, "color"}, {Equals, "="}, {Identifier, "y"}, {EOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.sql)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("tokenize(%q)\n got: %v\nwant: %v", tt.sql, got, tt.expected)
			}
		})
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	lexer := NewLexer("'abc")
	token := lexer.NextToken()
	if token.Type != Unknown {
		t.Errorf("Expected Unknown token for unterminated string, got %s", token)
	}
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	lexer := NewLexer("SELECT name")
	peeked := lexer.PeekToken()
	next := lexer.NextToken()
	if peeked != next {
		t.Errorf("Peek returned %s but next returned %s", peeked, next)
	}
	if lexer.NextToken().Value != "name" {
		t.Error("Expected identifier after SELECT")
	}
}

func TestTokenIsValue(t *testing.T) {
	tests := []struct {
		sql   string
		value bool
	}{
		{"Alice", true},
		{"'two words'", true},
		{"-3", true},
		{"2.5", true},
		{"End", true},
		{"values", true},
		{"TABLE", true},
		{"or", true},
		{"PRIMARY KEY", false},
		{",", false},
		{"(", false},
		{"=", false},
		{"*", false},
	}

	for _, tt := range tests {
		token := NewLexer(tt.sql).NextToken()
		if got := token.IsValue(); got != tt.value {
			t.Errorf("%s.IsValue() = %v, want %v", token, got, tt.value)
		}
	}
}
