package sql

type Token struct {
	Type  TokenType
	Value string
}

type TokenType int

const (
	Identifier TokenType = iota
	TableIdentifier
	TransactionIdentifier
	Wildcard
	String
	Int
	Float
	PrimaryKey
	Comma
	Semicolon
	ParenOpen
	ParenClose
	Equals
	And
	Or
	Select
	From
	Where
	Create
	Insert
	Update
	Delete
	Set
	Into
	Values
	Begin
	End
	Commit
	Rollback
	EOF
	Unknown
)

var tokenNames = map[TokenType]string{
	TableIdentifier:       "TableIdentifier",
	TransactionIdentifier: "TransactionIdentifier",
	Wildcard:              "Wildcard",
	PrimaryKey:            "PrimaryKey",
	Comma:                 "Comma",
	Semicolon:             "Semicolon",
	ParenOpen:             "ParenOpen",
	ParenClose:            "ParenClose",
	Equals:                "Equals",
	And:                   "And",
	Or:                    "Or",
	Select:                "Select",
	From:                  "From",
	Where:                 "Where",
	Create:                "Create",
	Insert:                "Insert",
	Update:                "Update",
	Delete:                "Delete",
	Set:                   "Set",
	Into:                  "Into",
	Values:                "Values",
	Begin:                 "Begin",
	End:                   "End",
	Commit:                "Commit",
	Rollback:              "Rollback",
	EOF:                   "EOF",
}

func (token Token) String() string {
	switch token.Type {
	case Identifier:
		return "Identifier(" + token.Value + ")"
	case String:
		return "String(" + token.Value + ")"
	case Int:
		return "Int(" + token.Value + ")"
	case Float:
		return "Float(" + token.Value + ")"
	}
	if name, ok := tokenNames[token.Type]; ok {
		return name
	}
	return "Unknown(" + token.Value + ")"
}

// IsValue reports whether the token can stand for a cell value. Keywords
// are bare words too, so "End" or "Set" can be stored as text.
func (token Token) IsValue() bool {
	switch token.Type {
	case Identifier, String, Int, Float:
		return true
	}
	return token.IsKeyword()
}

// IsKeyword reports whether the token is a reserved word.
func (token Token) IsKeyword() bool {
	return token.Type != Identifier && lookupIdentifier(token.Value) == token.Type
}

type Lexer struct {
	sql          string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(sql string) *Lexer {
	lexer := &Lexer{sql: sql}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= len(lexer.sql) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.sql[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
}

func (lexer *Lexer) peekChar() byte {
	if lexer.readPosition >= len(lexer.sql) {
		return 0
	}
	return lexer.sql[lexer.readPosition]
}

func (lexer *Lexer) NextToken() Token {
	var token Token

	lexer.skipWhitespace()

	switch lexer.ch {
	case ',':
		token = Token{Type: Comma, Value: ","}
	case ';':
		token = Token{Type: Semicolon, Value: ";"}
	case '(':
		token = Token{Type: ParenOpen, Value: "("}
	case ')':
		token = Token{Type: ParenClose, Value: ")"}
	case '=':
		token = Token{Type: Equals, Value: "="}
	case '*':
		token = Token{Type: Wildcard, Value: "*"}
	case 0:
		return Token{Type: EOF, Value: ""}
	case '\'':
		str, ok := lexer.readString()
		if !ok {
			return Token{Type: Unknown, Value: "'" + str}
		}
		token = Token{Type: String, Value: str}
	default:
		if isDigit(lexer.ch) || ((lexer.ch == '-' || lexer.ch == '+') && isDigit(lexer.peekChar())) {
			return lexer.readNumeric()
		} else if isLetter(lexer.ch) {
			literal := lexer.readIdentifier()
			if toUpper(literal) == "PRIMARY" {
				// PRIMARY KEY is a single token
				saved := *lexer
				lexer.skipWhitespace()
				if toUpper(lexer.readIdentifier()) == "KEY" {
					return Token{Type: PrimaryKey, Value: "PRIMARY KEY"}
				}
				*lexer = saved
				return Token{Type: Identifier, Value: literal}
			}
			return Token{Type: lookupIdentifier(literal), Value: literal}
		}
		token = Token{Type: Unknown, Value: string(lexer.ch)}
	}

	lexer.readChar()
	return token
}

func (lexer *Lexer) PeekToken() Token {
	saved := *lexer
	token := lexer.NextToken()
	*lexer = saved
	return token
}

func (lexer *Lexer) skipWhitespace() {
	for lexer.ch == ' ' || lexer.ch == '\t' || lexer.ch == '\n' || lexer.ch == '\r' {
		lexer.readChar()
	}
}

func (lexer *Lexer) readIdentifier() string {
	position := lexer.position
	for isLetter(lexer.ch) || isDigit(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

// readString consumes a quoted string. ok is false when the closing quote is missing.
func (lexer *Lexer) readString() (string, bool) {
	lexer.readChar() // skip opening quote
	position := lexer.position
	for lexer.ch != '\'' && lexer.ch != 0 {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position], lexer.ch == '\''
}

// readNumeric reads an optionally signed number. Digits running straight
// into letters (e.g. 2nd) form a single bare word.
func (lexer *Lexer) readNumeric() Token {
	position := lexer.position
	if lexer.ch == '-' || lexer.ch == '+' {
		lexer.readChar()
	}
	lexer.readDigits()

	tokenType := Int
	if lexer.ch == '.' && isDigit(lexer.peekChar()) {
		lexer.readChar() // consume '.'
		lexer.readDigits()
		tokenType = Float
	}

	if isLetter(lexer.ch) {
		for isLetter(lexer.ch) || isDigit(lexer.ch) || lexer.ch == '.' {
			lexer.readChar()
		}
		return Token{Type: Identifier, Value: lexer.sql[position:lexer.position]}
	}

	return Token{Type: tokenType, Value: lexer.sql[position:lexer.position]}
}

func (lexer *Lexer) readDigits() {
	for isDigit(lexer.ch) {
		lexer.readChar()
	}
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func lookupIdentifier(id string) TokenType {
	switch toUpper(id) {
	case "TABLE":
		return TableIdentifier
	case "TRANSACTION":
		return TransactionIdentifier
	case "AND":
		return And
	case "OR":
		return Or
	case "SELECT":
		return Select
	case "FROM":
		return From
	case "WHERE":
		return Where
	case "CREATE":
		return Create
	case "INSERT":
		return Insert
	case "UPDATE":
		return Update
	case "DELETE":
		return Delete
	case "SET":
		return Set
	case "INTO":
		return Into
	case "VALUES":
		return Values
	case "BEGIN":
		return Begin
	case "END":
		return End
	case "COMMIT":
		return Commit
	case "ROLLBACK":
		return Rollback
	default:
		return Identifier
	}
}

// toUpper converts a string to uppercase without allocating for ASCII strings
func toUpper(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			b := make([]byte, len(s))
			for j := 0; j < len(s); j++ {
				if s[j] >= 'a' && s[j] <= 'z' {
					b[j] = s[j] - 32
				} else {
					b[j] = s[j]
				}
			}
			return string(b)
		}
	}
	return s
}

func tokenize(sql string) []Token {
	lexer := NewLexer(sql)

	var tokens []Token

	for {
		token := lexer.NextToken()
		tokens = append(tokens, token)
		if token.Type == EOF {
			return tokens
		}
	}
}
