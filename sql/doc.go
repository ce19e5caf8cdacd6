// Package sql provides lexing and parsing for the LightDB statement dialect.
//
// The package includes a lexer that tokenizes statement text and a
// recursive-descent parser that produces typed statements.
//
// # Lexer Usage
//
//	lexer := sql.NewLexer("SELECT * FROM users")
//	for {
//	    token := lexer.NextToken()
//	    if token.Type == sql.EOF {
//	        break
//	    }
//	    fmt.Printf("Token: %s\n", token)
//	}
//
// # Parser Usage
//
//	statement, err := sql.Parse("SELECT * FROM users WHERE id=1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Supported Statements
//
//	CREATE TABLE <name> (<col> <type> [primarykey], ...)
//	SELECT <*|col1,col2,...> FROM <name> [WHERE <cond>]
//	INSERT INTO <name> VALUES (<v1,v2,...>)
//	UPDATE <name> SET <col1=v1,col2=v2,...> [WHERE <cond>]
//	DELETE FROM <name> [WHERE <cond>]
//	BEGIN TRANSACTION
//	END TRANSACTION
//	COMMIT
//	ROLLBACK
//
// Keywords are case-insensitive and every statement may end with a single
// semicolon. A condition is col=value, optionally joined to a second
// col=value by exactly one AND or OR.
package sql
