// Package db provides the SQL execution engine for LightDB.
//
// The Engine type runs single statements. It parses SQL, executes it against
// the table files, and returns results.
//
// # Engine Usage
//
//	engine := db.NewEngine(persistence, identity)
//	result, err := engine.Execute("SELECT * FROM users WHERE name=alice")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Display()
//
// # Sessions
//
// Transaction bracketing lives in Session. Statements between BEGIN
// TRANSACTION and END TRANSACTION are queued and replayed in order on COMMIT;
// ROLLBACK discards them:
//
//	session := engine.NewSession()
//	session.Execute("BEGIN TRANSACTION")
//	session.Execute("INSERT INTO users VALUES (2, Bob)")   // queued
//	session.Execute("END TRANSACTION")
//	result, _ := session.Execute("COMMIT")
//
// # Result Types
//
//   - QueryResult: returned by SELECT
//   - CommitResult: returned by CREATE TABLE, INSERT, UPDATE and DELETE
//   - TransactionResult: returned by a Session for transaction statements
//     and for statements queued inside a transaction
package db
