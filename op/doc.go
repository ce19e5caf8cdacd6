// Package op provides table and database operations for LightDB.
//
// The op package sits between the SQL engine (db/) and the persistence layer
// (ps/). It owns the rules that involve both a schema and its rows: value
// validation and primary key uniqueness.
//
// # TableOp
//
//	tableOp, err := op.GetTable("users", persistence)
//
//	err = tableOp.Insert(core.Row{"1", "Alice"})   // validated, PK checked
//	ok, err := tableOp.PrimaryKeyAvailable("2")
//
//	for row, err := range tableOp.Scan() {
//	    // rows in file order
//	}
//
//	err = tableOp.Rewrite(rows)   // temp file, then rename
//
// # DatabaseOp
//
// DatabaseOp lists tables and exposes the history of the data directory:
//
//	dbOp := op.GetDatabase(persistence)
//	names, _ := dbOp.TableNames()
//	history, _ := dbOp.History(10)
//	dbOp.Restore(history[1])
//
// # Architecture
//
//	SQL Parser (sql/)
//	     ↓
//	SQL Engine (db/)
//	     ↓
//	Operations (op/)     ← This package
//	     ↓
//	Persistence (ps/)
//	     ↓
//	Files (go-billy), history (go-git)
package op
