// Package LightDB provides a flat-file relational store driven by a small
// SQL dialect.
//
// Every table is two text files: a schema listing its typed columns and a
// data file with one "|"-separated row per line. Optionally the data
// directory is also a git repository and every change becomes a commit.
//
// # Quick Start
//
// Create an in-memory database:
//
//	persistence, _ := ps.NewMemoryPersistence(false)
//	db := LightDB.Open(&persistence)
//	session := db.Session(core.Identity{Name: "App", Email: "app@example.com"})
//
//	session.Execute("CREATE TABLE users (id integer primarykey, name text)")
//	session.Execute("INSERT INTO users VALUES (1, Alice)")
//
//	result, _ := session.Execute("SELECT * FROM users WHERE id=1")
//	result.Display()
//
// # Supported SQL
//
//   - CREATE TABLE with integer, text and real columns and one optional
//     primary key
//   - INSERT, SELECT, UPDATE, DELETE
//   - WHERE with one equality, or two joined by AND or OR
//   - BEGIN TRANSACTION, END TRANSACTION, COMMIT, ROLLBACK
package LightDB
