package LightDB

import (
	"errors"
	"testing"

	"github.com/nickyhof/LightDB/auth"
	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/db"
	"github.com/nickyhof/LightDB/ps"
)

// TestFunc is the signature for test functions that work with any persistence
type TestFunc func(t *testing.T, session *db.Session)

var testIdentity = core.Identity{Name: "test", Email: "test@test.com"}

// runWithAllPersistence runs a test function against memory and file
// persistence, each with and without history
func runWithAllPersistence(t *testing.T, testFunc TestFunc) {
	for _, history := range []bool{false, true} {
		name := "NoHistory"
		if history {
			name = "History"
		}

		t.Run("Memory"+name, func(t *testing.T) {
			persistence, err := ps.NewMemoryPersistence(history)
			if err != nil {
				t.Fatalf("Failed to initialize memory persistence: %v", err)
			}
			testFunc(t, Open(&persistence).Session(testIdentity))
		})

		t.Run("File"+name, func(t *testing.T) {
			persistence, err := ps.NewFilePersistence(t.TempDir(), history)
			if err != nil {
				t.Fatalf("Failed to initialize file persistence: %v", err)
			}
			testFunc(t, Open(&persistence).Session(testIdentity))
		})
	}
}

func execute(t *testing.T, session *db.Session, query string) db.Result {
	t.Helper()
	result, err := session.Execute(query)
	if err != nil {
		t.Fatalf("Execute(%q) failed: %v", query, err)
	}
	return result
}

func selectLines(t *testing.T, session *db.Session, query string) []string {
	t.Helper()
	return execute(t, session, query).(db.QueryResult).Lines()
}

// TestIntegrationWorkflow tests a complete table workflow
func TestIntegrationWorkflow(t *testing.T) {
	runWithAllPersistence(t, func(t *testing.T, session *db.Session) {
		result := execute(t, session, "CREATE TABLE employees (id integer primarykey, name text, department text, salary real);")
		if result.(db.CommitResult).TablesCreated != 1 {
			t.Error("Expected 1 table created")
		}

		employees := []string{
			"INSERT INTO employees VALUES (1, Alice, Engineering, 80000)",
			"INSERT INTO employees VALUES (2, Bob, Engineering, 75000.50)",
			"INSERT INTO employees VALUES (3, Charlie, Sales, 60000)",
			"INSERT INTO employees VALUES (4, 'Diana Prince', Marketing, 65000)",
		}
		for _, query := range employees {
			execute(t, session, query)
		}

		lines := selectLines(t, session, "SELECT name FROM employees WHERE department=engineering")
		if len(lines) != 2 || lines[0] != "Alice" || lines[1] != "Bob" {
			t.Errorf("Unexpected engineers: %v", lines)
		}

		execute(t, session, "UPDATE employees SET salary=95000 WHERE id=1")
		lines = selectLines(t, session, "SELECT id, salary FROM employees WHERE name=alice")
		if len(lines) != 1 || lines[0] != "1 | 95000" {
			t.Errorf("Expected updated salary, got %v", lines)
		}

		execute(t, session, "DELETE FROM employees WHERE id=3 OR department=Marketing")
		lines = selectLines(t, session, "SELECT id FROM employees")
		if len(lines) != 2 {
			t.Errorf("Expected 2 employees after delete, got %v", lines)
		}

		if _, err := session.Execute("INSERT INTO employees VALUES (2, Eve, Sales, 1)"); !errors.Is(err, core.ErrConstraintViolation) {
			t.Errorf("Expected ErrConstraintViolation, got %v", err)
		}
	})
}

// TestIntegrationTransaction replays a queued batch on COMMIT
func TestIntegrationTransaction(t *testing.T) {
	runWithAllPersistence(t, func(t *testing.T, session *db.Session) {
		execute(t, session, "CREATE TABLE accounts (owner text primarykey, balance integer)")

		execute(t, session, "BEGIN TRANSACTION;")
		execute(t, session, "INSERT INTO accounts VALUES (alice, 100);")
		execute(t, session, "INSERT INTO accounts VALUES (bob, 50);")
		execute(t, session, "END TRANSACTION;")

		if lines := selectLines(t, session, "SELECT * FROM accounts"); len(lines) != 0 {
			t.Fatalf("Expected no rows before COMMIT, got %v", lines)
		}

		committed := execute(t, session, "COMMIT;").(db.TransactionResult)
		if committed.Err() != nil {
			t.Fatalf("Unexpected replay failure: %v", committed.Err())
		}

		lines := selectLines(t, session, "SELECT * FROM accounts")
		if len(lines) != 2 || lines[0] != "alice | 100" || lines[1] != "bob | 50" {
			t.Errorf("Unexpected rows after COMMIT: %v", lines)
		}
	})
}

func TestIntegrationUsers(t *testing.T) {
	persistence, err := ps.NewFilePersistence(t.TempDir(), false)
	if err != nil {
		t.Fatalf("Failed to initialize file persistence: %v", err)
	}
	users := Open(&persistence).Users()

	if _, err := users.Lookup("alice"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := users.Authenticate("alice", "pw"); err == nil {
		t.Error("Expected authentication to fail for unknown user")
	}
}

// TestIntegrationRestoreKeepsUsers checks that accounts are not part of the
// table history: restoring an older snapshot keeps later registrations.
func TestIntegrationRestoreKeepsUsers(t *testing.T) {
	persistence, err := ps.NewFilePersistence(t.TempDir(), true)
	if err != nil {
		t.Fatalf("Failed to initialize file persistence: %v", err)
	}
	instance := Open(&persistence)
	users := instance.Users()
	session := instance.Session(testIdentity)

	register := func(name string) {
		t.Helper()
		_, err := users.Register(auth.Registration{Name: name, Password: "pw", Question: "Pet?", Answer: "rex"})
		if err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	register("alice")
	result := execute(t, session, "CREATE TABLE t (id integer primarykey)").(db.CommitResult)
	register("bob")
	execute(t, session, "INSERT INTO t VALUES (1)")

	if err := persistence.Restore(result.Transaction.Id); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	for _, name := range []string{"alice", "bob"} {
		if _, err := users.Lookup(name); err != nil {
			t.Errorf("Expected %s to survive restore, got %v", name, err)
		}
	}
	if lines := selectLines(t, session, "SELECT * FROM t"); len(lines) != 0 {
		t.Errorf("Expected restored table to be empty, got %v", lines)
	}
}
