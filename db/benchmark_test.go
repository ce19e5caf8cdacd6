package db

import (
	"strconv"
	"testing"

	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/ps"
	"github.com/nickyhof/LightDB/sql"
)

// setupBenchmarkEngine creates a table with 1000 rows
func setupBenchmarkEngine(b *testing.B) *Engine {
	persistence, err := ps.NewMemoryPersistence(false)
	if err != nil {
		b.Fatalf("Failed to initialize persistence: %v", err)
	}
	engine := NewEngine(&persistence, core.Identity{Name: "benchmark", Email: "bench@test.com"})

	if _, err := engine.Execute("CREATE TABLE users (id integer primarykey, name text, age integer, city text)"); err != nil {
		b.Fatalf("Failed to create table: %v", err)
	}

	for i := 1; i <= 1000; i++ {
		row := core.Row{strconv.Itoa(i), "User" + strconv.Itoa(i), strconv.Itoa(20 + i%50), "City" + strconv.Itoa(i%10)}
		if err := persistence.AppendRow("users", row); err != nil {
			b.Fatalf("Failed to append row: %v", err)
		}
	}

	return engine
}

func BenchmarkSQLParsing(b *testing.B) {
	queries := []struct {
		name  string
		query string
	}{
		{"SimpleSelect", "SELECT * FROM users"},
		{"SelectWithWhere", "SELECT * FROM users WHERE age=30"},
		{"SelectWithAnd", "SELECT name, city FROM users WHERE age=25 AND city=City5"},
		{"Insert", "INSERT INTO users VALUES (1, 'Test', 25, NYC)"},
		{"Update", "UPDATE users SET age=30 WHERE id=1"},
		{"Delete", "DELETE FROM users WHERE id=1"},
	}

	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			for b.Loop() {
				if _, err := sql.NewParser(q.query).Parse(); err != nil {
					b.Fatalf("Parse error: %v", err)
				}
			}
		})
	}
}

func BenchmarkSelect(b *testing.B) {
	engine := setupBenchmarkEngine(b)

	for b.Loop() {
		if _, err := engine.Execute("SELECT name FROM users WHERE city=City3 OR age=40"); err != nil {
			b.Fatalf("Select failed: %v", err)
		}
	}
}

func BenchmarkPrimaryKeyInsert(b *testing.B) {
	engine := setupBenchmarkEngine(b)

	id := 1000
	for b.Loop() {
		id++
		if _, err := engine.Execute("INSERT INTO users VALUES (" + strconv.Itoa(id) + ", Bench, 30, City1)"); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}
}

func BenchmarkUpdate(b *testing.B) {
	engine := setupBenchmarkEngine(b)

	for b.Loop() {
		if _, err := engine.Execute("UPDATE users SET age=31 WHERE id=500"); err != nil {
			b.Fatalf("Update failed: %v", err)
		}
	}
}
