package ps

import (
	"errors"
	"iter"
	"testing"

	"github.com/go-git/go-billy/v6/util"
	"github.com/nickyhof/LightDB/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, persistence *Persistence, name string) {
	t.Helper()
	require.NoError(t, persistence.CreateSchema(core.Table{
		Name: name,
		Columns: []core.Column{
			{Name: "id", Type: core.IntegerType, PrimaryKey: true},
			{Name: "name", Type: core.TextType},
		},
	}))
	require.NoError(t, persistence.CreateTableFile(name))
}

func collect(t *testing.T, rows iter.Seq2[core.Row, error]) []core.Row {
	t.Helper()
	result := []core.Row{}
	for row, err := range rows {
		require.NoError(t, err)
		result = append(result, row)
	}
	return result
}

func rowsOf(rows ...core.Row) iter.Seq2[core.Row, error] {
	return func(yield func(core.Row, error) bool) {
		for _, row := range rows {
			if !yield(row, nil) {
				return
			}
		}
	}
}

func TestRowEncoding(t *testing.T) {
	assert.Equal(t, "1|Alice", EncodeRow(core.Row{"1", "Alice"}))
	assert.Equal(t, core.Row{"1", "Alice"}, DecodeRow("1|Alice"))
	assert.Equal(t, core.Row{"1", ""}, DecodeRow("1|"))
}

func TestCreateTableFile(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)

	assert.False(t, persistence.TableExists("t"))
	require.NoError(t, persistence.CreateTableFile("t"))
	assert.True(t, persistence.TableExists("t"))
	assert.Empty(t, collect(t, persistence.ReadRows("t")))

	err = persistence.CreateTableFile("t")
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func TestAppendAndReadRows(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)
	newTable(t, &persistence, "people")

	require.NoError(t, persistence.AppendRow("people", core.Row{"1", "Alice"}))
	require.NoError(t, persistence.AppendRow("people", core.Row{"2", "Bob"}))

	assert.Equal(t, []core.Row{{"1", "Alice"}, {"2", "Bob"}}, collect(t, persistence.ReadRows("people")))

	err = persistence.AppendRow("missing", core.Row{"1"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestReadRowsMissingTable(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)

	count := 0
	for _, err := range persistence.ReadRows("missing") {
		assert.ErrorIs(t, err, core.ErrNotFound)
		count++
	}
	assert.Equal(t, 1, count)
}

func TestReadRowsStopsEarly(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)
	newTable(t, &persistence, "t")
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, persistence.AppendRow("t", core.Row{id, "x"}))
	}

	var seen []string
	for row, err := range persistence.ReadRows("t") {
		require.NoError(t, err)
		seen = append(seen, row[0])
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"1", "2"}, seen)
}

func TestRewriteTable(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)
	newTable(t, &persistence, "t")
	require.NoError(t, persistence.AppendRow("t", core.Row{"1", "Alice"}))

	require.NoError(t, persistence.RewriteTable("t", rowsOf(core.Row{"1", "Zoe"}, core.Row{"2", "Bob"})))

	assert.Equal(t, []core.Row{{"1", "Zoe"}, {"2", "Bob"}}, collect(t, persistence.ReadRows("t")))
	assert.False(t, persistence.exists(persistence.tempTablePath("t")))
}

func TestRewriteTableKeepsOriginalOnError(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)
	newTable(t, &persistence, "t")
	require.NoError(t, persistence.AppendRow("t", core.Row{"1", "Alice"}))

	failure := errors.New("boom")
	rows := func(yield func(core.Row, error) bool) {
		if !yield(core.Row{"9", "Partial"}, nil) {
			return
		}
		yield(nil, failure)
	}

	err = persistence.RewriteTable("t", rows)
	assert.ErrorIs(t, err, failure)

	content, err := util.ReadFile(persistence.Filesystem(), persistence.tablePath("t"))
	require.NoError(t, err)
	assert.Equal(t, "1|Alice\n", string(content))
	assert.False(t, persistence.exists(persistence.tempTablePath("t")))
}

func TestListTables(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)

	tables, err := persistence.ListTables()
	require.NoError(t, err)
	assert.Empty(t, tables)

	newTable(t, &persistence, "zebra")
	newTable(t, &persistence, "apple")
	require.NoError(t, util.WriteFile(persistence.Filesystem(), persistence.tempTablePath("apple"), nil, 0644))

	tables, err = persistence.ListTables()
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "zebra"}, tables)
}
