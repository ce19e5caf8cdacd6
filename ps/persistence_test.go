package ps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nickyhof/LightDB/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryPersistence(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)

	assert.True(t, persistence.IsInitialized())
	assert.False(t, persistence.HistoryEnabled())

	withHistory, err := NewMemoryPersistence(true)
	require.NoError(t, err)
	assert.True(t, withHistory.HistoryEnabled())
}

func TestPersistenceNotInitialized(t *testing.T) {
	var persistence Persistence

	assert.False(t, persistence.IsInitialized())
	assert.ErrorIs(t, persistence.ensureInitialized(), ErrNotInitialized)

	_, err := persistence.GetSchema("t")
	assert.ErrorIs(t, err, ErrNotInitialized)

	for _, err := range persistence.ReadRows("t") {
		assert.ErrorIs(t, err, ErrNotInitialized)
	}
}

func TestFilePersistenceLayout(t *testing.T) {
	baseDir := t.TempDir()

	persistence, err := NewFilePersistence(baseDir, false)
	require.NoError(t, err)

	table := core.Table{
		Name: "people",
		Columns: []core.Column{
			{Name: "id", Type: core.IntegerType, PrimaryKey: true},
			{Name: "name", Type: core.TextType},
		},
	}
	require.NoError(t, persistence.CreateSchema(table))
	require.NoError(t, persistence.CreateTableFile("people"))
	require.NoError(t, persistence.AppendRow("people", core.Row{"1", "Alice"}))

	schema, err := os.ReadFile(filepath.Join(baseDir, "tables-metadata", "people_metadata.txt"))
	require.NoError(t, err)
	assert.Equal(t, "id|integer|primarykey\nname|text\n", string(schema))

	data, err := os.ReadFile(filepath.Join(baseDir, "tables", "people.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1|Alice\n", string(data))
}

func TestFilePersistenceReopensHistory(t *testing.T) {
	baseDir := t.TempDir()
	identity := core.Identity{Name: "test", Email: "test@test.com"}

	persistence, err := NewFilePersistence(baseDir, true)
	require.NoError(t, err)
	require.NoError(t, persistence.CreateSchema(core.Table{
		Name:    "t",
		Columns: []core.Column{{Name: "a", Type: core.TextType}},
	}))
	first, err := persistence.Snapshot("create t", identity)
	require.NoError(t, err)
	require.NotEmpty(t, first.Id)

	reopened, err := NewFilePersistence(baseDir, true)
	require.NoError(t, err)
	assert.Equal(t, first.Id, reopened.LatestTransaction().Id)
}
