package ps

import (
	"testing"

	"github.com/go-git/go-billy/v6/util"
	"github.com/nickyhof/LightDB/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnEncoding(t *testing.T) {
	tests := []struct {
		line   string
		column core.Column
	}{
		{"id|integer|primarykey", core.Column{Name: "id", Type: core.IntegerType, PrimaryKey: true}},
		{"name|text", core.Column{Name: "name", Type: core.TextType}},
		{"score|real", core.Column{Name: "score", Type: core.RealType}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.line, EncodeColumn(tt.column))

			column, err := DecodeColumn(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.column, column)
		})
	}
}

func TestDecodeColumnRejects(t *testing.T) {
	for _, line := range []string{"id", "id|integer|primarykey|x", "id|blob", "id|integer|unique", "|text"} {
		_, err := DecodeColumn(line)
		assert.ErrorIs(t, err, ErrMalformedSchema, line)
	}
}

func TestCreateAndGetSchema(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)

	table := core.Table{
		Name: "products",
		Columns: []core.Column{
			{Name: "sku", Type: core.TextType, PrimaryKey: true},
			{Name: "price", Type: core.RealType},
			{Name: "stock", Type: core.IntegerType},
		},
	}

	assert.False(t, persistence.SchemaExists("products"))
	require.NoError(t, persistence.CreateSchema(table))
	assert.True(t, persistence.SchemaExists("products"))

	got, err := persistence.GetSchema("products")
	require.NoError(t, err)
	assert.Equal(t, table, *got)

	pk, index, ok := got.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, "sku", pk.Name)
	assert.Equal(t, 0, index)
}

func TestGetSchemaMissing(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)

	_, err = persistence.GetSchema("nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetSchemaMalformed(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)

	files := map[string]string{
		"fields":  "a|text|primarykey|extra\n",
		"type":    "a|blob\n",
		"flag":    "a|text|unique\n",
		"two_pks": "a|text|primarykey\nb|integer|primarykey\n",
	}
	for name, content := range files {
		require.NoError(t, util.WriteFile(persistence.Filesystem(), persistence.schemaPath(name), []byte(content), 0644))

		_, err := persistence.GetSchema(name)
		assert.ErrorIs(t, err, ErrMalformedSchema, name)
	}
}

func TestCreateSchemaValidates(t *testing.T) {
	persistence, err := NewMemoryPersistence(false)
	require.NoError(t, err)

	err = persistence.CreateSchema(core.Table{Name: "empty"})
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.False(t, persistence.SchemaExists("empty"))
}
