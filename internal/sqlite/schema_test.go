package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

func TestSchema_SetUpIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateTable("Books")
	require.NoError(t, err)

	require.NoError(t, s.SetUpSchema(""))

	tables, err := s.SelectTables()
	require.NoError(t, err)
	assert.Equal(t, []types.Table{{ID: id, Label: "Books"}}, tables)
}

func TestSchema_HasSchema(t *testing.T) {
	engine, err := OpenEngine(nil)
	require.NoError(t, err)
	defer engine.Close()
	s := NewStore(engine)

	ok, err := s.HasSchema()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.SelectTables()
	assert.True(t, types.IsStoreError(err), "selecting without schema is a store error")

	require.NoError(t, s.SetUpSchema(""))
	ok, err = s.HasSchema()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSchema_Migrate(t *testing.T) {
	t.Run("requires schema", func(t *testing.T) {
		engine, err := OpenEngine(nil)
		require.NoError(t, err)
		defer engine.Close()

		err = NewStore(engine).Migrate()
		var se *types.SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "migrate", se.Script)
		assert.ErrorIs(t, err, types.ErrNoSchema)
	})

	t.Run("records version and is idempotent", func(t *testing.T) {
		s := newTestStore(t)
		v, err := s.SchemaVersion()
		require.NoError(t, err)
		assert.Equal(t, 0, v)

		require.NoError(t, s.Migrate())
		require.NoError(t, s.Migrate())

		v, err = s.SchemaVersion()
		require.NoError(t, err)
		assert.Equal(t, currentSchemaVersion, v)
	})
}

func TestSchema_CustomScriptFailure(t *testing.T) {
	engine, err := OpenEngine(nil)
	require.NoError(t, err)
	defer engine.Close()

	err = NewStore(engine).SetUpSchema("CREATE TABLE broken (")
	var se *types.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "custom schema", se.Script)
}

func TestEngine_ExportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateEnum("Status")
	require.NoError(t, err)

	blob, err := s.Export()
	require.NoError(t, err)
	require.NotEmpty(t, blob)
	assert.Equal(t, "SQLite format 3\x00", string(blob[:16]))

	engine, err := OpenEngine(blob)
	require.NoError(t, err)
	defer engine.Close()

	enums, err := NewStore(engine).SelectEnums()
	require.NoError(t, err)
	assert.Equal(t, []types.Enum{{ID: 1, Label: "Status"}}, enums)
}

func TestEngine_CloseIsIdempotent(t *testing.T) {
	engine, err := OpenEngine(nil)
	require.NoError(t, err)
	require.NoError(t, engine.Close())
	require.NoError(t, engine.Close())
}
