package hostfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_WriteAndRead(t *testing.T) {
	root := t.TempDir()
	f, err := New(root)
	require.NoError(t, err)

	ok, err := f.Exists(".datahoarder/db.sqlite")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.WriteBinary(".datahoarder/db.sqlite", []byte{0x53, 0x51, 0x4c}))

	ok, err = f.Exists(".datahoarder/db.sqlite")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := f.ReadBinary(".datahoarder/db.sqlite")
	require.NoError(t, err)
	assert.Equal(t, []byte("SQL"), got)

	text, err := f.Read(".datahoarder/db.sqlite")
	require.NoError(t, err)
	assert.Equal(t, "SQL", text)
}

func TestFS_WriteReplacesAndLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	f, err := New(root)
	require.NoError(t, err)

	require.NoError(t, f.WriteBinary("db.sqlite", []byte("first")))
	require.NoError(t, f.WriteBinary("db.sqlite", []byte("second")))

	got, err := f.ReadBinary("db.sqlite")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "db.sqlite", entries[0].Name())
}

func TestFS_RejectsPathsOutsideRoot(t *testing.T) {
	f, err := New(t.TempDir())
	require.NoError(t, err)

	tests := []string{
		"../escape.sqlite",
		"a/../../escape.sqlite",
		filepath.Join(string(filepath.Separator), "etc", "passwd"),
	}
	for _, p := range tests {
		t.Run(p, func(t *testing.T) {
			_, err := f.ReadBinary(p)
			assert.ErrorIs(t, err, ErrOutsideRoot)
			assert.ErrorIs(t, f.WriteBinary(p, nil), ErrOutsideRoot)
		})
	}
}

func TestFS_ExistsIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))
	f, err := New(root)
	require.NoError(t, err)

	ok, err := f.Exists("dir")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFS_ReadMissing(t *testing.T) {
	f, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = f.ReadBinary("missing.sqlite")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
