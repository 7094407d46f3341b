package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hoard/internal/paths"
	"github.com/mesh-intelligence/hoard/pkg/types"
)

type testEnv struct {
	configDir string
	vaultDir  string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	return testEnv{configDir: t.TempDir(), vaultDir: t.TempDir()}
}

// run executes the root command with the env's directories and returns
// stdout.
func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--config-dir", e.configDir,
		"--vault", e.vaultDir,
		"--log-level", "error",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "hoard %v", args)
	return out
}

func TestRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "hoard", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCmd()
	commands := [][]string{
		{"init"}, {"migrate"}, {"version"}, {"schema"}, {"export"}, {"watch"},
		{"table", "list"}, {"table", "create"}, {"table", "rename"}, {"table", "delete"}, {"table", "show"},
		{"column", "add"}, {"column", "update"}, {"column", "delete"}, {"column", "reorder"},
		{"row", "add"}, {"row", "delete"}, {"cell", "set"},
		{"enum", "list"}, {"enum", "create"}, {"enum", "rename"}, {"enum", "delete"},
		{"variant", "add"}, {"variant", "rename"}, {"variant", "delete"}, {"variant", "reorder"},
	}
	for _, path := range commands {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"config-dir", "vault", "log-level", "json"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "false", cmd.PersistentFlags().Lookup("json").DefValue)
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "version")
	assert.Contains(t, out, "hoard v")
	assert.Contains(t, out, "github.com/mesh-intelligence/hoard")
}

func TestSchema(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "schema")
	assert.Contains(t, out, `"tables"`)
	assert.Contains(t, out, `"enums"`)
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "init")
	assert.Contains(t, out, "Initialized vault at")

	_, err := os.Stat(filepath.Join(env.configDir, paths.ConfigFileName))
	require.NoError(t, err, "config.yaml created")
	_, err = os.Stat(filepath.Join(env.vaultDir, types.DefaultDBPath))
	require.NoError(t, err, "blob created")

	env.mustRun(t, "init")
	out = env.mustRun(t, "migrate")
	assert.Equal(t, "Schema at version 1\n", out)
}

func TestCommandsRequireInit(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "table", "list")
	require.Error(t, err)
	assert.Equal(t, exitUserError, ExitCode(err))
	assert.Contains(t, err.Error(), "not initialized")
}

func TestBooksWorkflow(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "init")

	assert.Equal(t, "Created table 1\n", env.mustRun(t, "table", "create", "Books"))
	assert.Equal(t, "Created column 1\n", env.mustRun(t, "column", "add", "1", "Title"))
	assert.Equal(t, "Created column 2\n", env.mustRun(t, "column", "add", "1", "Year", "--type", "number"))
	assert.Equal(t, "Created row 1\n", env.mustRun(t, "row", "add", "1"))
	env.mustRun(t, "cell", "set", "1", "1", "Dune")
	env.mustRun(t, "cell", "set", "1", "2", "1965")

	assert.Equal(t, "Books (table 1)\n#  Title  Year\n1  Dune   1965\n", env.mustRun(t, "table", "show", "1"))

	list := env.mustRun(t, "--json", "table", "list")
	assert.JSONEq(t, `[{"id":1,"label":"Books"}]`, list)

	yamlOut := env.mustRun(t, "export", "--format", "yaml")
	assert.Contains(t, yamlOut, "label: Books")
	assert.Contains(t, yamlOut, "datatype: number")

	env.mustRun(t, "column", "reorder", "1", "2", "1")
	assert.Equal(t, "Books (table 1)\n#  Year  Title\n1  1965  Dune\n", env.mustRun(t, "table", "show", "1"))

	env.mustRun(t, "column", "update", "2", "--label", "Published")
	env.mustRun(t, "table", "rename", "1", "Library")
	assert.Contains(t, env.mustRun(t, "table", "show", "1"), "Library (table 1)\n#  Published  Title\n")

	env.mustRun(t, "row", "delete", "1")
	env.mustRun(t, "column", "delete", "1")
	assert.Equal(t, "Library (table 1)\n#  Published\n", env.mustRun(t, "table", "show", "1"))

	env.mustRun(t, "table", "delete", "1")
	assert.JSONEq(t, `[]`, env.mustRun(t, "--json", "table", "list"))
}

func TestEnumWorkflow(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "init")

	assert.Equal(t, "Created enum 1\n", env.mustRun(t, "enum", "create", "Genre"))
	env.mustRun(t, "variant", "add", "1", "Sci-Fi")
	env.mustRun(t, "variant", "add", "1", "Fantasy")
	env.mustRun(t, "variant", "add", "1", "Horror")
	env.mustRun(t, "variant", "reorder", "1", "3", "1", "2")
	env.mustRun(t, "variant", "rename", "2", "High Fantasy")
	assert.Equal(t, "Genre (enum 1)\n  3  Horror\n  1  Sci-Fi\n  2  High Fantasy\n", env.mustRun(t, "enum", "list"))

	env.mustRun(t, "variant", "delete", "3")
	env.mustRun(t, "enum", "rename", "1", "Genres")
	assert.Equal(t, "Genres (enum 1)\n  1  Sci-Fi\n  2  High Fantasy\n", env.mustRun(t, "enum", "list"))

	env.mustRun(t, "table", "create", "Books")
	env.mustRun(t, "column", "add", "1", "Genre", "--type", types.EnumDatatype(1))
	env.mustRun(t, "enum", "delete", "1")
	assert.Empty(t, env.mustRun(t, "enum", "list"))
	assert.Contains(t, env.mustRun(t, "export"), `"datatype": "enum:1"`)
}

func TestUserErrors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "init")
	env.mustRun(t, "table", "create", "Books")
	env.mustRun(t, "enum", "create", "Genre")

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown table", args: []string{"table", "delete", "99"}},
		{name: "malformed id", args: []string{"row", "add", "abc"}},
		{name: "zero id", args: []string{"table", "show", "0"}},
		{name: "blank label", args: []string{"table", "create", "  "}},
		{name: "missing args", args: []string{"cell", "set", "1"}},
		{name: "column under missing table", args: []string{"column", "add", "42", "Title"}},
		{name: "cell for missing row", args: []string{"cell", "set", "7", "1", "x"}},
		{name: "unknown format", args: []string{"export", "--format", "xml"}},
		{name: "empty column update", args: []string{"column", "update", "1"}},
		{name: "reorder foreign variant", args: []string{"variant", "reorder", "1", "5"}},
		{name: "show missing table", args: []string{"table", "show", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, exitUserError, ExitCode(err))
		})
	}
}

func TestAutosaveDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "init")

	cfg := "db_path: .datahoarder/db.sqlite\nautosave: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, paths.ConfigFileName), []byte(cfg), 0o644))

	env.mustRun(t, "table", "create", "Books")
	assert.JSONEq(t, `[]`, env.mustRun(t, "--json", "table", "list"))
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	cfg := "db_path: ../outside.sqlite\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, paths.ConfigFileName), []byte(cfg), 0o644))

	_, err := env.run(t, "init")
	require.Error(t, err)
	assert.Equal(t, exitUserError, ExitCode(err))
	assert.Contains(t, err.Error(), "db_path must be a relative path inside the vault")
}

func TestExportSingleTable(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "init")
	env.mustRun(t, "table", "create", "Books")
	env.mustRun(t, "table", "create", "Films")

	out := env.mustRun(t, "export", "--table", "2")
	assert.JSONEq(t, `{"id":2,"label":"Films","columns":[],"rows":[]}`, out)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitSuccess},
		{name: "exit error", err: wrapError(exitSysError, "x", errors.New("y")), want: exitSysError},
		{name: "not found", err: &types.StoreError{Op: "delete row", Err: types.ErrNotFound}, want: exitUserError},
		{name: "engine failure", err: &types.StoreError{Op: "add row", Err: errors.New("disk I/O error")}, want: exitSysError},
		{name: "persistence", err: &types.PersistenceError{Op: "write", Err: errors.New("denied")}, want: exitSysError},
		{name: "schema", err: &types.SchemaError{Script: "schema", Err: errors.New("syntax")}, want: exitSysError},
		{name: "validation", err: &types.ValidationError{Field: "label", Err: types.ErrInvalidLabel}, want: exitUserError},
		{name: "plain", err: errors.New("unknown flag"), want: exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
