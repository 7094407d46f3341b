// Package cli implements the hoard command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hoard/internal/cache"
	"github.com/mesh-intelligence/hoard/internal/export"
	"github.com/mesh-intelligence/hoard/internal/logging"
	"github.com/mesh-intelligence/hoard/internal/paths"
	"github.com/mesh-intelligence/hoard/internal/workspace"
	"github.com/mesh-intelligence/hoard/pkg/hoard"
	"github.com/mesh-intelligence/hoard/pkg/types"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	vaultDir  string
	logLevel  string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
}

// NewRootCmd creates the top-level "hoard" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "hoard",
		Short:   "Typed tables and enums stored in a single SQLite file",
		Long:    "hoard keeps user-defined tables, columns, rows, cells, and enums\nin one SQLite blob inside a vault directory.",
		Version: hoard.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $"+paths.EnvConfigDir+")")
	root.PersistentFlags().StringVar(&a.flags.vaultDir, "vault", "", "vault directory (default: current directory, or $"+paths.EnvVaultDir+")")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newMigrateCmd(a),
		newSchemaCmd(),
		newTableCmd(a),
		newColumnCmd(a),
		newRowCmd(a),
		newCellCmd(a),
		newEnumCmd(a),
		newVariantCmd(a),
		newExportCmd(a),
		newWatchCmd(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitCode(err)
	}
	return exitSuccess
}

// setup resolves directories, loads the config, and installs the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return wrapError(exitSysError, "resolve config dir", err)
	}
	v, err := loadConfig(dir)
	if err != nil {
		return wrapError(exitSysError, "load config", err)
	}
	cfg, err := buildConfig(v, &a.flags)
	if err != nil {
		return err
	}
	if _, err := logging.Setup(cfg.LogLevel); err != nil {
		return userError("%v", err)
	}
	a.configDir = dir
	a.cfg = cfg
	return nil
}

// open opens the workspace. When requireSchema is set an uninitialized
// vault is a user error.
func (a *app) open(ctx context.Context, requireSchema bool) (*workspace.Workspace, error) {
	ws, err := workspace.Open(ctx, a.cfg)
	if err != nil {
		return nil, wrapError(exitSysError, "open vault", err)
	}
	if !requireSchema {
		return ws, nil
	}
	ok, err := ws.HasSchema()
	if err != nil {
		ws.Close()
		return nil, wrapError(exitSysError, "check schema", err)
	}
	if !ok {
		ws.Close()
		return nil, userError("vault %s is not initialized; run \"hoard init\"", a.cfg.VaultDir)
	}
	return ws, nil
}

// view opens the workspace read-only and runs fn against its cache.
func (a *app) view(cmd *cobra.Command, fn func(c *cache.Cache) error) error {
	ws, err := a.open(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer ws.Close()
	return fn(ws.Cache())
}

// mutate opens the workspace, runs fn against its cache, and saves when
// autosave is enabled.
func (a *app) mutate(cmd *cobra.Command, fn func(c *cache.Cache) error) error {
	ws, err := a.open(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer ws.Close()
	if err := fn(ws.Cache()); err != nil {
		return err
	}
	if err := ws.Commit(cmd.Context()); err != nil {
		return wrapError(exitSysError, "save vault", err)
	}
	return nil
}

// print writes v as JSON in --json mode and runs text otherwise.
func (a *app) print(w io.Writer, v any, text func(io.Writer) error) error {
	if a.flags.jsonMode {
		return export.Write(w, v, export.FormatJSON)
	}
	return text(w)
}

// printID reports the id of a created entity.
func (a *app) printID(w io.Writer, kind string, id int64) error {
	return a.print(w, map[string]int64{"id": id}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Created %s %d\n", kind, id)
		return err
	})
}

func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, userError("invalid %s id %q", kind, arg)
	}
	return id, nil
}

func parseIDs(kind string, args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(kind, arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// requireLabel rejects blank labels before they reach the cache, which
// would otherwise turn them into silent no-ops.
func requireLabel(kind, label string) error {
	if strings.TrimSpace(label) == "" {
		return userError("%s label must not be empty", kind)
	}
	return nil
}
