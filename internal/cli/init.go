package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a vault",
		Long:  "Create the configuration directory and the vault blob, then apply the schema.\nRunning init on an initialized vault is harmless.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer ws.Close()
			if err := ws.Init(cmd.Context()); err != nil {
				return wrapError(exitSysError, "initialize vault", err)
			}
			blob, err := ws.BlobPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized vault at %s\n", blob)
			return nil
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply forward schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()
			if err := ws.Migrate(cmd.Context()); err != nil {
				return wrapError(exitSysError, "migrate vault", err)
			}
			v, err := ws.SchemaVersion()
			if err != nil {
				return wrapError(exitSysError, "read schema version", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", v)
			return nil
		},
	}
}
