package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hoard/internal/cache"
	"github.com/mesh-intelligence/hoard/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var format string
	var tableID int64
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the vault's tables and enums as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return userError("%v", err)
			}
			return a.view(cmd, func(c *cache.Cache) error {
				if tableID == 0 {
					return export.Write(cmd.OutOrStdout(), export.Build(c), f)
				}
				td, ok := export.BuildTable(c, tableID)
				if !ok {
					return userError("table %d not found", tableID)
				}
				return export.Write(cmd.OutOrStdout(), td, f)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "output format (json|yaml)")
	cmd.Flags().Int64Var(&tableID, "table", 0, "export a single table")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the export document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := export.Schema()
			if err != nil {
				return wrapError(exitSysError, "generate schema", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
