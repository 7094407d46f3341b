package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hoard/internal/cache"
	"github.com/mesh-intelligence/hoard/internal/export"
	"github.com/mesh-intelligence/hoard/pkg/types"
)

func newTableCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage tables",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List tables",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.view(cmd, func(c *cache.Cache) error {
					tables := c.Tables()
					return a.print(cmd.OutOrStdout(), tables, func(w io.Writer) error {
						tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
						fmt.Fprintln(tw, "ID\tLABEL\tCOLUMNS\tROWS")
						for _, t := range tables {
							fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", t.ID, t.Label, len(c.Columns(t.ID)), len(c.Rows(t.ID)))
						}
						return tw.Flush()
					})
				})
			},
		},
		&cobra.Command{
			Use:   "create <label>",
			Short: "Create a table",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := requireLabel("table", args[0]); err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					id, err := c.CreateTable(args[0])
					if err != nil {
						return err
					}
					return a.printID(cmd.OutOrStdout(), "table", id)
				})
			},
		},
		&cobra.Command{
			Use:   "rename <table-id> <label>",
			Short: "Rename a table",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("table", args[0])
				if err != nil {
					return err
				}
				if err := requireLabel("table", args[1]); err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					return c.UpdateTable(id, types.TableUpdate{Label: types.Ptr(args[1])})
				})
			},
		},
		&cobra.Command{
			Use:   "delete <table-id>",
			Short: "Delete a table with its columns, rows, and cells",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("table", args[0])
				if err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					return c.DeleteTable(id)
				})
			},
		},
		&cobra.Command{
			Use:   "show <table-id>",
			Short: "Print a table as a grid",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("table", args[0])
				if err != nil {
					return err
				}
				return a.view(cmd, func(c *cache.Cache) error {
					td, ok := export.BuildTable(c, id)
					if !ok {
						return userError("table %d not found", id)
					}
					return a.print(cmd.OutOrStdout(), td, func(w io.Writer) error {
						return export.RenderTable(w, td)
					})
				})
			},
		},
	)
	return cmd
}
