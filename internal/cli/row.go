package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hoard/internal/cache"
)

func newRowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row",
		Short: "Manage the rows of a table",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <table-id>",
			Short: "Append an empty row to a table",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				tableID, err := parseID("table", args[0])
				if err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					id, err := c.AddRow(tableID)
					if err != nil {
						return err
					}
					return a.printID(cmd.OutOrStdout(), "row", id)
				})
			},
		},
		&cobra.Command{
			Use:   "delete <row-id>",
			Short: "Delete a row and its cells",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("row", args[0])
				if err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					return c.DeleteRow(id)
				})
			},
		},
	)
	return cmd
}

func newCellCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cell",
		Short: "Manage cell values",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <row-id> <column-id> <value>",
		Short: "Write a cell value",
		Long:  "Write the value at the intersection of a row and a column of the same table.\nThe value is stored verbatim.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rowID, err := parseID("row", args[0])
			if err != nil {
				return err
			}
			columnID, err := parseID("column", args[1])
			if err != nil {
				return err
			}
			return a.mutate(cmd, func(c *cache.Cache) error {
				return c.UpdateCell(rowID, columnID, args[2])
			})
		},
	})
	return cmd
}
