package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hoard/internal/cache"
	"github.com/mesh-intelligence/hoard/pkg/types"
)

func newColumnCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Manage the columns of a table",
	}
	cmd.AddCommand(newColumnAddCmd(a), newColumnUpdateCmd(a), newColumnDeleteCmd(a), newColumnReorderCmd(a))
	return cmd
}

// datatypeHelp lists the accepted datatypes for flag help.
var datatypeHelp = strings.Join(types.StandardDatatypes, ", ") + ", or enum:<id>"

func newColumnAddCmd(a *app) *cobra.Command {
	var datatype string
	cmd := &cobra.Command{
		Use:   "add <table-id> <label>",
		Short: "Append a column to a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tableID, err := parseID("table", args[0])
			if err != nil {
				return err
			}
			if err := requireLabel("column", args[1]); err != nil {
				return err
			}
			if strings.TrimSpace(datatype) == "" {
				return userError("column datatype must not be empty")
			}
			return a.mutate(cmd, func(c *cache.Cache) error {
				id, err := c.AddColumn(tableID, args[1], datatype)
				if err != nil {
					return err
				}
				return a.printID(cmd.OutOrStdout(), "column", id)
			})
		},
	}
	cmd.Flags().StringVarP(&datatype, "type", "t", types.DatatypeText, "column datatype: "+datatypeHelp)
	return cmd
}

func newColumnUpdateCmd(a *app) *cobra.Command {
	var label, datatype string
	cmd := &cobra.Command{
		Use:   "update <column-id>",
		Short: "Change a column's label or datatype",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("column", args[0])
			if err != nil {
				return err
			}
			var u types.ColumnUpdate
			if cmd.Flags().Changed("label") {
				if err := requireLabel("column", label); err != nil {
					return err
				}
				u.Label = types.Ptr(label)
			}
			if cmd.Flags().Changed("type") {
				if strings.TrimSpace(datatype) == "" {
					return userError("column datatype must not be empty")
				}
				u.Datatype = types.Ptr(datatype)
			}
			if u.Empty() {
				return userError("nothing to update; pass --label or --type")
			}
			return a.mutate(cmd, func(c *cache.Cache) error {
				return c.UpdateColumn(id, u)
			})
		},
	}
	cmd.Flags().StringVarP(&label, "label", "l", "", "new column label")
	cmd.Flags().StringVarP(&datatype, "type", "t", "", "new column datatype: "+datatypeHelp)
	return cmd
}

func newColumnDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <column-id>",
		Short: "Delete a column and its cells",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("column", args[0])
			if err != nil {
				return err
			}
			return a.mutate(cmd, func(c *cache.Cache) error {
				return c.DeleteColumn(id)
			})
		},
	}
}

func newColumnReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <table-id> <column-id>...",
		Short: "Set the display order of columns",
		Long:  "Each listed column gets its position in the argument list as sort order.\nColumns not listed keep their sort order.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tableID, err := parseID("table", args[0])
			if err != nil {
				return err
			}
			ids, err := parseIDs("column", args[1:])
			if err != nil {
				return err
			}
			return a.mutate(cmd, func(c *cache.Cache) error {
				if _, ok := c.Table(tableID); !ok {
					return userError("table %d not found", tableID)
				}
				for _, id := range ids {
					if owner, ok := c.TableOfColumn(id); !ok || owner != tableID {
						return userError("column %d is not in table %d", id, tableID)
					}
				}
				if err := c.ReorderColumns(tableID, ids); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d columns\n", len(ids))
				return nil
			})
		},
	}
}
