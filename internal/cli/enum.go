package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hoard/internal/cache"
	"github.com/mesh-intelligence/hoard/internal/export"
	"github.com/mesh-intelligence/hoard/pkg/types"
)

func newEnumCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enum",
		Short: "Manage enums",
		Long:  "Enums are ordered lists of variants. A column refers to an enum with the\ndatatype enum:<id>.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List enums with their variants",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.view(cmd, func(c *cache.Cache) error {
					enums := export.Build(c).Enums
					return a.print(cmd.OutOrStdout(), enums, func(w io.Writer) error {
						for _, e := range enums {
							if err := export.RenderEnum(w, e); err != nil {
								return err
							}
						}
						return nil
					})
				})
			},
		},
		&cobra.Command{
			Use:   "create <label>",
			Short: "Create an enum",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := requireLabel("enum", args[0]); err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					id, err := c.CreateEnum(args[0])
					if err != nil {
						return err
					}
					return a.printID(cmd.OutOrStdout(), "enum", id)
				})
			},
		},
		&cobra.Command{
			Use:   "rename <enum-id> <label>",
			Short: "Rename an enum",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("enum", args[0])
				if err != nil {
					return err
				}
				if err := requireLabel("enum", args[1]); err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					return c.UpdateEnum(id, types.EnumUpdate{Label: types.Ptr(args[1])})
				})
			},
		},
		&cobra.Command{
			Use:   "delete <enum-id>",
			Short: "Delete an enum and its variants",
			Long:  "Delete an enum and its variants. Columns whose datatype refers to the enum\nkeep that datatype.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("enum", args[0])
				if err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					return c.DeleteEnum(id)
				})
			},
		},
	)
	return cmd
}

func newVariantCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variant",
		Short: "Manage the variants of an enum",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <enum-id> <label>",
			Short: "Append a variant to an enum",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				enumID, err := parseID("enum", args[0])
				if err != nil {
					return err
				}
				if err := requireLabel("variant", args[1]); err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					id, err := c.AddEnumVariant(enumID, args[1])
					if err != nil {
						return err
					}
					return a.printID(cmd.OutOrStdout(), "variant", id)
				})
			},
		},
		&cobra.Command{
			Use:   "rename <variant-id> <label>",
			Short: "Rename a variant",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("variant", args[0])
				if err != nil {
					return err
				}
				if err := requireLabel("variant", args[1]); err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					return c.UpdateEnumVariant(id, types.EnumVariantUpdate{Label: types.Ptr(args[1])})
				})
			},
		},
		&cobra.Command{
			Use:   "delete <variant-id>",
			Short: "Delete a variant",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("variant", args[0])
				if err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					return c.DeleteEnumVariant(id)
				})
			},
		},
		&cobra.Command{
			Use:   "reorder <enum-id> <variant-id>...",
			Short: "Set the display order of variants",
			Long:  "Each listed variant gets its position in the argument list as sort order.\nVariants not listed keep their sort order.",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				enumID, err := parseID("enum", args[0])
				if err != nil {
					return err
				}
				ids, err := parseIDs("variant", args[1:])
				if err != nil {
					return err
				}
				return a.mutate(cmd, func(c *cache.Cache) error {
					if _, ok := c.Enum(enumID); !ok {
						return userError("enum %d not found", enumID)
					}
					for _, id := range ids {
						if owner, ok := c.EnumOfVariant(id); !ok || owner != enumID {
							return userError("variant %d is not in enum %d", id, enumID)
						}
					}
					if err := c.ReorderEnumVariants(enumID, ids); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d variants\n", len(ids))
					return nil
				})
			},
		},
	)
	return cmd
}
