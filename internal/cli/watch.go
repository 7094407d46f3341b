package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hoard/internal/cache"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload and report whenever another process changes the vault",
		Long:  "Watch the vault blob and reload it after every external write, printing\na summary line. Runs until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.open(ctx, false)
			if err != nil {
				return err
			}
			defer ws.Close()

			c := ws.Cache()
			cancel := c.Subscribe(func(e cache.Event) {
				slog.Debug("Cache event", "kind", e.Kind, "table", e.TableID, "enum", e.EnumID)
			})
			defer cancel()

			out := cmd.OutOrStdout()
			if err := ws.Watch(ctx, func() {
				fmt.Fprintf(out, "Reloaded: %d tables, %d enums\n", len(c.Tables()), len(c.Enums()))
			}); err != nil {
				return wrapError(exitSysError, "watch vault", err)
			}
			blob, _ := ws.BlobPath()
			fmt.Fprintf(out, "Watching %s\n", blob)
			<-ctx.Done()
			return nil
		},
	}
}
