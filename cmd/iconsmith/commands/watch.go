package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/iconsmith/internal/adapters/watcher"
	"go.trai.ch/iconsmith/internal/app"
	"go.trai.ch/iconsmith/internal/engine/export"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <svg|dir>...",
		Short: "Re-export sources whenever they are saved",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, _ := cmd.Flags().GetString("theme")
			force, _ := cmd.Flags().GetBool("force")
			window, _ := cmd.Flags().GetDuration("debounce")

			return c.withSession(cmd, app.OpenOptions{}, func(s Session) error {
				return s.Watch(cmd.Context(), app.WatchOptions{
					Sources:   args,
					ThemeRoot: theme,
					Force:     force,
					Window:    window,
				}, export.NewLogSink(c.logger))
			})
		},
	}
	cmd.Flags().StringP("theme", "t", ".", "Theme root to export into")
	cmd.Flags().BoolP("force", "f", false, "Export even when master export is disabled in config")
	cmd.Flags().Duration("debounce", watcher.DefaultDebounceWindow, "Quiet period before a change is exported")
	return cmd
}
