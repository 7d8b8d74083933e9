package commands

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.trai.ch/iconsmith/internal/app"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the render cache",
	}
	cmd.AddCommand(c.newCachePruneCmd(), c.newCacheInvalidateCmd(), c.newCacheStatsCmd())
	return cmd
}

func (c *CLI) newCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Trim the disk cache to its size limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, app.OpenOptions{}, func(s Session) error {
				res, err := s.Prune()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "evicted %d, dropped %d missing, freed %s, %s remaining\n",
					res.Evicted, res.Missing, humanize.IBytes(uint64(res.Freed)), humanize.IBytes(uint64(res.Remaining)))
				return nil
			})
		},
	}
}

func (c *CLI) newCacheInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <svg>...",
		Short: "Drop every cached size of the given sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, app.OpenOptions{}, func(s Session) error {
				var errs []error
				for _, path := range args {
					errs = append(errs, s.Invalidate(path))
				}
				return errors.Join(errs...)
			})
		},
	}
}

func (c *CLI) newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, app.OpenOptions{}, func(s Session) error {
				stats := s.Stats()
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "memory cache: %d entries, %d requests, %d hits, %d removed\n",
					stats.Memory.Entries, stats.Memory.Requests, stats.Memory.Hits, stats.Memory.Removed)
				if stats.Disk == nil {
					_, _ = fmt.Fprintln(out, "disk cache: disabled")
					return nil
				}
				_, _ = fmt.Fprintf(out, "disk cache: %d entries, %s of %s\n",
					stats.Disk.Entries, humanize.IBytes(uint64(stats.Disk.Bytes)), humanize.IBytes(uint64(stats.Disk.Limit)))
				return nil
			})
		},
	}
}
