package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/iconsmith/internal/adapters/telemetry/progrock"
	"go.trai.ch/iconsmith/internal/app"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/engine/export"
	"go.trai.ch/zerr"
)

// ErrExportIncomplete is returned when at least one export task failed.
var ErrExportIncomplete = zerr.New("export incomplete")

func (c *CLI) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <svg|dir>...",
		Short: "Export PNGs for every size of master documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, _ := cmd.Flags().GetString("theme")
			hiDPI, _ := cmd.Flags().GetBool("2x")
			sizes, _ := cmd.Flags().GetIntSlice("sizes")

			return c.withSession(cmd, app.OpenOptions{Master2x: hiDPI}, func(s Session) error {
				sources := expandSources(s, args)
				if len(sources) == 0 {
					return domain.ErrNoSources
				}

				tape := progrock.New()
				defer func() { _ = tape.Close() }()
				sink := export.MultiSink{export.NewLogSink(c.logger), tape}

				out := cmd.OutOrStdout()
				var failed []error
				for _, src := range sources {
					if cmd.Context().Err() != nil {
						return cmd.Context().Err()
					}

					outcome, err := s.Export(cmd.Context(), app.ExportRequest{Source: src, ThemeRoot: theme, Sizes: sizes}, sink, nil)
					if err != nil {
						failed = append(failed, err)
						_, _ = fmt.Fprintf(out, "%s: %s\n", src, firstLine(err))
						continue
					}

					_, _ = fmt.Fprintf(out, "%s: %d rendered, %d skipped, %d failed of %d\n",
						src, outcome.Rendered, outcome.Skipped, outcome.Failed, outcome.Total)
					if outcome.Failed > 0 {
						failed = append(failed, zerr.With(ErrExportIncomplete, "source", src))
					}
				}
				return errors.Join(failed...)
			})
		},
	}
	cmd.Flags().StringP("theme", "t", ".", "Theme root to export into")
	cmd.Flags().Bool("2x", false, "Also export @2x variants")
	cmd.Flags().IntSlice("sizes", nil, "Sizes for sources that are not master documents (default canonical sizes)")
	return cmd
}
