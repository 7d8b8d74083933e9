package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/iconsmith/internal/app"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <svg>",
		Short: "Print the master layout of a source document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, app.OpenOptions{}, func(s Session) error {
				layout, err := s.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "name:    %s\n", layout.IconName)
				_, _ = fmt.Fprintf(out, "context: %s\n", layout.Context)
				for _, size := range layout.Sizes() {
					_, _ = fmt.Fprintf(out, "%4d  %s\n", size, layout.Regions[size])
				}
				return nil
			})
		},
	}
}
