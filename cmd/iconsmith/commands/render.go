package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"go.trai.ch/iconsmith/internal/app"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/zerr"
)

var defaultPreviewSizes = []int{16, 24, 32, 48}

func (c *CLI) newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <svg|dir>...",
		Short: "Render previews through the cache and worker pool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes, _ := cmd.Flags().GetIntSlice("size")
			outDir, _ := cmd.Flags().GetString("out")

			return c.withSession(cmd, app.OpenOptions{}, func(s Session) error {
				sources := expandSources(s, args)
				if len(sources) == 0 {
					return domain.ErrNoSources
				}

				reqs := make([]app.PreviewRequest, 0, len(sources)*len(sizes))
				for _, src := range sources {
					for _, size := range sizes {
						reqs = append(reqs, app.PreviewRequest{Path: src, Size: size})
					}
				}

				out := cmd.OutOrStdout()
				var writeErrs []error
				err := s.Preview(cmd.Context(), reqs, func(res domain.RenderResult) {
					line := fmt.Sprintf("%s\t%d\t%s", res.Fingerprint.Path.String(), res.Fingerprint.Size, res.Source)
					if res.Err != nil {
						line += "\t" + firstLine(res.Err)
					}
					_, _ = fmt.Fprintln(out, line)

					if outDir != "" {
						if err := savePreview(outDir, res); err != nil {
							writeErrs = append(writeErrs, err)
						}
					}
				})
				if err != nil {
					return err
				}
				if len(writeErrs) > 0 {
					return writeErrs[0]
				}
				return nil
			})
		},
	}
	cmd.Flags().IntSliceP("size", "s", defaultPreviewSizes, "Pixel sizes to render")
	cmd.Flags().StringP("out", "o", "", "Directory to write preview PNGs into")
	return cmd
}

func expandSources(s Session, args []string) []string {
	var sources []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			for src := range s.Sources(arg) {
				sources = append(sources, src)
			}
			continue
		}
		sources = append(sources, arg)
	}
	return sources
}

func savePreview(dir string, res domain.RenderResult) error {
	if res.Bitmap.IsEmpty() {
		return nil
	}
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create preview directory"), "dir", dir)
	}

	base := filepath.Base(res.Fingerprint.Path.String())
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "-" + strconv.Itoa(res.Fingerprint.Size) + ".png"
	path := filepath.Join(dir, name)
	if err := atomic.WriteFile(path, bytes.NewReader(res.Bitmap.Data)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write preview"), "path", path)
	}
	return nil
}

func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
