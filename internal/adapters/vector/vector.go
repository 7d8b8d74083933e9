// Package vector rasterizes SVG documents in-process with oksvg.
package vector

import (
	"context"
	"image"
	"io"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Rasterizer = (*Rasterizer)(nil)

// Rasterizer draws whole documents with the oksvg scanner.
// It understands a subset of SVG and cannot export single elements.
type Rasterizer struct{}

// New creates a Rasterizer.
func New() *Rasterizer {
	return &Rasterizer{}
}

// Render rasterizes the document at source into a size x size bitmap.
func (r *Rasterizer) Render(ctx context.Context, source string, size int) (domain.Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bitmap{}, err
	}

	f, err := os.Open(source) //nolint:gosec // source paths come from the icon theme
	if err != nil {
		return domain.Bitmap{}, domain.Classify(domain.ErrRasterizerFailed, zerr.With(err, "source", source))
	}
	defer f.Close() //nolint:errcheck // read-only

	bmp, err := Rasterize(f, size)
	if err != nil {
		return domain.Bitmap{}, err
	}
	return bmp, nil
}

// RenderRegion always fails with domain.ErrRegionUnsupported.
func (r *Rasterizer) RenderRegion(_ context.Context, source, regionID string, _ int) (domain.Bitmap, error) {
	err := zerr.With(zerr.With(zerr.New("element export needs the external rasterizer"), "source", source), "region", regionID)
	return domain.Bitmap{}, domain.Classify(domain.ErrRegionUnsupported, err)
}

// Rasterize draws the SVG read from src into a size x size bitmap.
func Rasterize(src io.Reader, size int) (domain.Bitmap, error) {
	if size <= 0 {
		return domain.Bitmap{}, domain.Classify(domain.ErrInvalidSize, zerr.With(zerr.New("size must be positive"), "size", size))
	}

	icon, err := oksvg.ReadIconStream(src, oksvg.IgnoreErrorMode)
	if err != nil {
		return domain.Bitmap{}, domain.Classify(domain.ErrRasterizerFailed, zerr.Wrap(err, "failed to parse svg"))
	}

	icon.SetTarget(0, 0, float64(size), float64(size))
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	dasher := rasterx.NewDasher(size, size, rasterx.NewScannerGV(size, size, rgba, rgba.Bounds()))
	icon.Draw(dasher, 1.0)

	return domain.BitmapFromImage(rgba)
}
