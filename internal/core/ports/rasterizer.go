package ports

import (
	"context"

	"go.trai.ch/iconsmith/internal/core/domain"
)

// Rasterizer converts vector documents into bitmaps.
//
//go:generate go run go.uber.org/mock/mockgen -source=rasterizer.go -destination=mocks/mock_rasterizer.go -package=mocks
type Rasterizer interface {
	// Render rasterizes the whole document at size x size pixels.
	Render(ctx context.Context, source string, size int) (domain.Bitmap, error)

	// RenderRegion rasterizes the single element regionID at the given DPI.
	RenderRegion(ctx context.Context, source, regionID string, dpi int) (domain.Bitmap, error)
}
