package vector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
)

var _ ports.Rasterizer = (*Chain)(nil)

// Chain renders with primary and switches to fallback for whole documents
// when primary reports that its binary is missing.
type Chain struct {
	primary  ports.Rasterizer
	fallback ports.Rasterizer
	logger   ports.Logger
	warnOnce sync.Once
}

// NewChain creates a Chain.
func NewChain(primary, fallback ports.Rasterizer, logger ports.Logger) *Chain {
	return &Chain{primary: primary, fallback: fallback, logger: logger}
}

// Render implements ports.Rasterizer.
func (c *Chain) Render(ctx context.Context, source string, size int) (domain.Bitmap, error) {
	bmp, err := c.primary.Render(ctx, source, size)
	if err == nil || !errors.Is(err, domain.ErrRasterizerNotFound) {
		return bmp, err
	}

	c.warnOnce.Do(func() {
		c.logger.Warn(fmt.Sprintf("external rasterizer unavailable, using built-in renderer: %v", err))
	})
	return c.fallback.Render(ctx, source, size)
}

// RenderRegion implements ports.Rasterizer. Region exports have no fallback.
func (c *Chain) RenderRegion(ctx context.Context, source, regionID string, dpi int) (domain.Bitmap, error) {
	return c.primary.RenderRegion(ctx, source, regionID, dpi)
}
