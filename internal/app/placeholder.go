package app

import (
	"bytes"
	"context"
	_ "embed"

	"go.trai.ch/iconsmith/internal/adapters/vector"
	"go.trai.ch/iconsmith/internal/core/domain"
)

//go:embed assets/placeholder.svg
var placeholderSVG []byte

// renderPlaceholder draws the "unreadable" emblem at size. A configured placeholder file
// takes precedence over the built-in one.
func (s *Session) renderPlaceholder(ctx context.Context, size int) (domain.Bitmap, error) {
	if s.cfg.PlaceholderPath != "" {
		bmp, err := s.rasterizer.Render(ctx, s.cfg.PlaceholderPath, size)
		if err == nil && !bmp.IsEmpty() {
			return bmp, nil
		}
		if err != nil {
			s.logger.Warn("placeholder " + s.cfg.PlaceholderPath + " unusable: " + err.Error())
		}
	}
	return vector.Rasterize(bytes.NewReader(placeholderSVG), size)
}
