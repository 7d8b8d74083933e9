package ports

import "go.trai.ch/iconsmith/internal/core/domain"

// BitmapCache is one tier of the render cache.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type BitmapCache interface {
	// Get returns the cached bitmap or domain.ErrCacheMiss.
	Get(fp domain.Fingerprint) (domain.Bitmap, error)

	// Put stores the bitmap under fp, overwriting any previous value.
	Put(fp domain.Fingerprint, bmp domain.Bitmap) error

	// Invalidate removes every entry rendered from path, regardless of size or modification time.
	Invalidate(path string) error
}
