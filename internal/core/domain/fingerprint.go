package domain

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies one cached raster: an absolute source path rendered at a
// pixel size, refined by the source modification time.
// It is comparable and is used directly as the in-memory cache key.
type Fingerprint struct {
	Path    InternedString
	Size    int
	ModTime int64 // unix nanoseconds
}

// NewFingerprint builds a fingerprint from its parts.
func NewFingerprint(path string, size int, modTime int64) Fingerprint {
	return Fingerprint{
		Path:    NewInternedString(path),
		Size:    size,
		ModTime: modTime,
	}
}

// Key returns the stable opaque hash used to name disk blobs and index entries.
func (f Fingerprint) Key() string {
	hasher := xxhash.New()
	_, _ = hasher.WriteString(f.Path.String())
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(strconv.Itoa(f.Size))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(strconv.FormatInt(f.ModTime, 10))
	return fmt.Sprintf("%016x", hasher.Sum64())
}

// SamePath reports whether the fingerprint belongs to the given source path.
func (f Fingerprint) SamePath(path string) bool {
	return f.Path.String() == path
}

// String implements fmt.Stringer.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%s@%dpx", f.Path.String(), f.Size)
}
