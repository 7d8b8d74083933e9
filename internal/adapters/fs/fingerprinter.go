// Package fs provides file system adapters for fingerprinting, discovering and hashing icon sources.
package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Fingerprinter)(nil)

// Fingerprinter derives cache identities from the source file's absolute path and modification time.
type Fingerprinter struct{}

// NewFingerprinter creates a new Fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint stats path and returns its identity at the requested pixel size.
func (f *Fingerprinter) Fingerprint(path string, size int) (domain.Fingerprint, error) {
	if size <= 0 {
		return domain.Fingerprint{}, domain.Classify(domain.ErrInvalidSize, zerr.With(zerr.New("size must be positive"), "size", size))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.Fingerprint{}, domain.Classify(domain.ErrSourceStatFailed, zerr.With(err, "path", path))
	}

	info, err := os.Stat(abs)
	if err != nil {
		return domain.Fingerprint{}, domain.Classify(domain.ErrSourceStatFailed, zerr.With(err, "path", abs))
	}

	return domain.NewFingerprint(abs, size, info.ModTime().UnixNano()), nil
}
