package ports

import "go.trai.ch/iconsmith/internal/core/domain"

// Fingerprinter derives cache identities from the file system.
//
//go:generate go run go.uber.org/mock/mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint resolves path to an absolute path and stamps it with the current modification time.
	Fingerprint(path string, size int) (domain.Fingerprint, error)
}
