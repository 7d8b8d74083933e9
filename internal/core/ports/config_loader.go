package ports

import "go.trai.ch/iconsmith/internal/core/domain"

// ConfigLoader defines the interface for loading runtime configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path.
	// A missing or malformed file yields the default configuration, not an error.
	Load(path string) (domain.Config, error)

	// LoadCategories reads the categories file at path. A missing file yields an empty map.
	LoadCategories(path string) (domain.Categories, error)
}
