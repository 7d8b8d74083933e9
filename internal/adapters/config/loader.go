// Package config provides the configuration loader for iconsmith.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tailscale/hujson"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "ICONSMITH_"

// Loader implements ports.ConfigLoader for JSON, JSON-with-comments and YAML files.
type Loader struct {
	logger ports.Logger
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// NewLoader creates a new configuration loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the configuration at path, overlays environment overrides and normalizes the result.
// A missing, unreadable or malformed file yields the defaults rather than an error.
func (l *Loader) Load(path string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if path != "" {
		dto, err := readFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			l.logger.Debug("config file not found, using defaults: " + path)
		case err != nil:
			l.logger.Warn("config file unusable, using defaults: " + err.Error())
		default:
			cfg = applyFile(cfg, dto)
		}
	}

	overlaid, err := l.applyEnv(cfg)
	if err != nil {
		l.logger.Warn("ignoring environment overrides: " + err.Error())
	} else {
		cfg = overlaid
	}

	return cfg.Normalize(), nil
}

// LoadCategories reads the categories JSON file. An empty path yields no categories.
func (l *Loader) LoadCategories(path string) (domain.Categories, error) {
	if path == "" {
		return domain.Categories{}, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, domain.Classify(domain.ErrCategoriesReadFailed, zerr.With(err, "path", path))
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, domain.Classify(domain.ErrCategoriesReadFailed, zerr.With(err, "path", path))
	}
	var cats domain.Categories
	if err := json.Unmarshal(standardized, &cats); err != nil {
		return nil, domain.Classify(domain.ErrCategoriesReadFailed, zerr.With(err, "path", path))
	}
	return cats, nil
}

func readFile(path string) (*FileDTO, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, domain.Classify(domain.ErrConfigReadFailed, zerr.With(err, "path", path))
	}

	var dto FileDTO
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &dto); err != nil {
			return nil, domain.Classify(domain.ErrConfigParseFailed, zerr.With(err, "path", path))
		}
	default:
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return nil, domain.Classify(domain.ErrConfigParseFailed, zerr.With(err, "path", path))
		}
		if err := json.Unmarshal(standardized, &dto); err != nil {
			return nil, domain.Classify(domain.ErrConfigParseFailed, zerr.With(err, "path", path))
		}
	}
	return &dto, nil
}

func applyFile(cfg domain.Config, dto *FileDTO) domain.Config {
	set(&cfg.SupersampleEnabled, dto.SupersampleEnabled)
	set(&cfg.SupersampleFactor, dto.SupersampleFactor)
	set(&cfg.DiskCacheEnabled, dto.DiskCacheEnabled)
	set(&cfg.DiskCacheDir, dto.DiskCacheDir)
	set(&cfg.WorkerCount, dto.WorkerCount)
	set(&cfg.IconPageSize, dto.IconPageSize)
	set(&cfg.MaxSVGBackups, dto.MaxSVGBackups)
	set(&cfg.MasterEnabled, dto.MintyEnabled)
	set(&cfg.MasterExportPath, dto.MintyExportPath)
	set(&cfg.Master2xEnabled, dto.Minty2xEnabled)
	set(&cfg.MemoryCacheEntries, dto.MemoryCacheEntries)
	set(&cfg.QueueSize, dto.QueueSize)
	set(&cfg.InkscapeBinary, dto.InkscapeBinary)
	set(&cfg.PlaceholderPath, dto.PlaceholderPath)
	set(&cfg.CategoriesFile, dto.CategoriesFile)
	set(&cfg.DefaultCategory, dto.DefaultCategory)
	set(&cfg.SnapTolerance, dto.SnapTolerance)
	if dto.DiskCacheSizeLimit != nil {
		cfg.DiskCacheSizeLimit = int64(*dto.DiskCacheSizeLimit)
	}
	if dto.RenderTimeout != nil {
		cfg.RenderTimeout = time.Duration(*dto.RenderTimeout)
	}
	if dto.RegionTimeout != nil {
		cfg.RegionTimeout = time.Duration(*dto.RegionTimeout)
	}
	return cfg
}

func (l *Loader) applyEnv(cfg domain.Config) (domain.Config, error) {
	dto := EnvDTO{
		SupersampleEnabled: cfg.SupersampleEnabled,
		SupersampleFactor:  cfg.SupersampleFactor,
		DiskCacheEnabled:   cfg.DiskCacheEnabled,
		DiskCacheDir:       cfg.DiskCacheDir,
		DiskCacheSizeLimit: ByteSize(cfg.DiskCacheSizeLimit),
		WorkerCount:        cfg.WorkerCount,
		IconPageSize:       cfg.IconPageSize,
		MaxSVGBackups:      cfg.MaxSVGBackups,
		MintyEnabled:       cfg.MasterEnabled,
		MintyExportPath:    cfg.MasterExportPath,
		Minty2xEnabled:     cfg.Master2xEnabled,
		MemoryCacheEntries: cfg.MemoryCacheEntries,
		QueueSize:          cfg.QueueSize,
		InkscapeBinary:     cfg.InkscapeBinary,
		RenderTimeout:      Duration(cfg.RenderTimeout),
		RegionTimeout:      Duration(cfg.RegionTimeout),
		PlaceholderPath:    cfg.PlaceholderPath,
		CategoriesFile:     cfg.CategoriesFile,
		DefaultCategory:    cfg.DefaultCategory,
		SnapTolerance:      cfg.SnapTolerance,
	}

	opts := env.Options{Prefix: EnvPrefix, Environment: l.Environment}
	if err := env.ParseWithOptions(&dto, opts); err != nil {
		return cfg, zerr.Wrap(err, "failed to parse environment overrides")
	}

	return domain.Config{
		SupersampleEnabled: dto.SupersampleEnabled,
		SupersampleFactor:  dto.SupersampleFactor,
		DiskCacheEnabled:   dto.DiskCacheEnabled,
		DiskCacheDir:       dto.DiskCacheDir,
		DiskCacheSizeLimit: int64(dto.DiskCacheSizeLimit),
		WorkerCount:        dto.WorkerCount,
		IconPageSize:       dto.IconPageSize,
		MaxSVGBackups:      dto.MaxSVGBackups,
		MasterEnabled:      dto.MintyEnabled,
		MasterExportPath:   dto.MintyExportPath,
		Master2xEnabled:    dto.Minty2xEnabled,
		MemoryCacheEntries: dto.MemoryCacheEntries,
		QueueSize:          dto.QueueSize,
		InkscapeBinary:     dto.InkscapeBinary,
		RenderTimeout:      time.Duration(dto.RenderTimeout),
		RegionTimeout:      time.Duration(dto.RegionTimeout),
		PlaceholderPath:    dto.PlaceholderPath,
		CategoriesFile:     dto.CategoriesFile,
		DefaultCategory:    dto.DefaultCategory,
		SnapTolerance:      dto.SnapTolerance,
	}, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
