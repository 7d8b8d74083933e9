package domain

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultDiskCacheSizeLimit is the disk cache byte budget used when none is configured.
	DefaultDiskCacheSizeLimit int64 = 256 << 20
	// DefaultWorkerCount is the number of render workers used when none is configured.
	DefaultWorkerCount = 4
	// DefaultMemoryCacheEntries bounds the in-process cache.
	DefaultMemoryCacheEntries = 512
	// DefaultQueueSize bounds the shared render queue.
	DefaultQueueSize = 4096
	// DefaultRenderTimeout bounds a whole-document render.
	DefaultRenderTimeout = time.Minute
	// DefaultRegionTimeout bounds a single region export.
	DefaultRegionTimeout = 2 * time.Minute
	// DefaultCategory is the export context used when an icon is not listed in any category.
	DefaultCategory = "fallback"
	// DirPerm is the permission used for directories the tool creates.
	DirPerm = 0o750
	// FilePerm is the permission used for files the tool creates.
	FilePerm = 0o644
)

// Config is the resolved runtime configuration.
type Config struct {
	SupersampleEnabled bool
	SupersampleFactor  int
	DiskCacheEnabled   bool
	DiskCacheDir       string
	DiskCacheSizeLimit int64
	WorkerCount        int
	IconPageSize       int
	MaxSVGBackups      int
	MasterEnabled      bool
	MasterExportPath   string
	Master2xEnabled    bool

	MemoryCacheEntries int
	QueueSize          int
	InkscapeBinary     string
	RenderTimeout      time.Duration
	RegionTimeout      time.Duration
	PlaceholderPath    string
	CategoriesFile     string
	DefaultCategory    string
	SnapTolerance      float64
}

// DefaultConfig returns the configuration used when no file exists or the file is unreadable.
func DefaultConfig() Config {
	return Config{
		SupersampleEnabled: false,
		SupersampleFactor:  2,
		DiskCacheEnabled:   true,
		DiskCacheDir:       DefaultDiskCacheDir(),
		DiskCacheSizeLimit: DefaultDiskCacheSizeLimit,
		WorkerCount:        DefaultWorkerCount,
		IconPageSize:       200,
		MaxSVGBackups:      10,
		MemoryCacheEntries: DefaultMemoryCacheEntries,
		QueueSize:          DefaultQueueSize,
		InkscapeBinary:     "inkscape",
		RenderTimeout:      DefaultRenderTimeout,
		RegionTimeout:      DefaultRegionTimeout,
		DefaultCategory:    DefaultCategory,
		SnapTolerance:      DefaultSnapTolerance,
	}
}

// DefaultDiskCacheDir returns $XDG_CACHE_HOME/iconsmith or a temp-dir fallback.
func DefaultDiskCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "iconsmith")
	}
	return filepath.Join(os.TempDir(), "iconsmith-cache")
}

// DensityFactors returns the export density multipliers enabled by the config.
func (c Config) DensityFactors() []int {
	if c.Master2xEnabled {
		return []int{1, 2}
	}
	return []int{1}
}

// ExportRoot resolves the master export path against the theme root.
// An empty path exports into the theme root; a relative path is theme-relative.
func (c Config) ExportRoot(themeRoot string) string {
	switch {
	case c.MasterExportPath == "":
		return themeRoot
	case filepath.IsAbs(c.MasterExportPath):
		return c.MasterExportPath
	default:
		return filepath.Join(themeRoot, c.MasterExportPath)
	}
}

// Normalize clamps out-of-range values back to safe defaults.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.SupersampleFactor < 2 {
		c.SupersampleFactor = def.SupersampleFactor
	}
	if c.WorkerCount < 1 {
		c.WorkerCount = def.WorkerCount
	}
	if c.DiskCacheSizeLimit <= 0 {
		c.DiskCacheSizeLimit = def.DiskCacheSizeLimit
	}
	if c.DiskCacheDir == "" {
		c.DiskCacheDir = def.DiskCacheDir
	}
	if c.MemoryCacheEntries < 1 {
		c.MemoryCacheEntries = def.MemoryCacheEntries
	}
	if c.QueueSize < 1 {
		c.QueueSize = def.QueueSize
	}
	if c.IconPageSize < 1 {
		c.IconPageSize = def.IconPageSize
	}
	if c.MaxSVGBackups < 0 {
		c.MaxSVGBackups = def.MaxSVGBackups
	}
	if c.InkscapeBinary == "" {
		c.InkscapeBinary = def.InkscapeBinary
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = def.RenderTimeout
	}
	if c.RegionTimeout <= 0 {
		c.RegionTimeout = def.RegionTimeout
	}
	if c.DefaultCategory == "" {
		c.DefaultCategory = def.DefaultCategory
	}
	if c.SnapTolerance <= 0 || c.SnapTolerance >= 1 {
		c.SnapTolerance = def.SnapTolerance
	}
	return c
}
