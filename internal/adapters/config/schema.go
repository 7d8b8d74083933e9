package config

// FileDTO is the on-disk shape of the configuration file.
// Nil fields keep their default value.
type FileDTO struct {
	SupersampleEnabled *bool     `json:"supersample_enabled"   yaml:"supersample_enabled"`
	SupersampleFactor  *int      `json:"supersample_factor"    yaml:"supersample_factor"`
	DiskCacheEnabled   *bool     `json:"disk_cache_enabled"    yaml:"disk_cache_enabled"`
	DiskCacheDir       *string   `json:"disk_cache_dir"        yaml:"disk_cache_dir"`
	DiskCacheSizeLimit *ByteSize `json:"disk_cache_size_limit" yaml:"disk_cache_size_limit"`
	WorkerCount        *int      `json:"pixbuf_worker_count"   yaml:"pixbuf_worker_count"`
	IconPageSize       *int      `json:"icon_page_size"        yaml:"icon_page_size"`
	MaxSVGBackups      *int      `json:"max_svg_backups"       yaml:"max_svg_backups"`
	MintyEnabled       *bool     `json:"minty_enabled"         yaml:"minty_enabled"`
	MintyExportPath    *string   `json:"minty_export_path"     yaml:"minty_export_path"`
	Minty2xEnabled     *bool     `json:"minty_2x_enabled"      yaml:"minty_2x_enabled"`

	MemoryCacheEntries *int      `json:"memory_cache_entries" yaml:"memory_cache_entries"`
	QueueSize          *int      `json:"queue_size"           yaml:"queue_size"`
	InkscapeBinary     *string   `json:"inkscape_binary"      yaml:"inkscape_binary"`
	RenderTimeout      *Duration `json:"render_timeout"       yaml:"render_timeout"`
	RegionTimeout      *Duration `json:"region_timeout"       yaml:"region_timeout"`
	PlaceholderPath    *string   `json:"placeholder_path"     yaml:"placeholder_path"`
	CategoriesFile     *string   `json:"categories_file"      yaml:"categories_file"`
	DefaultCategory    *string   `json:"default_category"     yaml:"default_category"`
	SnapTolerance      *float64  `json:"snap_tolerance"       yaml:"snap_tolerance"`
}

// EnvDTO holds the ICONSMITH_* environment overrides.
// It is seeded from the file configuration so unset variables keep their value.
type EnvDTO struct {
	SupersampleEnabled bool     `env:"SUPERSAMPLE_ENABLED"`
	SupersampleFactor  int      `env:"SUPERSAMPLE_FACTOR"`
	DiskCacheEnabled   bool     `env:"DISK_CACHE_ENABLED"`
	DiskCacheDir       string   `env:"DISK_CACHE_DIR"`
	DiskCacheSizeLimit ByteSize `env:"DISK_CACHE_SIZE_LIMIT"`
	WorkerCount        int      `env:"WORKER_COUNT"`
	IconPageSize       int      `env:"ICON_PAGE_SIZE"`
	MaxSVGBackups      int      `env:"MAX_SVG_BACKUPS"`
	MintyEnabled       bool     `env:"MINTY_ENABLED"`
	MintyExportPath    string   `env:"MINTY_EXPORT_PATH"`
	Minty2xEnabled     bool     `env:"MINTY_2X_ENABLED"`
	MemoryCacheEntries int      `env:"MEMORY_CACHE_ENTRIES"`
	QueueSize          int      `env:"QUEUE_SIZE"`
	InkscapeBinary     string   `env:"INKSCAPE_BINARY"`
	RenderTimeout      Duration `env:"RENDER_TIMEOUT"`
	RegionTimeout      Duration `env:"REGION_TIMEOUT"`
	PlaceholderPath    string   `env:"PLACEHOLDER_PATH"`
	CategoriesFile     string   `env:"CATEGORIES_FILE"`
	DefaultCategory    string   `env:"DEFAULT_CATEGORY"`
	SnapTolerance      float64  `env:"SNAP_TOLERANCE"`
}
