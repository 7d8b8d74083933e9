// Package app implements the application layer for iconsmith.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/iconsmith/internal/adapters/diskcache"
	"go.trai.ch/iconsmith/internal/adapters/fs"
	"go.trai.ch/iconsmith/internal/adapters/inkscape"
	"go.trai.ch/iconsmith/internal/adapters/memcache"
	"go.trai.ch/iconsmith/internal/adapters/svg"
	"go.trai.ch/iconsmith/internal/adapters/vector"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/iconsmith/internal/engine/dispatch"
	"go.trai.ch/iconsmith/internal/engine/export"
	"go.trai.ch/iconsmith/internal/engine/renderpool"
	"go.trai.ch/zerr"
)

// App holds the configuration-independent collaborators. Open turns it into a Session.
type App struct {
	loader        ports.ConfigLoader
	logger        ports.Logger
	fingerprinter ports.Fingerprinter
	tracer        ports.Tracer
	vector        *vector.Rasterizer
	hasher        *fs.Hasher
	walker        *fs.Walker
	primary       func(domain.Config) ports.Rasterizer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	logger ports.Logger,
	fingerprinter ports.Fingerprinter,
	tracer ports.Tracer,
	vec *vector.Rasterizer,
	hasher *fs.Hasher,
	walker *fs.Walker,
) *App {
	a := &App{
		loader:        loader,
		logger:        logger,
		fingerprinter: fingerprinter,
		tracer:        tracer,
		vector:        vec,
		hasher:        hasher,
		walker:        walker,
	}
	a.primary = func(cfg domain.Config) ports.Rasterizer {
		return inkscape.New(inkscape.OptionsFromConfig(cfg), a.logger, a.tracer)
	}
	return a
}

// WithRasterizer replaces the external rasterizer built from configuration.
func (a *App) WithRasterizer(build func(domain.Config) ports.Rasterizer) *App {
	a.primary = build
	return a
}

// OpenOptions tune a Session beyond what the config file says.
type OpenOptions struct {
	// ConfigPath is the configuration file to load. Empty means defaults and environment only.
	ConfigPath string
	// NoDiskCache keeps the session off the persistent cache.
	NoDiskCache bool
	// Master2x forces 2x master exports on.
	Master2x bool
}

// Open loads configuration and starts a render session. The caller must Close it.
func (a *App) Open(ctx context.Context, opts OpenOptions) (*Session, error) {
	cfg, err := a.loader.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Master2x {
		cfg.Master2xEnabled = true
	}

	categories, err := a.loader.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		a.logger.Warn("categories unavailable, using default category: " + err.Error())
		categories = domain.Categories{}
	}

	registry := prometheus.NewRegistry()
	memory, err := memcache.New(cfg.MemoryCacheEntries, registry)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create memory cache")
	}

	s := &Session{
		metrics:    registry,
		cfg:        cfg,
		categories: categories,
		logger:     a.logger,
		memory:     memory,
		hasher:     a.hasher,
		walker:     a.walker,
	}

	if cfg.DiskCacheEnabled && !opts.NoDiskCache {
		disk, err := diskcache.New(cfg.DiskCacheDir, cfg.DiskCacheSizeLimit, a.logger)
		if err != nil {
			a.logger.Warn("disk cache unavailable, continuing without it: " + err.Error())
		} else {
			s.disk = disk
		}
	}

	s.rasterizer = vector.NewChain(a.primary(cfg), a.vector, a.logger)
	s.resolver = svg.NewResolver(cfg.SnapTolerance, a.logger)
	s.dispatcher = dispatch.New(a.logger)

	caches := []ports.BitmapCache{memory}
	var diskTier ports.BitmapCache
	if s.disk != nil {
		diskTier = s.disk
		caches = append(caches, s.disk)
	}

	s.pool = renderpool.New(
		renderpool.Options{Workers: cfg.WorkerCount, QueueSize: cfg.QueueSize},
		renderpool.Deps{
			Fingerprinter: a.fingerprinter,
			Memory:        memory,
			Disk:          diskTier,
			Rasterizer:    s.rasterizer,
			Deliverer:     s.dispatcher,
			Logger:        a.logger,
			Tracer:        a.tracer,
			Placeholder:   s.renderPlaceholder,
		},
	)
	s.pipeline = export.New(s.rasterizer, a.logger, caches...)
	s.pool.Start(ctx)

	return s, nil
}
