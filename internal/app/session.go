package app

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/iconsmith/internal/adapters/diskcache"
	"go.trai.ch/iconsmith/internal/adapters/fs"
	"go.trai.ch/iconsmith/internal/adapters/memcache"
	"go.trai.ch/iconsmith/internal/adapters/watcher"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/iconsmith/internal/engine/dispatch"
	"go.trai.ch/iconsmith/internal/engine/export"
	"go.trai.ch/iconsmith/internal/engine/renderpool"
	uatomic "go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// Session is a configured render pipeline: caches, worker pool, dispatcher and exporter.
type Session struct {
	metrics    prometheus.Gatherer
	cfg        domain.Config
	categories domain.Categories
	logger     ports.Logger

	memory     *memcache.Cache
	disk       *diskcache.Cache
	rasterizer ports.Rasterizer
	resolver   ports.LayoutResolver
	dispatcher *dispatch.Dispatcher
	pool       *renderpool.Pool
	pipeline   *export.Pipeline
	hasher     *fs.Hasher
	walker     *fs.Walker

	closeOnce sync.Once
}

// PreviewRequest asks for one icon at one size.
type PreviewRequest struct {
	Path string
	Size int
}

// ExportRequest describes one export run.
type ExportRequest struct {
	Source    string
	ThemeRoot string
	// Sizes are used when Source is not a master document. Empty means the canonical sizes.
	Sizes []int
}

// WatchOptions configure Watch.
type WatchOptions struct {
	Sources   []string
	ThemeRoot string
	// Force exports even when master export is disabled in config.
	Force bool
	// Window is the debounce window. Zero means watcher.DefaultDebounceWindow.
	Window time.Duration
}

// MemoryStats are the memory tier counters since the session opened.
type MemoryStats struct {
	Entries  int
	Requests uint64
	Hits     uint64
	Removed  uint64
}

// Stats is a snapshot of cache and pool counters.
type Stats struct {
	Memory MemoryStats
	// Disk is nil when the session runs without a disk cache.
	Disk *diskcache.Stats
	Pool renderpool.Stats
}

// Config returns the effective configuration.
func (s *Session) Config() domain.Config {
	return s.cfg
}

// Sources yields the icon sources under root.
func (s *Session) Sources(root string) iter.Seq[string] {
	return s.walker.WalkSources(root, nil)
}

// Preview renders every request and hands each result to cb on the dispatcher loop.
// Requests wait for queue capacity, so every valid request is answered before Preview returns.
func (s *Session) Preview(ctx context.Context, reqs []PreviewRequest, cb domain.Callback) error {
	if len(reqs) == 0 {
		return nil
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	pending := uatomic.NewInt64(int64(len(reqs)))
	settle := func() {
		if pending.Dec() == 0 {
			stop()
		}
	}
	deliver := func(res domain.RenderResult) {
		if cb != nil {
			cb(res)
		}
		settle()
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		err := s.dispatcher.Run(gctx)
		if pending.Load() <= 0 {
			return nil
		}
		return err
	})
	g.Go(func() error {
		for _, req := range reqs {
			if err := s.pool.Submit(gctx, absPath(req.Path), req.Size, deliver); err != nil {
				if gctx.Err() != nil {
					return nil
				}
				s.logger.Warn("preview of " + req.Path + " rejected: " + err.Error())
				settle()
			}
		}
		return nil
	})

	return g.Wait()
}

// Resolve reads the master layout of source.
func (s *Session) Resolve(ctx context.Context, source string) (*domain.MasterLayout, error) {
	return s.resolver.Resolve(ctx, absPath(source), s.defaultContext(source))
}

// Export renders every output of one source. A plain icon that is not a master document
// is exported whole at the requested sizes.
func (s *Session) Export(
	ctx context.Context,
	req ExportRequest,
	sink ports.ProgressSink,
	progress *export.Progress,
) (domain.ExportOutcome, error) {
	source := absPath(req.Source)
	root := s.cfg.ExportRoot(req.ThemeRoot)
	factors := s.cfg.DensityFactors()

	layout, err := s.Resolve(ctx, source)
	var tasks []domain.ExportTask
	switch {
	case err == nil:
		tasks, err = export.Plan(layout, factors, root)
	case errors.Is(err, domain.ErrNotMasterDocument):
		sizes := req.Sizes
		if len(sizes) == 0 {
			sizes = domain.CanonicalSizes
		}
		s.logger.Debug(source + " is not a master document, exporting whole")
		tasks, err = export.PlanSizes(iconName(source), s.defaultContext(source), sizes, factors, root)
	}
	if err != nil {
		return domain.ExportOutcome{}, err
	}

	return s.pipeline.Run(ctx, source, tasks, sink, progress)
}

// Watch re-exports sources as they change until ctx is cancelled.
func (s *Session) Watch(ctx context.Context, opts WatchOptions, sink ports.ProgressSink) error {
	if !s.cfg.MasterEnabled && !opts.Force {
		return domain.ErrMasterExportDisabled
	}
	if len(opts.Sources) == 0 {
		return domain.ErrNoSources
	}

	var w ports.Watcher
	w, err := watcher.New(s.logger, s.hasher)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	window := opts.Window
	if window <= 0 {
		window = watcher.DefaultDebounceWindow
	}

	batches := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(window, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})

	sources := make([]string, 0, len(opts.Sources))
	for _, src := range opts.Sources {
		sources = append(sources, absPath(src))
	}
	if err := w.Start(ctx, sources...); err != nil {
		return err
	}
	s.logger.Info("watching " + strings.Join(sources, ", "))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for event := range w.Events() {
			switch event.Operation {
			case ports.OpRemove, ports.OpRename:
				_ = s.Invalidate(event.Path)
			default:
				debouncer.Add(event.Path)
			}
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case paths := <-batches:
				s.exportBatch(gctx, paths, opts.ThemeRoot, sink)
			}
		}
	})

	return g.Wait()
}

func (s *Session) exportBatch(ctx context.Context, paths []string, themeRoot string, sink ports.ProgressSink) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		_ = s.Invalidate(path)
		outcome, err := s.Export(ctx, ExportRequest{Source: path, ThemeRoot: themeRoot}, sink, nil)
		if err != nil {
			s.logger.Warn("export of " + path + " failed: " + err.Error())
			continue
		}
		if outcome.Failed > 0 {
			s.logger.Warn(path + ": some exports failed")
		}
	}
}

// Invalidate drops every cached bitmap of path from both tiers.
func (s *Session) Invalidate(path string) error {
	path = absPath(path)
	errs := []error{s.memory.Invalidate(path)}
	if s.disk != nil {
		errs = append(errs, s.disk.Invalidate(path))
	}
	return errors.Join(errs...)
}

// Prune trims the disk cache to its size limit.
func (s *Session) Prune() (diskcache.PruneResult, error) {
	if s.disk == nil {
		return diskcache.PruneResult{}, domain.ErrDiskCacheDisabled
	}
	return s.disk.Prune()
}

// Stats reports cache and pool counters.
func (s *Session) Stats() Stats {
	stats := Stats{
		Memory: s.memoryStats(),
		Pool:   s.pool.Stats(),
	}
	if s.disk != nil {
		disk := s.disk.Stats()
		stats.Disk = &disk
	}
	return stats
}

// Close stops the pool and flushes the disk cache. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.pool.Stop()
		s.dispatcher.Close()
		s.memory.Purge()
		if s.disk != nil {
			err = s.disk.Close()
		}
	})
	return err
}

// memoryStats reads the memory tier counters back from the session registry.
func (s *Session) memoryStats() MemoryStats {
	stats := MemoryStats{Entries: s.memory.Len()}
	families, err := s.metrics.Gather()
	if err != nil {
		s.logger.Warn("cannot gather memory cache metrics: " + err.Error())
		return stats
	}
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		switch mf.GetName() {
		case memcache.MetricRequests:
			stats.Requests = uint64(total)
		case memcache.MetricHits:
			stats.Hits = uint64(total)
		case memcache.MetricRemoved:
			stats.Removed = uint64(total)
		}
	}
	return stats
}

func (s *Session) defaultContext(source string) string {
	return s.categories.CategoryFor(iconName(source), s.cfg.DefaultCategory)
}

func iconName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
