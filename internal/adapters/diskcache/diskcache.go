// Package diskcache implements the persistent bitmap cache tier: PNG blobs plus a JSON side index
// bounded by a byte budget.
package diskcache

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"image"
	_ "image/png" // PNG header decoding for cached blobs.
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/natefinch/atomic"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
	uatomic "go.uber.org/atomic"
)

const (
	// IndexFile is the name of the side index inside the cache directory.
	IndexFile = "index.json"
	blobExt   = ".png"
)

var _ ports.BitmapCache = (*Cache)(nil)

// Stats describes the current cache footprint.
type Stats struct {
	Entries int
	Bytes   int64
	Limit   int64
}

// PruneResult summarizes one prune pass.
type PruneResult struct {
	Missing   int
	Evicted   int
	Freed     int64
	Remaining int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the time source used for last-used stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// Cache is a size-bounded LRU of PNG blobs persisted under a directory.
type Cache struct {
	dir    string
	limit  int64
	logger ports.Logger
	now    func() time.Time

	// mu guards every read-modify-write of the index file.
	mu sync.Mutex
	// pruneMu serializes prune passes.
	pruneMu sync.Mutex

	stateMu     sync.Mutex
	closed      bool
	pruneQueued uatomic.Bool
	wg          sync.WaitGroup
}

// New opens (creating if needed) the cache directory.
func New(dir string, limit int64, logger ports.Logger, opts ...Option) (*Cache, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, domain.Classify(domain.ErrCacheDirCreateFailed, zerr.With(err, "dir", dir))
	}
	c := &Cache{
		dir:    filepath.Clean(dir),
		limit:  limit,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) indexPath() string {
	return filepath.Join(c.dir, IndexFile)
}

func (c *Cache) blobPath(fname string) string {
	return filepath.Join(c.dir, fname)
}

func (c *Cache) stamp() float64 {
	return float64(c.now().UnixNano()) / float64(time.Second)
}

// loadIndexLocked reads the index, logging rather than failing on corruption. Caller holds mu.
func (c *Cache) loadIndexLocked() Index {
	idx, err := readIndex(c.indexPath())
	if err != nil {
		c.logger.Warn(fmt.Sprintf("disk cache index reset: %v", err))
	}
	return idx
}

// update runs fn against the current index and persists the result when fn reports a change.
func (c *Cache) update(fn func(Index) bool) (Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.loadIndexLocked()
	if !fn(idx) {
		return idx, nil
	}
	return idx, writeIndex(c.indexPath(), idx)
}

// Get returns the cached bitmap for fp and refreshes its last-used stamp.
// Entries whose blob is missing or unreadable are dropped and reported as a miss.
func (c *Cache) Get(fp domain.Fingerprint) (domain.Bitmap, error) {
	key := fp.Key()

	c.mu.Lock()
	entry, ok := c.loadIndexLocked()[key]
	c.mu.Unlock()
	if !ok {
		return domain.Bitmap{}, domain.ErrCacheMiss
	}

	data, err := os.ReadFile(c.blobPath(entry.Fname))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn(fmt.Sprintf("disk cache blob unreadable: %s: %v", entry.Fname, err))
		}
		c.forget(key, entry.Fname)
		return domain.Bitmap{}, domain.ErrCacheMiss
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		c.logger.Warn(fmt.Sprintf("disk cache blob corrupt: %s: %v", entry.Fname, err))
		c.forget(key, entry.Fname)
		_ = os.Remove(c.blobPath(entry.Fname))
		return domain.Bitmap{}, domain.ErrCacheMiss
	}

	if _, err := c.update(func(idx Index) bool {
		e, ok := idx[key]
		if !ok {
			return false
		}
		e.LastUsed = c.stamp()
		idx[key] = e
		return true
	}); err != nil {
		c.logger.Warn(fmt.Sprintf("disk cache last-used refresh failed: %v", err))
	}

	return domain.Bitmap{Width: cfg.Width, Height: cfg.Height, Data: data}, nil
}

// forget removes key from the index if it still points at fname.
func (c *Cache) forget(key, fname string) {
	if _, err := c.update(func(idx Index) bool {
		if e, ok := idx[key]; ok && e.Fname == fname {
			delete(idx, key)
			return true
		}
		return false
	}); err != nil {
		c.logger.Warn(fmt.Sprintf("disk cache index update failed: %v", err))
	}
}

// Put writes the blob atomically, records it in the index and schedules a prune when over budget.
func (c *Cache) Put(fp domain.Fingerprint, bmp domain.Bitmap) error {
	if bmp.IsEmpty() {
		return zerr.With(zerr.New("refusing to cache empty bitmap"), "fingerprint", fp.String())
	}

	key := fp.Key()
	fname := key + blobExt
	if err := atomic.WriteFile(c.blobPath(fname), bytes.NewReader(bmp.Data)); err != nil {
		return domain.Classify(domain.ErrBlobWriteFailed, zerr.With(err, "fname", fname))
	}

	idx, err := c.update(func(idx Index) bool {
		idx[key] = IndexEntry{
			Fname:    fname,
			Size:     bmp.Bytes(),
			LastUsed: c.stamp(),
			Source:   fp.Path.String(),
			Px:       fp.Size,
			MTime:    fp.ModTime,
		}
		return true
	})
	if err != nil {
		return err
	}

	if idx.TotalBytes() > c.limit {
		c.schedulePrune()
	}
	return nil
}

// Invalidate removes every entry and blob recorded for the source path, together with
// entries healed from a legacy index that carry no source and so could belong to any path.
func (c *Cache) Invalidate(path string) error {
	var victims []string
	_, err := c.update(func(idx Index) bool {
		for key, e := range idx {
			if e.Source == path || e.Source == "" {
				victims = append(victims, e.Fname)
				delete(idx, key)
			}
		}
		return len(victims) > 0
	})
	c.removeBlobs(victims)
	return err
}

// Stats reports the indexed entry count and byte total.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	idx := c.loadIndexLocked()
	c.mu.Unlock()
	return Stats{Entries: len(idx), Bytes: idx.TotalBytes(), Limit: c.limit}
}

// Prune drops entries whose blob is gone, then evicts least recently used entries
// until the indexed total fits the budget.
func (c *Cache) Prune() (PruneResult, error) {
	c.pruneMu.Lock()
	defer c.pruneMu.Unlock()

	c.mu.Lock()
	snapshot := c.loadIndexLocked()
	c.mu.Unlock()

	missing := make(map[string]string)
	for key, e := range snapshot {
		if _, err := os.Stat(c.blobPath(e.Fname)); errors.Is(err, fs.ErrNotExist) {
			missing[key] = e.Fname
		}
	}

	var res PruneResult
	var victims []string
	idx, err := c.update(func(idx Index) bool {
		changed := false
		for key, fname := range missing {
			if e, ok := idx[key]; ok && e.Fname == fname {
				delete(idx, key)
				res.Missing++
				changed = true
			}
		}

		total := idx.TotalBytes()
		if total <= c.limit {
			return changed
		}

		keys := make([]string, 0, len(idx))
		for key := range idx {
			keys = append(keys, key)
		}
		slices.SortFunc(keys, func(a, b string) int {
			return cmp.Or(cmp.Compare(idx[a].LastUsed, idx[b].LastUsed), cmp.Compare(a, b))
		})

		for _, key := range keys {
			if total <= c.limit {
				break
			}
			e := idx[key]
			total -= e.Size
			res.Freed += e.Size
			res.Evicted++
			victims = append(victims, e.Fname)
			delete(idx, key)
		}
		return true
	})
	res.Remaining = idx.TotalBytes()
	if err != nil {
		return res, err
	}

	c.removeBlobs(victims)

	if res.Evicted > 0 || res.Missing > 0 {
		c.logger.Debug(fmt.Sprintf("disk cache pruned: %d evicted (%s), %d missing, %s of %s in use",
			res.Evicted, humanize.IBytes(uint64(res.Freed)), res.Missing, //nolint:gosec // sizes are non-negative
			humanize.IBytes(uint64(res.Remaining)), humanize.IBytes(uint64(c.limit)))) //nolint:gosec // sizes are non-negative
	}
	return res, nil
}

func (c *Cache) removeBlobs(fnames []string) {
	for _, fname := range fnames {
		if err := os.Remove(c.blobPath(fname)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn(fmt.Sprintf("disk cache blob removal failed: %s: %v", fname, err))
		}
	}
}

// schedulePrune starts a background prune unless one is already queued or the cache is closed.
func (c *Cache) schedulePrune() {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if c.closed || !c.pruneQueued.CompareAndSwap(false, true) {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.pruneQueued.Store(false)
		if _, err := c.Prune(); err != nil {
			c.logger.Warn(fmt.Sprintf("disk cache prune failed: %v", err))
		}
	}()
}

// Close waits for background prunes and runs a final pass.
func (c *Cache) Close() error {
	c.stateMu.Lock()
	if c.closed {
		c.stateMu.Unlock()
		return nil
	}
	c.closed = true
	c.stateMu.Unlock()

	c.wg.Wait()
	_, err := c.Prune()
	return err
}
