// Package memcache implements the in-process bitmap cache tier.
package memcache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BitmapCache = (*Cache)(nil)

// Cache is a bounded, thread-safe LRU from fingerprint to bitmap.
type Cache struct {
	mtx sync.Mutex
	lru *lru.LRU[domain.Fingerprint, domain.Bitmap]

	requests prometheus.Counter
	hits     prometheus.Counter
	added    prometheus.Counter
	removed  prometheus.Counter
	current  prometheus.Gauge
}

// Counter names registered by New.
const (
	MetricRequests = "iconsmith_memory_cache_requests_total"
	MetricHits     = "iconsmith_memory_cache_hits_total"
	MetricRemoved  = "iconsmith_memory_cache_items_removed_total"
)

// New creates a cache holding at most maxEntries bitmaps.
// Metrics are registered with reg when it is non-nil.
func New(maxEntries int, reg prometheus.Registerer) (*Cache, error) {
	if maxEntries < 1 {
		return nil, zerr.With(zerr.New("memory cache needs at least one entry"), "max_entries", maxEntries)
	}

	c := &Cache{}
	c.requests = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: MetricRequests,
		Help: "Total number of lookups in the memory cache.",
	})
	c.hits = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: MetricHits,
		Help: "Total number of memory cache lookups that were a hit.",
	})
	c.added = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "iconsmith_memory_cache_items_added_total",
		Help: "Total number of bitmaps added to the memory cache.",
	})
	c.removed = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: MetricRemoved,
		Help: "Total number of bitmaps evicted or invalidated from the memory cache.",
	})
	c.current = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name: "iconsmith_memory_cache_items",
		Help: "Current number of bitmaps in the memory cache.",
	})

	l, err := lru.NewLRU(maxEntries, c.onEvict)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create memory cache")
	}
	c.lru = l
	return c, nil
}

func (c *Cache) onEvict(_ domain.Fingerprint, _ domain.Bitmap) {
	c.removed.Inc()
	c.current.Dec()
}

// Get returns the bitmap for fp and marks it most recently used.
func (c *Cache) Get(fp domain.Fingerprint) (domain.Bitmap, error) {
	c.requests.Inc()

	c.mtx.Lock()
	defer c.mtx.Unlock()

	bmp, ok := c.lru.Get(fp)
	if !ok {
		return domain.Bitmap{}, domain.ErrCacheMiss
	}
	c.hits.Inc()
	return bmp, nil
}

// Put stores bmp under fp, evicting the least recently used entry when full.
func (c *Cache) Put(fp domain.Fingerprint, bmp domain.Bitmap) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.lru.Contains(fp) {
		c.added.Inc()
		c.current.Inc()
	}
	c.lru.Add(fp, bmp)
	return nil
}

// Invalidate removes every entry for path regardless of size or modification time.
func (c *Cache) Invalidate(path string) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	for _, fp := range c.lru.Keys() {
		if fp.SamePath(path) {
			c.lru.Remove(fp)
		}
	}
	return nil
}

// Len returns the number of cached bitmaps.
func (c *Cache) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.lru.Len()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.lru.Purge()
}
