package diskcache_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/iconsmith/internal/adapters/diskcache"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(time.Second)
	return f.now
}

func newCache(t *testing.T, dir string, limit int64) *diskcache.Cache {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c, err := diskcache.New(dir, limit, log, diskcache.WithClock(clock.Now))
	require.NoError(t, err)
	return c
}

func pngBitmap(t *testing.T, size int) domain.Bitmap {
	t.Helper()
	bmp, err := domain.BitmapFromImage(imaging.New(size, size, color.NRGBA{R: 200, A: 255}))
	require.NoError(t, err)
	return bmp
}

func rawBitmap(n int) domain.Bitmap {
	return domain.Bitmap{Width: 1, Height: 1, Data: bytes.Repeat([]byte{1}, n)}
}

func TestCache_PutGet(t *testing.T) {
	dir := t.TempDir()
	c := newCache(t, dir, 1<<20)

	fp := domain.NewFingerprint("/icons/a.svg", 16, 42)
	_, err := c.Get(fp)
	require.ErrorIs(t, err, domain.ErrCacheMiss)

	bmp := pngBitmap(t, 16)
	require.NoError(t, c.Put(fp, bmp))

	got, err := c.Get(fp)
	require.NoError(t, err)
	assert.Equal(t, 16, got.Width)
	assert.Equal(t, 16, got.Height)
	assert.Equal(t, bmp.Data, got.Data)

	assert.FileExists(t, filepath.Join(dir, fp.Key()+".png"))
	assert.FileExists(t, filepath.Join(dir, diskcache.IndexFile))

	// A fresh handle on the same directory sees the persisted entry.
	reopened := newCache(t, dir, 1<<20)
	_, err = reopened.Get(fp)
	require.NoError(t, err)
}

func TestCache_ModTimeChangeMisses(t *testing.T) {
	c := newCache(t, t.TempDir(), 1<<20)

	require.NoError(t, c.Put(domain.NewFingerprint("/icons/a.svg", 16, 1), pngBitmap(t, 16)))
	_, err := c.Get(domain.NewFingerprint("/icons/a.svg", 16, 2))
	require.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestCache_InvalidateRemovesEverySize(t *testing.T) {
	dir := t.TempDir()
	c := newCache(t, dir, 1<<20)

	for _, size := range []int{16, 24, 48} {
		require.NoError(t, c.Put(domain.NewFingerprint("/icons/a.svg", size, 1), pngBitmap(t, 4)))
	}
	keep := domain.NewFingerprint("/icons/b.svg", 16, 1)
	require.NoError(t, c.Put(keep, pngBitmap(t, 4)))

	require.NoError(t, c.Invalidate("/icons/a.svg"))

	for _, size := range []int{16, 24, 48} {
		fp := domain.NewFingerprint("/icons/a.svg", size, 1)
		_, err := c.Get(fp)
		require.ErrorIs(t, err, domain.ErrCacheMiss)
		assert.NoFileExists(t, filepath.Join(dir, fp.Key()+".png"))
	}
	_, err := c.Get(keep)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestCache_PruneEvictsOldestUntilWithinBudget(t *testing.T) {
	dir := t.TempDir()
	roomy := newCache(t, dir, 1<<20)

	oldest := domain.NewFingerprint("/icons/a.svg", 16, 1)
	middle := domain.NewFingerprint("/icons/b.svg", 16, 1)
	newest := domain.NewFingerprint("/icons/c.svg", 16, 1)
	require.NoError(t, roomy.Put(oldest, rawBitmap(100)))
	require.NoError(t, roomy.Put(middle, rawBitmap(80)))
	require.NoError(t, roomy.Put(newest, rawBitmap(50)))
	require.NoError(t, roomy.Close())

	tight := newCache(t, dir, 150)
	res, err := tight.Prune()
	require.NoError(t, err)

	assert.Equal(t, 1, res.Evicted)
	assert.Equal(t, int64(100), res.Freed)
	assert.Equal(t, int64(130), res.Remaining)
	assert.Equal(t, diskcache.Stats{Entries: 2, Bytes: 130, Limit: 150}, tight.Stats())
	assert.NoFileExists(t, filepath.Join(dir, oldest.Key()+".png"))
	assert.FileExists(t, filepath.Join(dir, middle.Key()+".png"))
	assert.FileExists(t, filepath.Join(dir, newest.Key()+".png"))
}

func TestCache_GetRefreshesRecency(t *testing.T) {
	dir := t.TempDir()
	roomy := newCache(t, dir, 1<<20)

	a := domain.NewFingerprint("/icons/a.svg", 16, 1)
	b := domain.NewFingerprint("/icons/b.svg", 16, 1)
	require.NoError(t, roomy.Put(a, pngBitmap(t, 8)))
	require.NoError(t, roomy.Put(b, pngBitmap(t, 8)))

	// Reading a makes b the least recently used.
	_, err := roomy.Get(a)
	require.NoError(t, err)
	require.NoError(t, roomy.Close())

	sizeA := roomy.Stats().Bytes / 2
	tight := newCache(t, dir, sizeA+1)
	_, err = tight.Prune()
	require.NoError(t, err)

	_, err = tight.Get(a)
	require.NoError(t, err)
	_, err = tight.Get(b)
	require.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestCache_PutOverBudgetPrunesInBackground(t *testing.T) {
	dir := t.TempDir()
	c := newCache(t, dir, 100)

	for i := range 5 {
		require.NoError(t, c.Put(domain.NewFingerprint(fmt.Sprintf("/icons/%d.svg", i), 16, 1), rawBitmap(60)))
	}
	require.NoError(t, c.Close())

	stats := c.Stats()
	assert.LessOrEqual(t, stats.Bytes, int64(100))
	assert.Equal(t, 1, stats.Entries)
}

func TestCache_MissingBlobIsPrunedLazily(t *testing.T) {
	dir := t.TempDir()
	c := newCache(t, dir, 1<<20)

	fp := domain.NewFingerprint("/icons/a.svg", 16, 1)
	require.NoError(t, c.Put(fp, pngBitmap(t, 4)))
	require.NoError(t, os.Remove(filepath.Join(dir, fp.Key()+".png")))

	_, err := c.Get(fp)
	require.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCache_PruneDropsMissingBlobs(t *testing.T) {
	dir := t.TempDir()
	c := newCache(t, dir, 1<<20)

	fp := domain.NewFingerprint("/icons/a.svg", 16, 1)
	require.NoError(t, c.Put(fp, pngBitmap(t, 4)))
	require.NoError(t, os.Remove(filepath.Join(dir, fp.Key()+".png")))

	res, err := c.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Missing)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCache_CorruptBlobIsAMiss(t *testing.T) {
	dir := t.TempDir()
	c := newCache(t, dir, 1<<20)

	fp := domain.NewFingerprint("/icons/a.svg", 16, 1)
	require.NoError(t, c.Put(fp, rawBitmap(10)))

	_, err := c.Get(fp)
	require.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.NoFileExists(t, filepath.Join(dir, fp.Key()+".png"))
}

func TestCache_MalformedIndexHealsToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, diskcache.IndexFile), []byte("{not json"), 0o600))

	c := newCache(t, dir, 1<<20)
	assert.Equal(t, 0, c.Stats().Entries)

	fp := domain.NewFingerprint("/icons/a.svg", 16, 1)
	require.NoError(t, c.Put(fp, pngBitmap(t, 4)))
	_, err := c.Get(fp)
	require.NoError(t, err)
}

func TestCache_LegacyListIndexIsRekeyed(t *testing.T) {
	dir := t.TempDir()
	legacy := `[{"fname": "abc.png", "size": 3, "last_used": 1}, {"fname": "", "size": 9}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, diskcache.IndexFile), []byte(legacy), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.png"), []byte("abc"), 0o600))

	c := newCache(t, dir, 1<<20)
	assert.Equal(t, diskcache.Stats{Entries: 1, Bytes: 3, Limit: 1 << 20}, c.Stats())

	res, err := c.Prune()
	require.NoError(t, err)
	assert.Equal(t, 0, res.Missing)

	// The next write persists the healed map shape.
	require.NoError(t, c.Put(domain.NewFingerprint("/icons/a.svg", 16, 1), pngBitmap(t, 4)))
	data, err := os.ReadFile(filepath.Join(dir, diskcache.IndexFile))
	require.NoError(t, err)
	var idx diskcache.Index
	require.NoError(t, json.Unmarshal(data, &idx))
	assert.Contains(t, idx, "abc")
	assert.Len(t, idx, 2)
}

func TestCache_InvalidateDropsEntriesWithoutSource(t *testing.T) {
	dir := t.TempDir()
	legacy := `[{"fname": "abc.png", "size": 3, "last_used": 1}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, diskcache.IndexFile), []byte(legacy), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.png"), []byte("abc"), 0o600))

	c := newCache(t, dir, 1<<20)
	kept := domain.NewFingerprint("/icons/b.svg", 16, 1)
	require.NoError(t, c.Put(kept, pngBitmap(t, 4)))

	require.NoError(t, c.Invalidate("/icons/a.svg"))

	assert.Equal(t, 1, c.Stats().Entries)
	assert.NoFileExists(t, filepath.Join(dir, "abc.png"))
	_, err := c.Get(kept)
	require.NoError(t, err)
}

func TestCache_RejectsEmptyBitmap(t *testing.T) {
	c := newCache(t, t.TempDir(), 1<<20)
	require.Error(t, c.Put(domain.NewFingerprint("/icons/a.svg", 16, 1), domain.Bitmap{}))
}

func TestCache_ConcurrentPutGet(t *testing.T) {
	c := newCache(t, t.TempDir(), 1<<20)
	bmp := pngBitmap(t, 4)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fp := domain.NewFingerprint(fmt.Sprintf("/icons/%d.svg", i), 16, 1)
			assert.NoError(t, c.Put(fp, bmp))
			_, err := c.Get(fp)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.NoError(t, c.Close())

	assert.Equal(t, 8, c.Stats().Entries)
}
