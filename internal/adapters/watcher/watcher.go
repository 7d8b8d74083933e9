package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 100

// ContentHasher fingerprints file contents so that saves without changes can be dropped.
type ContentHasher interface {
	ComputeFileHash(path string) (uint64, error)
}

// Watcher reports edits to icon sources using fsnotify.
//
// Explicit files are observed through their parent directory so that editors which save by
// writing a temporary file and renaming it over the original are still seen. Directories are
// watched recursively and report every .svg file below them.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	hasher    ContentHasher
	events    chan ports.WatchEvent

	mu     sync.Mutex
	files  map[string]struct{}
	trees  []string
	hashes map[string]uint64
}

// New creates a Watcher. hasher may be nil to report every write.
func New(logger ports.Logger, hasher ContentHasher) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, domain.Classify(domain.ErrWatcherFailed, err)
	}
	return &Watcher{
		fsWatcher: fw,
		logger:    logger,
		hasher:    hasher,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
		files:     make(map[string]struct{}),
		hashes:    make(map[string]uint64),
	}, nil
}

// Start begins watching files, which may name source files or directories.
func (w *Watcher) Start(ctx context.Context, files ...string) error {
	dirs := make(map[string]struct{})

	w.mu.Lock()
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.mu.Unlock()
			return domain.Classify(domain.ErrWatcherFailed, zerr.With(err, "path", f))
		}

		info, err := os.Stat(abs)
		if err != nil {
			w.mu.Unlock()
			return domain.Classify(domain.ErrWatcherFailed, zerr.With(err, "path", abs))
		}

		if info.IsDir() {
			w.trees = append(w.trees, abs)
			for dir := range watchRecursively(abs) {
				dirs[dir] = struct{}{}
			}
			continue
		}

		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
		w.remember(abs)
	}
	w.mu.Unlock()

	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return domain.Classify(domain.ErrWatcherFailed, zerr.With(err, "dir", dir))
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of change events. It ends when the watcher stops.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// watchRecursively yields root and every non-hidden directory below it.
func watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // skip unreadable directories
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			w.followNewDirectory(event)

			watchEvent, ok := w.convertEvent(event)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(fmt.Sprintf("watcher: file system error: %v", err))
		}
	}
}

// followNewDirectory extends recursive watches to directories created under a watched tree.
func (w *Watcher) followNewDirectory(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) || !w.inTree(event.Name) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() || strings.HasPrefix(info.Name(), ".") {
		return
	}
	for dir := range watchRecursively(event.Name) {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.logger.Warn(fmt.Sprintf("watcher: cannot watch %s: %v", dir, err))
		}
	}
}

// convertEvent maps an fsnotify event onto a WatchEvent, dropping irrelevant paths and
// writes that left the content unchanged.
func (w *Watcher) convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	path := event.Name
	if !w.relevant(path) {
		return ports.WatchEvent{}, false
	}

	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}

	if (op == ports.OpWrite || op == ports.OpCreate) && !w.contentChanged(path) {
		w.logger.Debug("watcher: unchanged content, ignoring " + path)
		return ports.WatchEvent{}, false
	}
	if op == ports.OpRemove || op == ports.OpRename {
		w.forget(path)
	}
	return ports.WatchEvent{Path: path, Operation: op}, true
}

func (w *Watcher) relevant(path string) bool {
	w.mu.Lock()
	_, explicit := w.files[path]
	w.mu.Unlock()
	if explicit {
		return true
	}
	return strings.EqualFold(filepath.Ext(path), ".svg") && w.inTree(path)
}

func (w *Watcher) inTree(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.trees {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// contentChanged reports whether path hashes differently from the last time it was seen.
// Without a hasher, or when the file cannot be read, every event counts as a change.
func (w *Watcher) contentChanged(path string) bool {
	if w.hasher == nil {
		return true
	}
	sum, err := w.hasher.ComputeFileHash(path)
	if err != nil {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	prev, seen := w.hashes[path]
	w.hashes[path] = sum
	return !seen || prev != sum
}

// remember records the current content hash of path. Callers hold w.mu.
func (w *Watcher) remember(path string) {
	if w.hasher == nil {
		return
	}
	if sum, err := w.hasher.ComputeFileHash(path); err == nil {
		w.hashes[path] = sum
	}
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.hashes, path)
	w.mu.Unlock()
}
