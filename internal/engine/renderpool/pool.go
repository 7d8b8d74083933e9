// Package renderpool implements the fixed pool of background render workers.
package renderpool

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
	uatomic "go.uber.org/atomic"
	"golang.org/x/sync/singleflight"
)

// PlaceholderFunc renders the stand-in bitmap delivered when a request cannot be served.
type PlaceholderFunc func(ctx context.Context, size int) (domain.Bitmap, error)

// Options sizes the pool.
type Options struct {
	Workers   int
	QueueSize int
}

// Deps are the collaborators of a Pool. Disk may be nil when the disk tier is disabled,
// and Placeholder may be nil to fall back to a transparent bitmap.
type Deps struct {
	Fingerprinter ports.Fingerprinter
	Memory        ports.BitmapCache
	Disk          ports.BitmapCache
	Rasterizer    ports.Rasterizer
	Deliverer     ports.Deliverer
	Logger        ports.Logger
	Tracer        ports.Tracer
	Placeholder   PlaceholderFunc
}

// Stats counts results by the tier that produced them.
type Stats struct {
	Enqueued    int64
	Memory      int64
	Disk        int64
	Rendered    int64
	Placeholder int64
}

// Pool resolves preview requests through the cache tiers and a fixed set of workers.
// Every accepted request produces exactly one completion on the Deliverer.
type Pool struct {
	deps    Deps
	workers int
	queue   chan domain.RenderTask
	group   singleflight.Group

	mu       sync.RWMutex
	stopping chan struct{}
	stopOnce sync.Once
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	enqueued    uatomic.Int64
	fromMemory  uatomic.Int64
	fromDisk    uatomic.Int64
	rendered    uatomic.Int64
	placeholder uatomic.Int64
}

// New creates a Pool. Workers do not run until Start.
func New(opts Options, deps Deps) *Pool {
	if opts.Workers < 1 {
		opts.Workers = domain.DefaultWorkerCount
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = domain.DefaultQueueSize
	}
	return &Pool{
		deps:     deps,
		workers:  opts.Workers,
		queue:    make(chan domain.RenderTask, opts.QueueSize),
		stopping: make(chan struct{}),
	}
}

// Enqueue requests the bitmap of path at size pixels without blocking.
//
// A memory hit is posted immediately. Everything else, including a source that cannot be
// inspected, is queued for a worker. Errors mean no completion will be posted:
// domain.ErrInvalidSize, domain.ErrQueueFull or domain.ErrPoolStopped.
func (p *Pool) Enqueue(path string, size int, cb domain.Callback) error {
	return p.submit(context.Background(), path, size, cb, false)
}

// Submit is Enqueue for callers that may wait: when the queue is full it blocks until a
// worker frees a slot, ctx is done, or the pool stops.
func (p *Pool) Submit(ctx context.Context, path string, size int, cb domain.Callback) error {
	return p.submit(ctx, path, size, cb, true)
}

func (p *Pool) submit(ctx context.Context, path string, size int, cb domain.Callback, wait bool) error {
	if size <= 0 {
		return domain.Classify(domain.ErrInvalidSize, zerr.With(zerr.New("size must be positive"), "size", size))
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return domain.ErrPoolStopped
	}

	task, hit := p.prepare(path, size, cb)
	if hit {
		return nil
	}

	if !wait {
		select {
		case p.queue <- task:
			p.enqueued.Inc()
			return nil
		default:
			return domain.Classify(domain.ErrQueueFull, zerr.With(zerr.New("queue at capacity"), "capacity", cap(p.queue)))
		}
	}

	select {
	case p.queue <- task:
		p.enqueued.Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopping:
		return domain.ErrPoolStopped
	}
}

// prepare fingerprints the request and answers it from memory when possible.
func (p *Pool) prepare(path string, size int, cb domain.Callback) (domain.RenderTask, bool) {
	fp, err := p.deps.Fingerprinter.Fingerprint(path, size)
	if err != nil {
		p.deps.Logger.Warn(fmt.Sprintf("cannot fingerprint %s: %v", path, err))
		fp = domain.Fingerprint{Path: domain.NewInternedString(path), Size: size}
		return domain.RenderTask{Fingerprint: fp, Callback: cb, Err: err}, false
	}

	if bmp, err := p.deps.Memory.Get(fp); err == nil {
		p.enqueued.Inc()
		p.fromMemory.Inc()
		p.deps.Deliverer.Post(cb, domain.RenderResult{Fingerprint: fp, Bitmap: bmp, Source: domain.SourceMemory})
		return domain.RenderTask{}, true
	}

	return domain.RenderTask{Fingerprint: fp, Callback: cb}, false
}

// Start launches the workers. Calling Start more than once has no effect.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	for i := range p.workers {
		p.wg.Add(1)
		go p.work(ctx, i)
	}
}

// Stop rejects new requests, lets the workers drain the queue, and waits for them.
// Requests still queued when the pool was never started are answered with a placeholder.
func (p *Pool) Stop() {
	// Blocked Submit calls hold the read lock until stopping closes.
	p.stopOnce.Do(func() { close(p.stopping) })

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	close(p.queue)
	p.mu.Unlock()

	if !started {
		for task := range p.queue {
			cause := task.Err
			if cause == nil {
				cause = domain.ErrPoolStopped
			}
			p.deps.Deliverer.Post(task.Callback, p.placeholderResult(context.Background(), task.Fingerprint, cause))
		}
		return
	}

	p.wg.Wait()
	p.cancel()
}

// Stats returns result counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Enqueued:    p.enqueued.Load(),
		Memory:      p.fromMemory.Load(),
		Disk:        p.fromDisk.Load(),
		Rendered:    p.rendered.Load(),
		Placeholder: p.placeholder.Load(),
	}
}

func (p *Pool) work(ctx context.Context, id int) {
	defer p.wg.Done()
	p.deps.Logger.Debug(fmt.Sprintf("render worker %d started", id))
	for task := range p.queue {
		if task.Err != nil {
			p.deps.Deliverer.Post(task.Callback, p.placeholderResult(ctx, task.Fingerprint, task.Err))
			continue
		}
		p.deps.Deliverer.Post(task.Callback, p.resolve(ctx, task.Fingerprint))
	}
}

// resolve coalesces concurrent requests for the same fingerprint into one lookup.
func (p *Pool) resolve(ctx context.Context, fp domain.Fingerprint) domain.RenderResult {
	v, _, _ := p.group.Do(fp.Key(), func() (any, error) {
		return p.lookupOrRender(ctx, fp), nil
	})
	res, _ := v.(domain.RenderResult)
	return res
}

func (p *Pool) lookupOrRender(ctx context.Context, fp domain.Fingerprint) domain.RenderResult {
	ctx, span := p.deps.Tracer.Start(ctx, "render", ports.WithKind("render"))
	defer span.End()
	span.SetAttribute("source", fp.Path.String())
	span.SetAttribute("size", fp.Size)

	if bmp, err := p.deps.Memory.Get(fp); err == nil {
		p.fromMemory.Inc()
		span.SetAttribute("tier", string(domain.SourceMemory))
		return domain.RenderResult{Fingerprint: fp, Bitmap: bmp, Source: domain.SourceMemory}
	}

	if p.deps.Disk != nil {
		bmp, err := p.deps.Disk.Get(fp)
		switch {
		case err == nil:
			p.store(p.deps.Memory, fp, bmp)
			p.fromDisk.Inc()
			span.SetAttribute("tier", string(domain.SourceDisk))
			return domain.RenderResult{Fingerprint: fp, Bitmap: bmp, Source: domain.SourceDisk}
		case !errors.Is(err, domain.ErrCacheMiss):
			p.deps.Logger.Warn(fmt.Sprintf("disk cache read for %s failed: %v", fp, err))
		}
	}

	bmp, err := p.deps.Rasterizer.Render(ctx, fp.Path.String(), fp.Size)
	if err != nil {
		span.RecordError(err)
		p.deps.Logger.Warn(fmt.Sprintf("render of %s failed, using placeholder: %v", fp, err))
		return p.placeholderResult(ctx, fp, err)
	}

	p.store(p.deps.Memory, fp, bmp)
	if p.deps.Disk != nil {
		p.store(p.deps.Disk, fp, bmp)
	}
	p.rendered.Inc()
	span.SetAttribute("tier", string(domain.SourceRender))
	return domain.RenderResult{Fingerprint: fp, Bitmap: bmp, Source: domain.SourceRender}
}

func (p *Pool) store(cache ports.BitmapCache, fp domain.Fingerprint, bmp domain.Bitmap) {
	if err := cache.Put(fp, bmp); err != nil {
		p.deps.Logger.Warn(fmt.Sprintf("cache write for %s failed: %v", fp, err))
	}
}

// placeholderResult never touches the cache tiers.
func (p *Pool) placeholderResult(ctx context.Context, fp domain.Fingerprint, cause error) domain.RenderResult {
	p.placeholder.Inc()
	return domain.RenderResult{
		Fingerprint: fp,
		Bitmap:      p.placeholderBitmap(ctx, fp.Size),
		Source:      domain.SourcePlaceholder,
		Err:         cause,
	}
}

func (p *Pool) placeholderBitmap(ctx context.Context, size int) domain.Bitmap {
	if p.deps.Placeholder != nil {
		bmp, err := p.deps.Placeholder(ctx, size)
		if err == nil && !bmp.IsEmpty() {
			return bmp
		}
		if err != nil {
			p.deps.Logger.Warn(fmt.Sprintf("placeholder render failed: %v", err))
		}
	}
	return Blank(size)
}

// Blank returns a fully transparent size x size bitmap.
func Blank(size int) domain.Bitmap {
	if size <= 0 {
		size = 1
	}
	bmp, err := domain.BitmapFromImage(imaging.New(size, size, color.NRGBA{}))
	if err != nil {
		return domain.Bitmap{Width: size, Height: size}
	}
	return bmp
}
