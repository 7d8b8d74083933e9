// Package dispatch implements the presentation loop that owns every render completion.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Deliverer = (*Dispatcher)(nil)

type delivery struct {
	cb  domain.Callback
	res domain.RenderResult
}

// Dispatcher is an unbounded FIFO of completions drained by a single Run loop.
// Callbacks only ever run on the goroutine executing Run.
type Dispatcher struct {
	logger ports.Logger

	mu     sync.Mutex
	queue  []delivery
	closed bool
	wake   chan struct{}
}

// New creates a Dispatcher.
func New(logger ports.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Post queues cb(res). It never blocks and never calls cb itself.
// Posts after Close are dropped.
func (d *Dispatcher) Post(cb domain.Callback, res domain.RenderResult) {
	if cb == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Debug("dispatch: dropping completion for " + res.Fingerprint.String() + " after close")
		return
	}
	d.queue = append(d.queue, delivery{cb: cb, res: res})
	d.mu.Unlock()

	d.signal()
}

// Pending returns the number of queued completions.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Close stops accepting completions. Run delivers what is already queued and returns.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.signal()
}

// Run delivers completions in post order until Close has been called and the queue is empty,
// or until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		batch, closed := d.take()
		for i, item := range batch {
			if err := ctx.Err(); err != nil {
				d.requeue(batch[i:])
				return err
			}
			d.deliver(item)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.wake:
		}
	}
}

// take removes and returns everything queued.
func (d *Dispatcher) take() ([]delivery, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	batch := d.queue
	d.queue = nil
	return batch, d.closed
}

// requeue puts undelivered items back at the head of the queue.
func (d *Dispatcher) requeue(items []delivery) {
	d.mu.Lock()
	d.queue = append(items, d.queue...)
	d.mu.Unlock()
}

// deliver runs one callback. A panicking callback is logged and does not stop the loop.
func (d *Dispatcher) deliver(item delivery) {
	defer func() {
		if r := recover(); r != nil {
			err := zerr.With(zerr.New("callback panicked"), "panic", fmt.Sprint(r))
			d.logger.Error(zerr.With(err, "fingerprint", item.res.Fingerprint.String()))
		}
	}()
	item.cb(item.res)
}

func (d *Dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}
