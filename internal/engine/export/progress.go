package export

import (
	uatomic "go.uber.org/atomic"
)

// Progress is shared between a running export and whoever may cancel it.
type Progress struct {
	total     uatomic.Int64
	completed uatomic.Int64
	cancel    uatomic.Bool
}

// NewProgress creates an empty Progress.
func NewProgress() *Progress {
	return &Progress{}
}

// Cancel asks the export to stop at the next task boundary.
func (p *Progress) Cancel() {
	p.cancel.Store(true)
}

// Cancelled reports whether Cancel was called.
func (p *Progress) Cancelled() bool {
	return p.cancel.Load()
}

// Total is the number of tasks in the run.
func (p *Progress) Total() int {
	return int(p.total.Load())
}

// Completed is the number of tasks finished so far.
func (p *Progress) Completed() int {
	return int(p.completed.Load())
}
