// Package progrock reports export progress as progrock vertices, one per export task.
package progrock

import (
	"fmt"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
)

var _ ports.ProgressSink = (*Sink)(nil)

// Sink implements ports.ProgressSink on a progrock recorder.
type Sink struct {
	w   progrock.Writer
	rec *progrock.Recorder

	mu       sync.Mutex
	vertices map[string]*Vertex
}

// New creates a Sink recording onto a fresh tape.
func New() *Sink {
	return NewSink(progrock.NewTape())
}

// NewSink creates a Sink recording onto w.
func NewSink(w progrock.Writer) *Sink {
	return &Sink{
		w:        w,
		rec:      progrock.NewRecorder(w),
		vertices: make(map[string]*Vertex),
	}
}

// Report opens the task's vertex on first sight and completes it on a terminal status.
func (s *Sink) Report(update domain.ExportUpdate) {
	name := update.Task.OutputPath
	if name == "" {
		name = update.Task.Label()
	}

	s.mu.Lock()
	v, ok := s.vertices[name]
	if !ok {
		v = &Vertex{vertex: s.rec.Vertex(digest.FromString(name), name)}
		s.vertices[name] = v
	}
	if update.Status.IsTerminal() {
		delete(s.vertices, name)
	}
	s.mu.Unlock()

	switch update.Status {
	case domain.TaskStatusRendered:
		v.Log(domain.LogLevelInfo, update.Message)
		v.Complete(nil)
	case domain.TaskStatusSkipped:
		v.Cached()
		v.Complete(nil)
	case domain.TaskStatusFailed:
		v.Log(domain.LogLevelError, update.Message)
		v.Complete(update.Err)
	default:
	}
}

// Close flushes and closes the recording session.
func (s *Sink) Close() error {
	if c, ok := s.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Vertex wraps *progrock.VertexRecorder.
type Vertex struct {
	vertex *progrock.VertexRecorder
}

// Stdout returns a writer to capture standard output stream.
func (v *Vertex) Stdout() io.Writer {
	return v.vertex.Stdout()
}

// Stderr returns a writer to capture error output stream.
func (v *Vertex) Stderr() io.Writer {
	return v.vertex.Stderr()
}

// Log records a leveled message on the vertex; errors go to stderr.
func (v *Vertex) Log(level domain.LogLevel, msg string) {
	w := v.vertex.Stdout()
	if level >= domain.LogLevelWarn {
		w = v.vertex.Stderr()
	}
	_, _ = fmt.Fprintf(w, "[%s] %s\n", level.String(), msg)
}

// Complete marks the vertex as finished (successfully or with an error).
func (v *Vertex) Complete(err error) {
	v.vertex.Done(err)
}

// Cached marks the vertex as a cache hit.
func (v *Vertex) Cached() {
	v.vertex.Cached()
}
