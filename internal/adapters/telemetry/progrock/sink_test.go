package progrock_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vprogrock "github.com/vito/progrock"
	"go.trai.ch/iconsmith/internal/adapters/telemetry/progrock"
	"go.trai.ch/iconsmith/internal/core/domain"
)

type recordingWriter struct {
	mu      sync.Mutex
	updates []*vprogrock.StatusUpdate
	closed  bool
}

func (w *recordingWriter) WriteStatus(u *vprogrock.StatusUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updates = append(w.updates, u)
	return nil
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// lastVertex returns the most recent state recorded for the vertex named name.
func (w *recordingWriter) lastVertex(name string) *vprogrock.Vertex {
	w.mu.Lock()
	defer w.mu.Unlock()
	var last *vprogrock.Vertex
	for _, u := range w.updates {
		for _, v := range u.Vertexes {
			if v.Name == name {
				last = v
			}
		}
	}
	return last
}

func TestSink_ReportsEachTask(t *testing.T) {
	w := &recordingWriter{}
	sink := progrock.NewSink(w)

	rendered := domain.ExportTask{Size: 16, Factor: 1, OutputPath: "/out/devices/16/foo.png"}
	skipped := domain.ExportTask{Size: 48, Factor: 1, OutputPath: "/out/devices/48/foo.png"}
	failed := domain.ExportTask{Size: 48, Factor: 2, OutputPath: "/out/devices/48@2x/foo.png"}

	sink.Report(domain.ExportUpdate{Task: rendered, Status: domain.TaskStatusRunning, Total: 3})
	sink.Report(domain.ExportUpdate{Task: rendered, Status: domain.TaskStatusRendered, Completed: 1, Total: 3, Message: "16"})
	sink.Report(domain.ExportUpdate{Task: skipped, Status: domain.TaskStatusSkipped, Completed: 2, Total: 3})
	sink.Report(domain.ExportUpdate{
		Task: failed, Status: domain.TaskStatusFailed, Completed: 3, Total: 3, Err: errors.New("boom"),
	})
	require.NoError(t, sink.Close())

	v := w.lastVertex(rendered.OutputPath)
	require.NotNil(t, v)
	assert.NotNil(t, v.Completed)
	assert.Nil(t, v.Error)

	v = w.lastVertex(skipped.OutputPath)
	require.NotNil(t, v)
	assert.True(t, v.Cached)

	v = w.lastVertex(failed.OutputPath)
	require.NotNil(t, v)
	require.NotNil(t, v.Error)
	assert.Contains(t, *v.Error, "boom")

	assert.True(t, w.closed)
}

func TestNew(t *testing.T) {
	sink := progrock.New()
	require.NotNil(t, sink)
	sink.Report(domain.ExportUpdate{Task: domain.ExportTask{Size: 16, Factor: 1}, Status: domain.TaskStatusRendered})
	require.NoError(t, sink.Close())
}
