package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

// Pipeline executes export tasks one at a time.
type Pipeline struct {
	rasterizer ports.Rasterizer
	logger     ports.Logger
	caches     []ports.BitmapCache
}

// New creates a Pipeline. caches are invalidated for every path an export touches.
func New(rasterizer ports.Rasterizer, logger ports.Logger, caches ...ports.BitmapCache) *Pipeline {
	return &Pipeline{rasterizer: rasterizer, logger: logger, caches: caches}
}

// Run renders tasks from source in order.
//
// Cancellation through progress or ctx is honoured between tasks; a render already started is
// allowed to finish. Completed outputs are kept. A failed task is reported and the run
// continues. When Run returns, cached previews of the source and of every written output
// have been invalidated.
func (p *Pipeline) Run(
	ctx context.Context,
	source string,
	tasks []domain.ExportTask,
	sink ports.ProgressSink,
	progress *Progress,
) (domain.ExportOutcome, error) {
	if progress == nil {
		progress = NewProgress()
	}
	progress.total.Store(int64(len(tasks)))
	progress.completed.Store(0)

	outcome := domain.ExportOutcome{Total: len(tasks)}
	defer func() {
		p.invalidate(append([]string{source}, outcome.Outputs...))
	}()

	var sourceTime int64
	if info, err := os.Stat(source); err == nil {
		sourceTime = info.ModTime().UnixNano()
	} else {
		p.logger.Warn(fmt.Sprintf("cannot stat %s, rendering every task: %v", source, err))
	}

	// Renders run to completion once started.
	renderCtx := context.WithoutCancel(ctx)

	for _, task := range tasks {
		if progress.Cancelled() || ctx.Err() != nil {
			outcome.Cancelled = true
			break
		}

		p.report(sink, outcome, task, domain.TaskStatusRunning, nil, "rendering "+task.Label())

		status, err := p.runTask(renderCtx, source, sourceTime, task)
		outcome.Completed++
		progress.completed.Inc()

		var msg string
		switch status {
		case domain.TaskStatusRendered:
			outcome.Rendered++
			outcome.Outputs = append(outcome.Outputs, task.OutputPath)
			msg = fmt.Sprintf("rendered %s to %s", task.Label(), task.OutputPath)
		case domain.TaskStatusSkipped:
			outcome.Skipped++
			msg = fmt.Sprintf("skipped %s, output is up to date", task.Label())
		default:
			outcome.Failed++
			msg = fmt.Sprintf("failed %s: %v", task.Label(), err)
		}
		p.report(sink, outcome, task, status, err, msg)
	}

	if outcome.Cancelled {
		p.logger.Info(fmt.Sprintf("export of %s cancelled after %d of %d tasks", source, outcome.Completed, outcome.Total))
	}
	return outcome, nil
}

func (p *Pipeline) runTask(ctx context.Context, source string, sourceTime int64, task domain.ExportTask) (domain.TaskStatus, error) {
	if sourceTime != 0 {
		if info, err := os.Stat(task.OutputPath); err == nil && info.ModTime().UnixNano() > sourceTime {
			return domain.TaskStatusSkipped, nil
		}
	}

	var bmp domain.Bitmap
	var err error
	if task.RegionID != "" {
		bmp, err = p.rasterizer.RenderRegion(ctx, source, task.RegionID, task.DPI)
	} else {
		bmp, err = p.rasterizer.Render(ctx, source, task.PixelSize())
	}
	if err != nil {
		return domain.TaskStatusFailed, err
	}
	if bmp.IsEmpty() {
		return domain.TaskStatusFailed, domain.Classify(domain.ErrRasterizerFailed, zerr.New("empty bitmap"))
	}

	if err := writeOutput(task.OutputPath, bmp.Data); err != nil {
		return domain.TaskStatusFailed, err
	}
	return domain.TaskStatusRendered, nil
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return domain.Classify(domain.ErrExportWriteFailed, zerr.With(err, "path", path))
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return domain.Classify(domain.ErrExportWriteFailed, zerr.With(err, "path", path))
	}
	return nil
}

func (p *Pipeline) report(
	sink ports.ProgressSink,
	outcome domain.ExportOutcome,
	task domain.ExportTask,
	status domain.TaskStatus,
	err error,
	msg string,
) {
	if sink == nil {
		return
	}
	sink.Report(domain.ExportUpdate{
		Completed: outcome.Completed,
		Total:     outcome.Total,
		Message:   msg,
		Task:      task,
		Status:    status,
		Err:       err,
	})
}

func (p *Pipeline) invalidate(paths []string) {
	for _, cache := range p.caches {
		if cache == nil {
			continue
		}
		for _, path := range paths {
			if err := cache.Invalidate(path); err != nil {
				p.logger.Warn(fmt.Sprintf("cache invalidation for %s failed: %v", path, err))
			}
		}
	}
}
