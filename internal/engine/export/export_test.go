package export_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports/mocks"
	"go.trai.ch/iconsmith/internal/engine/export"
	"go.uber.org/mock/gomock"
)

var png = domain.Bitmap{Width: 1, Height: 1, Data: []byte("\x89PNG fake")}

func layout() *domain.MasterLayout {
	return &domain.MasterLayout{
		IconName: "foo",
		Context:  "devices",
		Regions:  map[int]string{48: "rect48x48", 16: "rect16x16", 24: "rect24x24"},
	}
}

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foo.svg")
	require.NoError(t, os.WriteFile(path, []byte("<svg/>"), 0o600))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))
	return path
}

// recordingSink keeps every update.
type recordingSink struct {
	mu      sync.Mutex
	updates []domain.ExportUpdate
	onTerm  func(domain.ExportUpdate)
}

func (s *recordingSink) Report(u domain.ExportUpdate) {
	s.mu.Lock()
	s.updates = append(s.updates, u)
	s.mu.Unlock()
	if s.onTerm != nil && u.Status.IsTerminal() {
		s.onTerm(u)
	}
}

func (s *recordingSink) terminal() []domain.ExportUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ExportUpdate
	for _, u := range s.updates {
		if u.Status.IsTerminal() {
			out = append(out, u)
		}
	}
	return out
}

func TestPlan(t *testing.T) {
	root := "/theme"
	tasks, err := export.Plan(layout(), []int{1, 2}, root)
	require.NoError(t, err)
	require.Len(t, tasks, 6)

	assert.Equal(t, domain.ExportTask{
		Size: 16, Factor: 1, RegionID: "rect16x16", DPI: 96,
		OutputPath: filepath.Join(root, "devices", "16", "foo.png"),
	}, tasks[0])
	assert.Equal(t, domain.ExportTask{
		Size: 16, Factor: 2, RegionID: "rect16x16", DPI: 192,
		OutputPath: filepath.Join(root, "devices", "16@2x", "foo.png"),
	}, tasks[1])

	var order []string
	for _, task := range tasks {
		order = append(order, task.Label())
	}
	assert.Equal(t, []string{"16", "16@2x", "24", "24@2x", "48", "48@2x"}, order)
}

func TestPlan_Errors(t *testing.T) {
	_, err := export.Plan(layout(), nil, "/theme")
	require.ErrorIs(t, err, domain.ErrNoDensityFactors)

	_, err = export.Plan(&domain.MasterLayout{IconName: "foo"}, []int{1}, "/theme")
	require.ErrorIs(t, err, domain.ErrNotMasterDocument)
}

func TestPlanSizes(t *testing.T) {
	tasks, err := export.PlanSizes("edit-copy", "actions", []int{32, 16, 16}, []int{1}, "/theme")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, 16, tasks[0].Size)
	assert.Empty(t, tasks[0].RegionID)
	assert.Equal(t, 32, tasks[1].PixelSize())
	assert.Equal(t, filepath.Join("/theme", "actions", "32", "edit-copy.png"), tasks[1].OutputPath)

	_, err = export.PlanSizes("x", "apps", []int{0}, []int{1}, "/theme")
	require.ErrorIs(t, err, domain.ErrInvalidSize)
}

func TestRun_RendersEveryTaskAndInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	rast := mocks.NewMockRasterizer(ctrl)
	memory := mocks.NewMockBitmapCache(ctrl)
	disk := mocks.NewMockBitmapCache(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	source := writeSource(t)
	root := t.TempDir()
	tasks, err := export.Plan(layout(), []int{1, 2}, root)
	require.NoError(t, err)

	for _, task := range tasks {
		rast.EXPECT().RenderRegion(gomock.Any(), source, task.RegionID, task.DPI).Return(png, nil)
	}
	for _, cache := range []*mocks.MockBitmapCache{memory, disk} {
		cache.EXPECT().Invalidate(source).Return(nil)
		for _, task := range tasks {
			cache.EXPECT().Invalidate(task.OutputPath).Return(nil)
		}
	}

	sink := &recordingSink{}
	progress := export.NewProgress()
	outcome, err := export.New(rast, logger, memory, disk).Run(context.Background(), source, tasks, sink, progress)
	require.NoError(t, err)

	assert.Equal(t, 6, outcome.Total)
	assert.Equal(t, 6, outcome.Rendered)
	assert.False(t, outcome.Partial())
	assert.Equal(t, 6, progress.Completed())
	assert.Equal(t, 6, progress.Total())

	for _, task := range tasks {
		data, err := os.ReadFile(task.OutputPath)
		require.NoError(t, err)
		assert.Equal(t, png.Data, data)
	}

	terminal := sink.terminal()
	require.Len(t, terminal, 6)
	for i, u := range terminal {
		assert.Equal(t, i+1, u.Completed)
		assert.Equal(t, 6, u.Total)
		assert.Equal(t, domain.TaskStatusRendered, u.Status)
		assert.NotEmpty(t, u.Message)
	}
	assert.Len(t, sink.updates, 12)
}

func TestRun_CancelAfterTwoTasks(t *testing.T) {
	ctrl := gomock.NewController(t)
	rast := mocks.NewMockRasterizer(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any())

	source := writeSource(t)
	root := t.TempDir()
	tasks, err := export.Plan(&domain.MasterLayout{
		IconName: "foo",
		Context:  "devices",
		Regions:  map[int]string{16: "a", 24: "b", 32: "c"},
	}, []int{1, 2}, root)
	require.NoError(t, err)
	require.Len(t, tasks, 6)

	rast.EXPECT().RenderRegion(gomock.Any(), source, gomock.Any(), gomock.Any()).Return(png, nil).Times(2)

	progress := export.NewProgress()
	sink := &recordingSink{onTerm: func(u domain.ExportUpdate) {
		if u.Completed == 2 {
			progress.Cancel()
		}
	}}

	outcome, err := export.New(rast, logger).Run(context.Background(), source, tasks, sink, progress)
	require.NoError(t, err)
	assert.True(t, outcome.Cancelled)
	assert.True(t, outcome.Partial())
	assert.Equal(t, 2, outcome.Completed)
	assert.Len(t, outcome.Outputs, 2)

	for i, task := range tasks {
		_, err := os.Stat(task.OutputPath)
		if i < 2 {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err, os.ErrNotExist)
		}
	}
}

func TestRun_ContextCancelledBetweenTasks(t *testing.T) {
	ctrl := gomock.NewController(t)
	rast := mocks.NewMockRasterizer(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any())

	source := writeSource(t)
	tasks, err := export.Plan(layout(), []int{1}, t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rast.EXPECT().RenderRegion(gomock.Any(), source, "rect16x16", 96).
		DoAndReturn(func(rctx context.Context, _, _ string, _ int) (domain.Bitmap, error) {
			cancel()
			// The render that was already running is not interrupted.
			assert.NoError(t, rctx.Err())
			return png, nil
		})

	outcome, err := export.New(rast, logger).Run(ctx, source, tasks, nil, nil)
	require.NoError(t, err)
	assert.True(t, outcome.Cancelled)
	assert.Equal(t, 1, outcome.Rendered)
}

func TestRun_SkipsUpToDateAndContinuesAfterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	rast := mocks.NewMockRasterizer(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	source := writeSource(t)
	root := t.TempDir()
	tasks, err := export.Plan(layout(), []int{1}, root)
	require.NoError(t, err)

	// 16 is newer than the source, 24 fails, 48 renders.
	require.NoError(t, os.MkdirAll(filepath.Dir(tasks[0].OutputPath), 0o750))
	require.NoError(t, os.WriteFile(tasks[0].OutputPath, []byte("old"), 0o600))

	rast.EXPECT().RenderRegion(gomock.Any(), source, "rect24x24", 96).Return(domain.Bitmap{}, domain.ErrRasterizerTimeout)
	rast.EXPECT().RenderRegion(gomock.Any(), source, "rect48x48", 96).Return(png, nil)

	sink := &recordingSink{}
	outcome, err := export.New(rast, logger).Run(context.Background(), source, tasks, sink, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Skipped)
	assert.Equal(t, 1, outcome.Failed)
	assert.Equal(t, 1, outcome.Rendered)
	assert.Equal(t, []string{tasks[2].OutputPath}, outcome.Outputs)

	data, err := os.ReadFile(tasks[0].OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	terminal := sink.terminal()
	require.Len(t, terminal, 3)
	assert.Equal(t, domain.TaskStatusSkipped, terminal[0].Status)
	assert.Equal(t, domain.TaskStatusFailed, terminal[1].Status)
	require.ErrorIs(t, terminal[1].Err, domain.ErrRasterizerTimeout)
	assert.Equal(t, domain.TaskStatusRendered, terminal[2].Status)
}

func TestRun_WholeDocumentTasks(t *testing.T) {
	ctrl := gomock.NewController(t)
	rast := mocks.NewMockRasterizer(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	source := writeSource(t)
	tasks, err := export.PlanSizes("foo", "apps", []int{16}, []int{1, 2}, t.TempDir())
	require.NoError(t, err)

	rast.EXPECT().Render(gomock.Any(), source, 16).Return(png, nil)
	rast.EXPECT().Render(gomock.Any(), source, 32).Return(domain.Bitmap{}, nil)

	outcome, err := export.New(rast, logger).Run(context.Background(), source, tasks, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Rendered)
	assert.Equal(t, 1, outcome.Failed)
}

func TestLogSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info("[1/2] rendered 16")
	logger.EXPECT().Warn("[2/2] failed 24")

	sink := export.MultiSink{export.NewLogSink(logger), nil}
	sink.Report(domain.ExportUpdate{Completed: 0, Total: 2, Message: "rendering 16", Status: domain.TaskStatusRunning})
	sink.Report(domain.ExportUpdate{Completed: 1, Total: 2, Message: "rendered 16", Status: domain.TaskStatusRendered})
	sink.Report(domain.ExportUpdate{Completed: 2, Total: 2, Message: "failed 24", Status: domain.TaskStatusFailed})
}
