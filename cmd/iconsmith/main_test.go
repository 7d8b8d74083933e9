package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/iconsmith/internal/adapters/fs"
	"go.trai.ch/iconsmith/internal/adapters/telemetry"
	"go.trai.ch/iconsmith/internal/adapters/vector"
	"go.trai.ch/iconsmith/internal/app"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func provide(t *testing.T) (ComponentProvider, *mocks.MockConfigLoader) {
	t.Helper()
	ctrl := gomock.NewController(t)

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	application := app.New(
		mockLoader,
		mockLogger,
		fs.NewFingerprinter(),
		telemetry.NewNoOpTracer(),
		vector.New(),
		fs.NewHasher(),
		fs.NewWalker(),
	)

	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
	}, mockLoader
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	provider, _ := provide(t)
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)

	exitCode := run(context.Background(), []string{"version"}, stdout, stderr, provider)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "iconsmith version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 when the command execution fails.
func TestRun_ExecutionError(t *testing.T) {
	provider, loader := provide(t)
	cfg := domain.DefaultConfig()
	cfg.DiskCacheEnabled = false
	loader.EXPECT().Load("").Return(cfg, nil)
	loader.EXPECT().LoadCategories(gomock.Any()).Return(domain.Categories{}, nil)

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"cache", "prune"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "disk cache is disabled")
}
