package logger_test

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/iconsmith/internal/adapters/logger"
)

// captureStderr captures output written to os.Stderr during the execution of fn.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w
	defer func() { os.Stderr = original }()

	done := make(chan string, 1)
	go func() {
		buf, _ := io.ReadAll(r)
		done <- string(buf)
	}()

	fn()

	require.NoError(t, w.Close())
	output := <-done
	require.NoError(t, r.Close())
	return output
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.NewWithOutput(&buf, slog.LevelDebug)

	lg.Debug("probing cache")
	lg.Info("rendered icon")
	lg.Warn("index unreadable")
	lg.Error(os.ErrPermission)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG msg=\"probing cache\"")
	assert.Contains(t, out, "level=INFO msg=\"rendered icon\"")
	assert.Contains(t, out, "level=WARN msg=\"index unreadable\"")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "permission denied")
}

func TestLogger_DebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.NewWithOutput(&buf, slog.LevelInfo)

	lg.Debug("hidden")
	lg.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	lg := logger.NewWithOutput(&first, slog.LevelInfo)

	lg.Info("one")
	lg.SetOutput(&second)
	lg.Info("two")

	assert.Contains(t, first.String(), "one")
	assert.NotContains(t, first.String(), "two")
	assert.Contains(t, second.String(), "two")
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.NewWithOutput(&buf, slog.LevelInfo)

	lg.SetLevel(&buf, slog.LevelDebug)
	lg.Debug("verbose now")

	assert.Contains(t, buf.String(), "verbose now")
}

func TestNew_WritesToStderr(t *testing.T) {
	output := captureStderr(t, func() {
		lg := logger.New()
		lg.Warn("some warning")
	})

	assert.Contains(t, output, "some warning")
	assert.Contains(t, output, "WARN")
}
