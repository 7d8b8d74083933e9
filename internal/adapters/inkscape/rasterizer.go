// Package inkscape implements ports.Rasterizer by invoking the external Inkscape binary.
package inkscape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png" // output header decoding
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Rasterizer = (*Rasterizer)(nil)

const (
	defaultMaxAttempts = 2
	defaultMinBackoff  = 100 * time.Millisecond
	defaultMaxBackoff  = time.Second
	waitDelay          = 2 * time.Second
)

// Options configures the rasterizer.
type Options struct {
	// Binary is the executable name or path, "inkscape" by default.
	Binary        string
	RenderTimeout time.Duration
	RegionTimeout time.Duration
	// SupersampleFactor renders at size*factor and downscales when at least 2.
	SupersampleFactor int
	// MaxAttempts bounds retries of one command form on a transient crash.
	MaxAttempts int
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
}

// OptionsFromConfig derives rasterizer options from the runtime configuration.
func OptionsFromConfig(cfg domain.Config) Options {
	opts := Options{
		Binary:        cfg.InkscapeBinary,
		RenderTimeout: cfg.RenderTimeout,
		RegionTimeout: cfg.RegionTimeout,
	}
	if cfg.SupersampleEnabled {
		opts.SupersampleFactor = cfg.SupersampleFactor
	}
	return opts
}

// Rasterizer runs Inkscape as a subprocess, trying each known command form in turn.
type Rasterizer struct {
	opts     Options
	logger   ports.Logger
	tracer   ports.Tracer
	lookPath func(string) (string, error)
	retry    failsafe.Executor[any]
}

// New creates a Rasterizer.
func New(opts Options, logger ports.Logger, tracer ports.Tracer) *Rasterizer {
	if opts.Binary == "" {
		opts.Binary = "inkscape"
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = domain.DefaultRenderTimeout
	}
	if opts.RegionTimeout <= 0 {
		opts.RegionTimeout = domain.DefaultRegionTimeout
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = defaultMinBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.MaxBackoff <= opts.MinBackoff {
		opts.MaxBackoff = 2 * opts.MinBackoff
	}

	return &Rasterizer{
		opts:     opts,
		logger:   logger,
		tracer:   tracer,
		lookPath: exec.LookPath,
		retry: failsafe.With(retrypolicy.NewBuilder[any]().
			HandleIf(func(_ any, err error) bool {
				return isTransient(err)
			}).
			WithBackoff(opts.MinBackoff, opts.MaxBackoff).
			WithMaxAttempts(opts.MaxAttempts).
			Build()),
	}
}

// Render rasterizes the whole document at size x size pixels.
func (r *Rasterizer) Render(ctx context.Context, source string, size int) (domain.Bitmap, error) {
	if size <= 0 {
		return domain.Bitmap{}, domain.Classify(domain.ErrInvalidSize, zerr.With(zerr.New("size must be positive"), "size", size))
	}

	px := size
	if r.opts.SupersampleFactor >= 2 {
		px = size * r.opts.SupersampleFactor
	}

	data, err := r.export(ctx, r.opts.RenderTimeout, exportSpec{Source: source, Width: px, Height: px})
	if err != nil {
		return domain.Bitmap{}, err
	}

	if px == size {
		return decodeBitmap(data)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Bitmap{}, domain.Classify(domain.ErrRasterizerFailed, zerr.With(err, "source", source))
	}
	return domain.BitmapFromImage(imaging.Resize(img, size, size, imaging.Lanczos))
}

// RenderRegion rasterizes the single element regionID at the given DPI.
func (r *Rasterizer) RenderRegion(ctx context.Context, source, regionID string, dpi int) (domain.Bitmap, error) {
	if dpi <= 0 {
		dpi = domain.DefaultBaseDPI
	}
	data, err := r.export(ctx, r.opts.RegionTimeout, exportSpec{Source: source, RegionID: regionID, DPI: dpi})
	if err != nil {
		return domain.Bitmap{}, err
	}
	return decodeBitmap(data)
}

// export tries each command form until one produces an output file.
// A timeout moves on to the next form; it is reported only if no form succeeds.
func (r *Rasterizer) export(ctx context.Context, timeout time.Duration, spec exportSpec) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "iconsmith-render-*")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create render directory")
	}
	defer os.RemoveAll(tmp) //nolint:errcheck // Best effort cleanup

	spec.Output = filepath.Join(tmp, "out.png")

	var lastErr, timeoutErr error
	allMissing := true
	for _, form := range r.forms(spec) {
		data, err := r.runForm(ctx, timeout, form, spec)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, domain.ErrRasterizerTimeout) && timeoutErr == nil {
			timeoutErr = err
		}
		if !errors.Is(err, domain.ErrRasterizerNotFound) {
			allMissing = false
		}
		r.logger.Debug(fmt.Sprintf("rasterizer form %s failed: %v", form.Name, err))
	}

	if allMissing {
		return nil, domain.Classify(domain.ErrRasterizerNotFound,
			zerr.With(zerr.New("no command form could be started"), "binary", r.opts.Binary))
	}
	if timeoutErr != nil {
		return nil, timeoutErr
	}
	return nil, lastErr
}

// runForm runs one command form under the retry policy.
func (r *Rasterizer) runForm(ctx context.Context, timeout time.Duration, form commandForm, spec exportSpec) ([]byte, error) {
	var data []byte
	var last error
	err := r.retry.WithContext(ctx).Run(func() error {
		_ = os.Remove(spec.Output)
		data, last = r.invoke(ctx, timeout, form, spec)
		return last
	})
	if err != nil {
		if last != nil {
			return nil, last
		}
		return nil, err
	}
	return data, nil
}

// invoke executes argv once and returns the produced PNG bytes.
func (r *Rasterizer) invoke(ctx context.Context, timeout time.Duration, form commandForm, spec exportSpec) ([]byte, error) {
	ctx, span := r.tracer.Start(ctx, "inkscape."+form.Name, ports.WithKind("subprocess"))
	defer span.End()
	span.SetAttribute("source", spec.Source)
	span.SetAttribute("argv", form.Argv)

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout := newLineWriter(r.logger, form.Name+": ")
	stderr := newLineWriter(r.logger, form.Name+" stderr: ")
	defer stdout.Flush()
	defer stderr.Flush()

	cmd := exec.CommandContext(tctx, form.Argv[0], form.Argv[1:]...) //nolint:gosec // argv is built from config
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, span)
	cmd.WaitDelay = waitDelay

	runErr := cmd.Run()
	if runErr != nil {
		err := classify(tctx, ctx, zerr.With(runErr, "form", form.Name), runErr)
		span.RecordError(err)
		return nil, err
	}

	data, err := os.ReadFile(spec.Output)
	if err != nil || len(data) == 0 {
		err = domain.Classify(domain.ErrRasterizerFailed, zerr.With(zerr.New("no output produced"), "form", form.Name))
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("bytes", len(data))
	return data, nil
}

// exitError carries a subprocess exit code.
type exitError struct {
	code  int
	cause error
}

func (e *exitError) Error() string { return e.cause.Error() }
func (e *exitError) Unwrap() error { return e.cause }

// classify maps a run error onto the rasterizer sentinels.
// err is the zerr-annotated run error; raw is the original from exec.
func classify(tctx, parent context.Context, err, raw error) error {
	var execErr *exec.Error
	var pathErr *fs.PathError
	switch {
	case errors.As(raw, &execErr), errors.As(raw, &pathErr):
		return domain.Classify(domain.ErrRasterizerNotFound, err)
	case parent.Err() != nil:
		return parent.Err()
	case errors.Is(tctx.Err(), context.DeadlineExceeded):
		return domain.Classify(domain.ErrRasterizerTimeout, err)
	}

	var exitErr *exec.ExitError
	if errors.As(raw, &exitErr) {
		code := exitErr.ExitCode()
		return domain.Classify(domain.ErrRasterizerFailed, &exitError{code: code, cause: zerr.With(err, "exit_code", code)})
	}
	return domain.Classify(domain.ErrRasterizerFailed, err)
}

// isTransient reports crashes worth retrying: death by signal rather than a clean error exit.
func isTransient(err error) bool {
	var ee *exitError
	if !errors.As(err, &ee) {
		return false
	}
	return ee.code < 0 || ee.code > 128
}

func decodeBitmap(data []byte) (domain.Bitmap, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.Bitmap{}, domain.Classify(domain.ErrRasterizerFailed, zerr.Wrap(err, "output is not an image"))
	}
	if !strings.EqualFold(format, "png") {
		return domain.Bitmap{}, domain.Classify(domain.ErrRasterizerFailed, zerr.With(zerr.New("output is not a PNG"), "format", format))
	}
	return domain.Bitmap{Width: cfg.Width, Height: cfg.Height, Data: data}, nil
}
