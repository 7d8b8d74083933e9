package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrCacheMiss is returned when a requested bitmap is not present in a cache tier.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrQueueFull is returned when the render queue cannot accept another task.
	ErrQueueFull = zerr.New("render queue is full")

	// ErrPoolStopped is returned when a request arrives after the worker pool was stopped.
	ErrPoolStopped = zerr.New("render pool stopped")

	// ErrInvalidSize is returned for non-positive pixel sizes.
	ErrInvalidSize = zerr.New("invalid pixel size")

	// ErrSourceStatFailed is returned when the source file cannot be inspected.
	ErrSourceStatFailed = zerr.New("failed to stat icon source")

	// ErrBitmapDecodeFailed is returned when bitmap bytes are not a decodable image.
	ErrBitmapDecodeFailed = zerr.New("failed to decode bitmap")

	// ErrBitmapEncodeFailed is returned when an image cannot be encoded as PNG.
	ErrBitmapEncodeFailed = zerr.New("failed to encode bitmap")

	// ErrIndexReadFailed is returned when the disk cache index cannot be read.
	ErrIndexReadFailed = zerr.New("failed to read disk cache index")

	// ErrIndexWriteFailed is returned when the disk cache index cannot be written.
	ErrIndexWriteFailed = zerr.New("failed to write disk cache index")

	// ErrBlobWriteFailed is returned when a disk cache blob cannot be written.
	ErrBlobWriteFailed = zerr.New("failed to write disk cache blob")

	// ErrCacheDirCreateFailed is returned when the disk cache directory cannot be created.
	ErrCacheDirCreateFailed = zerr.New("failed to create disk cache directory")

	// ErrRasterizerNotFound is returned when no rasterizer command form could be started.
	ErrRasterizerNotFound = zerr.New("rasterizer binary not found")

	// ErrRasterizerFailed is returned when the rasterizer exits non-zero or produces no output.
	ErrRasterizerFailed = zerr.New("rasterizer failed")

	// ErrRasterizerTimeout is returned when the rasterizer exceeds its time limit.
	ErrRasterizerTimeout = zerr.New("rasterizer timed out")

	// ErrRegionUnsupported is returned by rasterizers that cannot export a single element.
	ErrRegionUnsupported = zerr.New("region rendering not supported")

	// ErrNotMasterDocument is returned when a source has no icon name or no baseplate regions.
	ErrNotMasterDocument = zerr.New("not a master document")

	// ErrDocumentParseFailed is returned when a vector document is not well-formed XML.
	ErrDocumentParseFailed = zerr.New("failed to parse vector document")

	// ErrExportWriteFailed is returned when an export output cannot be written.
	ErrExportWriteFailed = zerr.New("failed to write export output")

	// ErrNoDensityFactors is returned when an export is planned without density factors.
	ErrNoDensityFactors = zerr.New("no density factors configured")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrCategoriesReadFailed is returned when the categories file cannot be read.
	ErrCategoriesReadFailed = zerr.New("failed to read categories file")

	// ErrWatcherFailed is returned when the file watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to watch source")

	// ErrMasterExportDisabled is returned when watch-driven export is requested while disabled in config.
	ErrMasterExportDisabled = zerr.New("master export is disabled")

	// ErrDiskCacheDisabled is returned by disk cache maintenance when no disk cache is configured.
	ErrDiskCacheDisabled = zerr.New("disk cache is disabled")

	// ErrNoSources is returned when a command is given no icon sources.
	ErrNoSources = zerr.New("no icon sources given")
)

// Classify attaches sentinel to cause so that errors.Is(err, sentinel) holds however
// cause itself was wrapped. Context belongs on cause; the result must not be wrapped again.
func Classify(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return errors.Join(sentinel, cause)
}
