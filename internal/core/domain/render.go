package domain

// ResultSource records which tier produced a render result.
type ResultSource string

const (
	// SourceMemory indicates an in-process cache hit.
	SourceMemory ResultSource = "memory"
	// SourceDisk indicates an on-disk cache hit.
	SourceDisk ResultSource = "disk"
	// SourceRender indicates a fresh rasterization.
	SourceRender ResultSource = "render"
	// SourcePlaceholder indicates the request failed and a placeholder was substituted.
	SourcePlaceholder ResultSource = "placeholder"
)

// RenderResult is the outcome delivered for every preview request.
// A placeholder result carries a usable Bitmap and the failure in Err.
type RenderResult struct {
	Fingerprint Fingerprint
	Bitmap      Bitmap
	Source      ResultSource
	Err         error
}

// Placeholder reports whether the bitmap is a stand-in.
func (r RenderResult) Placeholder() bool {
	return r.Source == SourcePlaceholder
}

// Callback receives a render result on the presentation loop.
type Callback func(RenderResult)

// RenderTask is a request neither cache tier could satisfy at enqueue time.
// A non-nil Err means the source could not be inspected and only a placeholder is owed.
type RenderTask struct {
	Fingerprint Fingerprint
	Callback    Callback
	Err         error
}
