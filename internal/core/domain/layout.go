package domain

import (
	"maps"
	"path/filepath"
	"slices"
	"strconv"
)

// DefaultBaseDPI is the DPI at which one SVG user unit becomes one output pixel.
const DefaultBaseDPI = 96

// MasterLayout is the resolved view of a master document: one placeholder region per canonical size.
// A layout is built fresh on every resolve and never mutated afterwards.
type MasterLayout struct {
	IconName string
	Context  string
	Regions  map[int]string
}

// Sizes returns the canonical sizes present in the layout, ascending.
func (l *MasterLayout) Sizes() []int {
	return slices.Sorted(maps.Keys(l.Regions))
}

// Region is a placeholder rectangle discovered in a vector document.
type Region struct {
	ID     string
	Width  float64
	Height float64
}

// ExportTask renders one (size, density factor) cell of an export.
// An empty RegionID renders the whole document at Size*Factor pixels.
type ExportTask struct {
	Size       int
	Factor     int
	RegionID   string
	DPI        int
	OutputPath string
}

// PixelSize is the raster width the task produces.
func (t ExportTask) PixelSize() int {
	return t.Size * t.Factor
}

// Label names the task for progress output, e.g. "48@2x".
func (t ExportTask) Label() string {
	return SizeDirName(t.Size, t.Factor)
}

// SizeDirName returns the size bucket directory: "48" for 1x, "48@2x" otherwise.
func SizeDirName(size, factor int) string {
	if factor <= 1 {
		return strconv.Itoa(size)
	}
	return strconv.Itoa(size) + "@" + strconv.Itoa(factor) + "x"
}

// OutputPath composes <root>/<context>/<size>[@<factor>x]/<name>.<ext>.
func OutputPath(root, context string, size, factor int, name, ext string) string {
	return filepath.Join(root, context, SizeDirName(size, factor), name+"."+ext)
}

// ExportUpdate is a progress notification emitted after each export task.
type ExportUpdate struct {
	Completed int
	Total     int
	Message   string
	Task      ExportTask
	Status    TaskStatus
	Err       error
}

// ExportOutcome summarises a finished or cancelled export run.
type ExportOutcome struct {
	Total     int
	Completed int
	Rendered  int
	Skipped   int
	Failed    int
	Cancelled bool
	Outputs   []string
}

// Partial reports whether the run stopped before every task was processed.
func (o ExportOutcome) Partial() bool {
	return o.Completed < o.Total
}
