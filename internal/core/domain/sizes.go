package domain

import (
	"math"
	"slices"
)

// CanonicalSizes is the list of standard icon pixel sizes a theme ships.
var CanonicalSizes = []int{16, 22, 24, 32, 48, 64, 96, 256}

// DefaultSnapTolerance is the maximum relative difference accepted when snapping.
const DefaultSnapTolerance = 0.15

// snapEpsilon absorbs float rounding so that an exact tolerance boundary is inclusive.
const snapEpsilon = 1e-9

// SnapSize maps width onto the nearest canonical size.
// The relative difference |width-c|/c must not exceed tolerance; otherwise ok is false.
// Ties between two candidates resolve to the smaller size.
func SnapSize(width, tolerance float64) (size int, ok bool) {
	return SnapSizeTo(CanonicalSizes, width, tolerance)
}

// SnapSizeTo is SnapSize over an arbitrary ascending candidate list.
func SnapSizeTo(candidates []int, width, tolerance float64) (int, bool) {
	if width <= 0 || len(candidates) == 0 {
		return 0, false
	}

	best := 0
	bestDiff := math.Inf(1)
	for _, c := range candidates {
		diff := math.Abs(width - float64(c))
		if diff < bestDiff {
			best = c
			bestDiff = diff
		}
	}

	if bestDiff/float64(best) > tolerance+snapEpsilon {
		return 0, false
	}
	return best, true
}

// IsCanonicalSize reports whether size is in CanonicalSizes.
func IsCanonicalSize(size int) bool {
	return slices.Contains(CanonicalSizes, size)
}
