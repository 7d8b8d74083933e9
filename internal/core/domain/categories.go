package domain

import (
	"maps"
	"slices"
)

// Categories maps a category name to the ordered icon base names it contains.
type Categories map[string][]string

// CategoryFor returns the first category, in name order, listing icon.
// It returns fallback when no category lists it.
func (c Categories) CategoryFor(icon, fallback string) string {
	for _, name := range slices.Sorted(maps.Keys(c)) {
		if slices.Contains(c[name], icon) {
			return name
		}
	}
	return fallback
}
