package svg

import (
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/iconsmith/internal/core/domain"
)

const (
	baseplateMarker = "baseplate"
	minPlausible    = 8
	maxPlausible    = 1024
)

var (
	lengthPattern = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

	// Size patterns embedded in identifiers, most specific first: "16x16", "96@2x", "_48".
	idPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)x\d+`),
		regexp.MustCompile(`(\d+)@\d+x`),
		regexp.MustCompile(`[_-](\d+)(?:$|[^\d])`),
	}
)

// findBaseplate returns the first element, in document order, whose attributes mention the baseplate
// marker and which contains other elements.
func findBaseplate(root *element) *element {
	for el := range root.all() {
		if len(el.children) == 0 {
			continue
		}
		for _, a := range el.attrs {
			if strings.Contains(strings.ToLower(a.Value), baseplateMarker) {
				return el
			}
		}
	}
	return nil
}

// strictRegions collects the rect-like descendants of the baseplate container.
func strictRegions(root *element) []domain.Region {
	bp := findBaseplate(root)
	if bp == nil {
		return nil
	}

	var out []domain.Region
	for el := range bp.descendants() {
		id := el.id()
		if id == "" {
			continue
		}
		if !isShape(el) {
			if _, ok := sizeFromID(id); !ok {
				continue
			}
		}
		if r, ok := regionOf(el); ok {
			out = append(out, r)
		}
	}
	return out
}

// permissiveRegions scans the whole document for any identified rect and for any identifier that
// encodes a plausible size.
func permissiveRegions(root *element) []domain.Region {
	var out []domain.Region
	for el := range root.all() {
		id := el.id()
		if id == "" {
			continue
		}
		if el.name != "rect" {
			if _, ok := sizeFromID(id); !ok {
				continue
			}
		}
		if r, ok := regionOf(el); ok {
			out = append(out, r)
		}
	}
	return out
}

// mergeRegions appends the regions of extra whose ids are not yet present in base.
func mergeRegions(base, extra []domain.Region) []domain.Region {
	seen := make(map[string]struct{}, len(base))
	for _, r := range base {
		seen[r.ID] = struct{}{}
	}
	for _, r := range extra {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		base = append(base, r)
	}
	return base
}

func isShape(el *element) bool {
	switch el.name {
	case "rect", "image", "use":
		return true
	default:
		return false
	}
}

// regionOf derives the region size from width/height attributes, falling back to the id.
func regionOf(el *element) (domain.Region, bool) {
	w, wok := parseLength(el.attr("width"))
	h, hok := parseLength(el.attr("height"))
	switch {
	case wok && hok:
	case wok:
		h = w
	case hok:
		w = h
	default:
		size, ok := sizeFromID(el.id())
		if !ok {
			return domain.Region{}, false
		}
		w, h = size, size
	}
	if w <= 0 {
		return domain.Region{}, false
	}
	return domain.Region{ID: el.id(), Width: w, Height: h}, true
}

// parseLength reads the leading number of an SVG length such as "16", "16.0px" or "1e1".
func parseLength(s string) (float64, bool) {
	m := lengthPattern.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// sizeFromID extracts a plausible pixel size from an identifier.
func sizeFromID(id string) (float64, bool) {
	for _, p := range idPatterns {
		m := p.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < minPlausible || n > maxPlausible {
			continue
		}
		return float64(n), true
	}
	return 0, false
}

// snapRegions maps regions onto candidates. The first region to claim a size wins; regions that do not
// snap are dropped.
func snapRegions(regions []domain.Region, candidates []int, tolerance float64) map[int]string {
	out := make(map[int]string)
	for _, r := range regions {
		size, ok := domain.SnapSizeTo(candidates, r.Width, tolerance)
		if !ok {
			continue
		}
		if _, taken := out[size]; taken {
			continue
		}
		out[size] = r.ID
	}
	return out
}
