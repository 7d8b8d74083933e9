// Package svg resolves master vector documents into export layouts.
package svg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LayoutResolver = (*Resolver)(nil)

// minStrictRegions is the number of baseplate regions below which the permissive pass runs.
const minStrictRegions = 2

// Resolver implements ports.LayoutResolver over SVG documents.
type Resolver struct {
	tolerance float64
	logger    ports.Logger
}

// NewResolver creates a Resolver snapping with the given relative tolerance.
func NewResolver(tolerance float64, logger ports.Logger) *Resolver {
	if tolerance <= 0 {
		tolerance = domain.DefaultSnapTolerance
	}
	return &Resolver{tolerance: tolerance, logger: logger}
}

// Resolve parses source and returns its layout, or domain.ErrNotMasterDocument.
func (r *Resolver) Resolve(ctx context.Context, source, defaultContext string) (*domain.MasterLayout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(source) //nolint:gosec // source paths come from the icon theme
	if err != nil {
		return nil, domain.Classify(domain.ErrSourceStatFailed, zerr.With(err, "source", source))
	}
	defer f.Close() //nolint:errcheck // read-only

	root, err := parseDocument(f)
	if err != nil {
		return nil, err
	}

	regions := strictRegions(root)
	if len(regions) < minStrictRegions {
		r.logger.Debug(fmt.Sprintf("%s: %d baseplate regions, scanning whole document", source, len(regions)))
		regions = mergeRegions(regions, permissiveRegions(root))
	}

	snapped := snapRegions(regions, domain.CanonicalSizes, r.tolerance)
	if len(snapped) == 0 {
		return nil, domain.Classify(domain.ErrNotMasterDocument, zerr.With(zerr.New("no regions found"), "source", source))
	}

	scope := root
	if bp := findBaseplate(root); bp != nil {
		scope = bp
	}

	name := markerIn(scope, root, iconNameMarker)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	if name == "" {
		return nil, domain.Classify(domain.ErrNotMasterDocument, zerr.With(zerr.New("no icon name"), "source", source))
	}

	iconContext := markerIn(scope, root, contextMarker)
	if iconContext == "" {
		iconContext = defaultContext
	}

	return &domain.MasterLayout{IconName: name, Context: iconContext, Regions: snapped}, nil
}

// markerIn looks for key in scope first, then the whole document.
func markerIn(scope, root *element, key string) string {
	if v := findMarker(scope, key); v != "" {
		return v
	}
	if scope != root {
		return findMarker(root, key)
	}
	return ""
}
