package ports

import (
	"context"

	"go.trai.ch/iconsmith/internal/core/domain"
)

// LayoutResolver turns a master vector document into a MasterLayout.
//
//go:generate go run go.uber.org/mock/mockgen -source=layout_resolver.go -destination=mocks/mock_layout_resolver.go -package=mocks
type LayoutResolver interface {
	// Resolve returns domain.ErrNotMasterDocument when no icon name or no region can be determined.
	Resolve(ctx context.Context, source, defaultContext string) (*domain.MasterLayout, error)
}
