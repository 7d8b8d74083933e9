package ports

import "go.trai.ch/iconsmith/internal/core/domain"

// Deliverer marshals render completions onto the presentation loop.
// Post is safe to call from any goroutine and never invokes cb itself.
//
//go:generate go run go.uber.org/mock/mockgen -source=delivery.go -destination=mocks/mock_delivery.go -package=mocks
type Deliverer interface {
	Post(cb domain.Callback, res domain.RenderResult)
}
