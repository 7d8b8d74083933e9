package vector

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the in-process rasterizer Graft node.
const NodeID graft.ID = "adapter.vector"

func init() {
	graft.Register(graft.Node[*Rasterizer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Rasterizer, error) {
			return New(), nil
		},
	})
}
