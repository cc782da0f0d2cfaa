package out

import (
	"context"

	"medgraph/internal/modules/graph/domain"
)

// RelationshipStore fetches and mutates the person's edge set. Link and
// Unlink return the backend's confirmation text, or an apperrors.Rejection.
type RelationshipStore interface {
	Relationships(ctx context.Context, person string) ([]domain.Relationship, error)
	Link(ctx context.Context, person, disease string) (string, error)
	Unlink(ctx context.Context, person, disease string) (string, error)
}

// Surface creates rendering instances.
type Surface interface {
	Mount(s domain.Structure, opts domain.VisualOptions) (Instance, error)
}

// Instance is one live rendering. SetData swaps the data while keeping
// layout and camera state.
type Instance interface {
	SetData(s domain.Structure) error
	Render(width, height int) string
	Pan(dx, dy float64)
	Zoom(factor float64)
	Hover(step int) (title string)
	Destroy()
}
