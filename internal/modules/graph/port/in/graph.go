package in

import (
	"context"
	"time"

	"medgraph/internal/modules/graph/dto"
)

type Usecase interface {
	Focus(ctx context.Context, input dto.FocusInput) (dto.GraphOutput, error)
	Refresh(ctx context.Context) (dto.GraphOutput, error)
	Link(ctx context.Context, input dto.LinkInput) (dto.MutationOutput, error)
	Unlink(ctx context.Context, input dto.LinkInput) (dto.MutationOutput, error)
	Clear()
	Current() (string, bool)

	Render(width, height int) string
	Pan(dx, dy float64)
	Zoom(factor float64)
	Hover(step int) string
	TooltipDelay() time.Duration
}
