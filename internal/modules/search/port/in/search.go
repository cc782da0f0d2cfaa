package in

import (
	"context"

	"medgraph/internal/modules/search/dto"
)

type Usecase interface {
	OnInput(ctx context.Context, text string)
	Select(name string) (dto.CandidateOutput, error)
	Dismiss()
	Subscribe(fn func(name string))
	Updates() <-chan struct{}
	Panel() dto.PanelUpdate
	Search(ctx context.Context, query string) ([]dto.CandidateOutput, error)
}
