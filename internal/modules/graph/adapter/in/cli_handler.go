package in

import (
	"context"

	"medgraph/internal/modules/graph/dto"
	graphin "medgraph/internal/modules/graph/port/in"
)

type CLIHandler struct {
	usecase graphin.Usecase
}

func NewCLIHandler(usecase graphin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Show focuses person and returns the data plus a text rendering.
func (h CLIHandler) Show(ctx context.Context, person string, width, height int) (dto.GraphOutput, string, error) {
	out, err := h.usecase.Focus(ctx, dto.FocusInput{Person: person})
	if err != nil {
		return dto.GraphOutput{}, "", err
	}
	return out, h.usecase.Render(width, height), nil
}

func (h CLIHandler) Link(ctx context.Context, person, disease string) (dto.MutationOutput, error) {
	return h.usecase.Link(ctx, dto.LinkInput{Person: person, Disease: disease})
}

func (h CLIHandler) Unlink(ctx context.Context, person, disease string) (dto.MutationOutput, error) {
	return h.usecase.Unlink(ctx, dto.LinkInput{Person: person, Disease: disease})
}
