package in

import (
	"context"

	"medgraph/internal/modules/search/dto"
	searchin "medgraph/internal/modules/search/port/in"
)

type CLIHandler struct {
	usecase searchin.Usecase
}

func NewCLIHandler(usecase searchin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Search(ctx context.Context, query string) ([]dto.CandidateOutput, error) {
	return h.usecase.Search(ctx, query)
}
