package in

import (
	"context"

	"medgraph/internal/modules/entity/dto"
	entityin "medgraph/internal/modules/entity/port/in"
)

type CLIHandler struct {
	usecase entityin.Usecase
}

func NewCLIHandler(usecase entityin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) CreatePerson(ctx context.Context, name string, age int) (dto.MutationOutput, error) {
	return h.usecase.CreatePerson(ctx, dto.CreatePersonInput{Name: name, Age: age})
}

func (h CLIHandler) CreateDisease(ctx context.Context, name, description string) (dto.MutationOutput, error) {
	return h.usecase.CreateDisease(ctx, dto.CreateDiseaseInput{Name: name, Description: description})
}

func (h CLIHandler) ListPersons(ctx context.Context) ([]dto.EntityOutput, error) {
	return h.usecase.ListPersons(ctx)
}

func (h CLIHandler) ListDiseases(ctx context.Context) ([]dto.EntityOutput, error) {
	return h.usecase.ListDiseases(ctx)
}
