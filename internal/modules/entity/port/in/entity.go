package in

import (
	"context"

	"medgraph/internal/modules/entity/dto"
)

type Usecase interface {
	Refresh(ctx context.Context) error
	ListPersons(ctx context.Context) ([]dto.EntityOutput, error)
	ListDiseases(ctx context.Context) ([]dto.EntityOutput, error)
	Person(ctx context.Context, name string) (dto.EntityOutput, bool)
	Disease(ctx context.Context, name string) (dto.EntityOutput, bool)
	CreatePerson(ctx context.Context, input dto.CreatePersonInput) (dto.MutationOutput, error)
	CreateDisease(ctx context.Context, input dto.CreateDiseaseInput) (dto.MutationOutput, error)
}
