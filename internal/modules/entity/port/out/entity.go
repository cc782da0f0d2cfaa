package out

import (
	"context"

	"medgraph/internal/modules/entity/domain"
)

// Directory is the backend view of persons and diseases. Mutations return the
// service's confirmation message; a refusal is an apperrors.Rejection.
type Directory interface {
	ListPersons(ctx context.Context) ([]domain.Entity, error)
	ListDiseases(ctx context.Context) ([]domain.Entity, error)
	CreatePerson(ctx context.Context, name string, age int) (string, error)
	CreateDisease(ctx context.Context, name, description string) (string, error)
}
