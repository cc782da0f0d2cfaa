package out

import (
	"context"

	"medgraph/internal/modules/entity/domain"
	"medgraph/internal/platform/backend"
)

type BackendDirectory struct {
	api backend.Backend
}

func NewBackendDirectory(api backend.Backend) *BackendDirectory {
	return &BackendDirectory{api: api}
}

func (d *BackendDirectory) ListPersons(ctx context.Context) ([]domain.Entity, error) {
	persons, err := d.api.ListPersons(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Entity, 0, len(persons))
	for _, p := range persons {
		out = append(out, domain.NewPerson(p.Name, p.Age))
	}
	return out, nil
}

func (d *BackendDirectory) ListDiseases(ctx context.Context) ([]domain.Entity, error) {
	diseases, err := d.api.ListDiseases(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Entity, 0, len(diseases))
	for _, x := range diseases {
		out = append(out, domain.NewDisease(x.Name, x.Description))
	}
	return out, nil
}

func (d *BackendDirectory) CreatePerson(ctx context.Context, name string, age int) (string, error) {
	res, err := d.api.CreatePerson(ctx, name, age)
	if err != nil {
		return "", err
	}
	return res.Message, res.Err()
}

func (d *BackendDirectory) CreateDisease(ctx context.Context, name, description string) (string, error) {
	res, err := d.api.CreateDisease(ctx, name, description)
	if err != nil {
		return "", err
	}
	return res.Message, res.Err()
}
