package usecase

import (
	"context"

	"medgraph/internal/modules/entity/domain"
	"medgraph/internal/modules/entity/dto"
	entityin "medgraph/internal/modules/entity/port/in"
	"medgraph/internal/modules/entity/service"
	"medgraph/internal/platform/validation"
)

type Interactor struct {
	svc *service.CatalogService
}

func NewInteractor(svc *service.CatalogService) entityin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Refresh(ctx context.Context) error {
	return i.svc.Refresh(ctx)
}

func (i *Interactor) ListPersons(ctx context.Context) ([]dto.EntityOutput, error) {
	persons, err := i.svc.Persons(ctx)
	if err != nil {
		return nil, err
	}
	return mapEntities(persons), nil
}

func (i *Interactor) ListDiseases(ctx context.Context) ([]dto.EntityOutput, error) {
	diseases, err := i.svc.Diseases(ctx)
	if err != nil {
		return nil, err
	}
	return mapEntities(diseases), nil
}

func (i *Interactor) Person(ctx context.Context, name string) (dto.EntityOutput, bool) {
	e, ok := i.svc.Lookup(ctx, domain.KindPerson, name)
	if !ok {
		return dto.EntityOutput{}, false
	}
	return mapEntity(e), true
}

func (i *Interactor) Disease(ctx context.Context, name string) (dto.EntityOutput, bool) {
	e, ok := i.svc.Lookup(ctx, domain.KindDisease, name)
	if !ok {
		return dto.EntityOutput{}, false
	}
	return mapEntity(e), true
}

func (i *Interactor) CreatePerson(ctx context.Context, input dto.CreatePersonInput) (dto.MutationOutput, error) {
	if err := validation.Struct(input); err != nil {
		return dto.MutationOutput{}, err
	}
	msg, err := i.svc.CreatePerson(ctx, input.Name, input.Age)
	if err != nil {
		return dto.MutationOutput{}, err
	}
	return dto.MutationOutput{Message: msg}, nil
}

func (i *Interactor) CreateDisease(ctx context.Context, input dto.CreateDiseaseInput) (dto.MutationOutput, error) {
	if err := validation.Struct(input); err != nil {
		return dto.MutationOutput{}, err
	}
	msg, err := i.svc.CreateDisease(ctx, input.Name, input.Description)
	if err != nil {
		return dto.MutationOutput{}, err
	}
	return dto.MutationOutput{Message: msg}, nil
}

func mapEntities(entities []domain.Entity) []dto.EntityOutput {
	out := make([]dto.EntityOutput, 0, len(entities))
	for _, e := range entities {
		out = append(out, mapEntity(e))
	}
	return out
}

func mapEntity(e domain.Entity) dto.EntityOutput {
	out := dto.EntityOutput{ID: e.ID, Kind: string(e.Kind)}
	switch e.Kind {
	case domain.KindPerson:
		out.Age, _ = e.Age()
	case domain.KindDisease:
		out.Description = e.Description()
		out.ICD10 = domain.ICD10(out.Description)
	}
	return out
}
