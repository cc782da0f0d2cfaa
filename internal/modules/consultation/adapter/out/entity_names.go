package out

import (
	"context"

	"medgraph/internal/modules/consultation/domain"
	entityin "medgraph/internal/modules/entity/port/in"
)

// EntityNames resolves patients through the entity cache.
type EntityNames struct {
	entities entityin.Usecase
}

func NewEntityNames(entities entityin.Usecase) *EntityNames {
	return &EntityNames{entities: entities}
}

func (n *EntityNames) Person(ctx context.Context, name string) (domain.Patient, bool) {
	e, ok := n.entities.Person(ctx, name)
	if !ok {
		return domain.Patient{}, false
	}
	return domain.Patient{Name: e.ID, Age: e.Age, HasAge: true}, true
}
