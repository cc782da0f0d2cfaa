package out

import (
	"context"

	"medgraph/internal/modules/graph/domain"
	"medgraph/internal/platform/backend"
)

type BackendRelationships struct {
	api backend.Backend
}

func NewBackendRelationships(api backend.Backend) *BackendRelationships {
	return &BackendRelationships{api: api}
}

func (r *BackendRelationships) Relationships(ctx context.Context, person string) ([]domain.Relationship, error) {
	diseases, err := r.api.PersonDiseases(ctx, person)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Relationship, 0, len(diseases))
	for _, d := range diseases {
		out = append(out, domain.Relationship{Person: person, Disease: d.Name, Description: d.Description})
	}
	return out, nil
}

func (r *BackendRelationships) Link(ctx context.Context, person, disease string) (string, error) {
	res, err := r.api.CreateRelationship(ctx, person, disease)
	if err != nil {
		return "", err
	}
	return res.Message, res.Err()
}

func (r *BackendRelationships) Unlink(ctx context.Context, person, disease string) (string, error) {
	res, err := r.api.DeleteRelationship(ctx, person, disease)
	if err != nil {
		return "", err
	}
	return res.Message, res.Err()
}
