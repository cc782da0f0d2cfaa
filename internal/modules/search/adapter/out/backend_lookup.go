package out

import (
	"context"

	"medgraph/internal/modules/search/domain"
	"medgraph/internal/platform/backend"
)

type BackendLookup struct {
	api backend.Backend
}

func NewBackendLookup(api backend.Backend) *BackendLookup {
	return &BackendLookup{api: api}
}

func (l *BackendLookup) SearchPersons(ctx context.Context, query string) ([]domain.Candidate, error) {
	persons, err := l.api.SearchPersons(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Candidate, 0, len(persons))
	for _, p := range persons {
		out = append(out, domain.Candidate{ID: p.Name, Label: p.Name, Age: p.Age})
	}
	return out, nil
}
