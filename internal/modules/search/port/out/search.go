package out

import (
	"context"

	"medgraph/internal/modules/search/domain"
	"medgraph/internal/modules/search/dto"
)

type Lookup interface {
	SearchPersons(ctx context.Context, query string) ([]domain.Candidate, error)
}

// Panel is the results surface. The controller is its only writer.
type Panel interface {
	ShowResults(query string, results []domain.Candidate)
	ShowEmpty(query, message string)
	Close(selected string)
}

// PanelFeed is a Panel that can be observed by a render loop.
type PanelFeed interface {
	Panel
	Changed() <-chan struct{}
	Snapshot() dto.PanelUpdate
}
