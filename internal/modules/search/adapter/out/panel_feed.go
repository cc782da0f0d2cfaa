package out

import (
	"sync"

	"medgraph/internal/modules/search/domain"
	"medgraph/internal/modules/search/dto"
)

// PanelFeed keeps only the newest panel state. Writers never block; a reader
// woken by Changed always sees the latest snapshot.
type PanelFeed struct {
	mu      sync.Mutex
	state   dto.PanelUpdate
	changed chan struct{}
}

func NewPanelFeed() *PanelFeed {
	return &PanelFeed{changed: make(chan struct{}, 1)}
}

func (p *PanelFeed) ShowResults(query string, results []domain.Candidate) {
	out := make([]dto.CandidateOutput, 0, len(results))
	for _, c := range results {
		out = append(out, dto.CandidateOutput{Name: c.ID, Age: c.Age})
	}
	p.set(dto.PanelUpdate{Query: query, Open: true, Results: out})
}

func (p *PanelFeed) ShowEmpty(query, message string) {
	p.set(dto.PanelUpdate{Query: query, Open: true, Message: message})
}

func (p *PanelFeed) Close(selected string) {
	p.set(dto.PanelUpdate{Selected: selected})
}

func (p *PanelFeed) Changed() <-chan struct{} { return p.changed }

func (p *PanelFeed) Snapshot() dto.PanelUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *PanelFeed) set(state dto.PanelUpdate) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
	select {
	case p.changed <- struct{}{}:
	default:
	}
}
