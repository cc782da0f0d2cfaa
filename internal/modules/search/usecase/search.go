package usecase

import (
	"context"

	"medgraph/internal/modules/search/domain"
	"medgraph/internal/modules/search/dto"
	searchin "medgraph/internal/modules/search/port/in"
	searchout "medgraph/internal/modules/search/port/out"
	"medgraph/internal/modules/search/service"
)

type Interactor struct {
	controller *service.Controller
	feed       searchout.PanelFeed
}

func NewInteractor(controller *service.Controller, feed searchout.PanelFeed) searchin.Usecase {
	return &Interactor{controller: controller, feed: feed}
}

func (i *Interactor) OnInput(ctx context.Context, text string) {
	i.controller.OnInput(ctx, text)
}

func (i *Interactor) Select(name string) (dto.CandidateOutput, error) {
	c, err := i.controller.Select(name)
	if err != nil {
		return dto.CandidateOutput{}, err
	}
	return toOutput(c), nil
}

func (i *Interactor) Dismiss() {
	i.controller.Dismiss()
}

func (i *Interactor) Subscribe(fn func(name string)) {
	i.controller.Subscribe(fn)
}

func (i *Interactor) Updates() <-chan struct{} {
	return i.feed.Changed()
}

func (i *Interactor) Panel() dto.PanelUpdate {
	return i.feed.Snapshot()
}

func (i *Interactor) Search(ctx context.Context, query string) ([]dto.CandidateOutput, error) {
	found, err := i.controller.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CandidateOutput, 0, len(found))
	for _, c := range found {
		out = append(out, toOutput(c))
	}
	return out, nil
}

func toOutput(c domain.Candidate) dto.CandidateOutput {
	return dto.CandidateOutput{Name: c.ID, Age: c.Age}
}
