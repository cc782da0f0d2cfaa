package usecase

import (
	"context"
	"time"

	"medgraph/internal/modules/graph/domain"
	"medgraph/internal/modules/graph/dto"
	graphin "medgraph/internal/modules/graph/port/in"
	graphout "medgraph/internal/modules/graph/port/out"
	"medgraph/internal/modules/graph/service"
	"medgraph/internal/platform/validation"
)

type Interactor struct {
	svc *service.GraphService
}

func NewInteractor(svc *service.GraphService) graphin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Focus(ctx context.Context, input dto.FocusInput) (dto.GraphOutput, error) {
	if err := validation.Struct(input); err != nil {
		return dto.GraphOutput{}, err
	}
	view, err := i.svc.Focus(ctx, domain.Focus{ID: input.Person, Label: input.Label})
	if err != nil {
		return dto.GraphOutput{}, err
	}
	return mapView(view), nil
}

func (i *Interactor) Refresh(ctx context.Context) (dto.GraphOutput, error) {
	view, err := i.svc.Refresh(ctx)
	if err != nil {
		return dto.GraphOutput{}, err
	}
	return mapView(view), nil
}

func (i *Interactor) Link(ctx context.Context, input dto.LinkInput) (dto.MutationOutput, error) {
	if err := validation.Struct(input); err != nil {
		return dto.MutationOutput{}, err
	}
	msg, view, err := i.svc.Link(ctx, input.Person, input.Disease)
	return dto.MutationOutput{Message: msg, Graph: mapView(view)}, err
}

func (i *Interactor) Unlink(ctx context.Context, input dto.LinkInput) (dto.MutationOutput, error) {
	if err := validation.Struct(input); err != nil {
		return dto.MutationOutput{}, err
	}
	msg, view, err := i.svc.Unlink(ctx, input.Person, input.Disease)
	return dto.MutationOutput{Message: msg, Graph: mapView(view)}, err
}

func (i *Interactor) Clear() {
	i.svc.Clear()
}

func (i *Interactor) Current() (string, bool) {
	focus, ok := i.svc.Current()
	return focus.ID, ok
}

func (i *Interactor) Render(width, height int) string {
	var out string
	i.svc.Viewport().With(func(inst graphout.Instance) {
		out = inst.Render(width, height)
	})
	return out
}

func (i *Interactor) Pan(dx, dy float64) {
	i.svc.Viewport().With(func(inst graphout.Instance) { inst.Pan(dx, dy) })
}

func (i *Interactor) Zoom(factor float64) {
	i.svc.Viewport().With(func(inst graphout.Instance) { inst.Zoom(factor) })
}

func (i *Interactor) Hover(step int) string {
	var title string
	i.svc.Viewport().With(func(inst graphout.Instance) {
		title = inst.Hover(step)
	})
	return title
}

func (i *Interactor) TooltipDelay() time.Duration {
	return i.svc.Viewport().Options().TooltipDelay
}

func mapView(view service.View) dto.GraphOutput {
	out := dto.GraphOutput{
		Focus:         view.Focus.ID,
		Relationships: make([]dto.RelationshipOutput, 0, len(view.Relationships)),
		Nodes:         make([]dto.NodeOutput, 0, len(view.Structure.Nodes)),
		Edges:         make([]dto.EdgeOutput, 0, len(view.Structure.Edges)),
	}
	for _, rel := range view.Relationships {
		out.Relationships = append(out.Relationships, dto.RelationshipOutput{
			Person:      rel.Person,
			Disease:     rel.Disease,
			Description: rel.Description,
		})
	}
	for _, node := range view.Structure.Nodes {
		out.Nodes = append(out.Nodes, dto.NodeOutput{
			ID:    node.ID,
			Label: node.Label,
			Kind:  string(node.Kind),
			Title: node.Title,
		})
	}
	for _, edge := range view.Structure.Edges {
		out.Edges = append(out.Edges, dto.EdgeOutput{From: edge.From, To: edge.To})
	}
	return out
}
