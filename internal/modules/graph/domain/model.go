package domain

import (
	"fmt"

	apperrors "medgraph/internal/platform/errors"
)

type NodeKind string

const (
	NodeKindPerson  NodeKind = "person"
	NodeKindDisease NodeKind = "disease"
)

// Focus is the patient the graph is drawn around.
type Focus struct {
	ID    string
	Label string
}

// Relationship is one Person -> Disease edge as reported by the backend.
// Description is optional and becomes the disease node's tooltip.
type Relationship struct {
	Person      string
	Disease     string
	Description string
}

func (r Relationship) String() string {
	return r.Person + " -> " + r.Disease
}

type Node struct {
	ID    string
	Label string
	Kind  NodeKind
	Title string
}

type Edge struct {
	From string
	To   string
}

type Structure struct {
	Nodes []Node
	Edges []Edge
}

func (s Structure) Empty() bool {
	return len(s.Nodes) == 0 && len(s.Edges) == 0
}

// Node ids are namespaced by kind so a person and a disease sharing a name
// stay distinct.
func PersonNodeID(name string) string  { return "person:" + name }
func DiseaseNodeID(name string) string { return "disease:" + name }

// Build derives the graph for focus. Diseases are deduplicated in first
// occurrence order; every relationship entry yields one edge, in input order.
func Build(focus *Focus, relationships []Relationship) (Structure, error) {
	if focus == nil {
		if len(relationships) > 0 {
			return Structure{}, fmt.Errorf("%w: %d relationships without a focus", apperrors.ErrContractViolation, len(relationships))
		}
		return Structure{}, nil
	}
	label := focus.Label
	if label == "" {
		label = focus.ID
	}
	focusID := PersonNodeID(focus.ID)
	s := Structure{
		Nodes: []Node{{ID: focusID, Label: label, Kind: NodeKindPerson}},
		Edges: make([]Edge, 0, len(relationships)),
	}
	seen := make(map[string]int, len(relationships))
	for _, rel := range relationships {
		if rel.Person != focus.ID {
			return Structure{}, fmt.Errorf("%w: relationship %s does not belong to %q", apperrors.ErrContractViolation, rel, focus.ID)
		}
		diseaseID := DiseaseNodeID(rel.Disease)
		if idx, ok := seen[diseaseID]; ok {
			if s.Nodes[idx].Title == "" {
				s.Nodes[idx].Title = rel.Description
			}
		} else {
			seen[diseaseID] = len(s.Nodes)
			s.Nodes = append(s.Nodes, Node{ID: diseaseID, Label: rel.Disease, Kind: NodeKindDisease, Title: rel.Description})
		}
		s.Edges = append(s.Edges, Edge{From: focusID, To: diseaseID})
	}
	return s, nil
}
