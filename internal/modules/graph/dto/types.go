package dto

type NodeOutput struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Title string `json:"title,omitempty"`
}

type EdgeOutput struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type RelationshipOutput struct {
	Person      string `json:"person"`
	Disease     string `json:"disease"`
	Description string `json:"description,omitempty"`
}

type GraphOutput struct {
	Focus         string               `json:"focus"`
	Relationships []RelationshipOutput `json:"relationships"`
	Nodes         []NodeOutput         `json:"nodes"`
	Edges         []EdgeOutput         `json:"edges"`
}

type FocusInput struct {
	Person string `validate:"required,max=120"`
	Label  string
}

// LinkInput names the relationship to create or delete. An empty Person
// means the current focus.
type LinkInput struct {
	Person  string `validate:"max=120"`
	Disease string `validate:"required,max=120"`
}

type MutationOutput struct {
	Message string      `json:"message"`
	Graph   GraphOutput `json:"graph"`
}
