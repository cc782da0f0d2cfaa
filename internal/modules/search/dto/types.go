package dto

type CandidateOutput struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// PanelUpdate is the state of the results panel after a controller change.
// Open=false with Selected set means a result was chosen.
type PanelUpdate struct {
	Query    string
	Open     bool
	Message  string
	Results  []CandidateOutput
	Selected string
}
