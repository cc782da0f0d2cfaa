package id

import (
	"strings"

	"github.com/google/uuid"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// DisplayID produces "MR-" followed by nine uppercase characters. The value
// labels a consultation panel on screen and is never a clinical record key.
type DisplayID struct{}

func (DisplayID) New() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "MR-" + raw[:9]
}
