package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Kind string

const (
	KindPerson  Kind = "person"
	KindDisease Kind = "disease"
)

const (
	AttrAge         = "age"
	AttrDescription = "description"
)

// Entity is a person or disease as last fetched. The ID is the display name,
// unique within its kind.
type Entity struct {
	ID         string
	Kind       Kind
	Attributes map[string]string
}

func NewPerson(name string, age int) Entity {
	return Entity{ID: name, Kind: KindPerson, Attributes: map[string]string{AttrAge: strconv.Itoa(age)}}
}

func NewDisease(name, description string) Entity {
	return Entity{ID: name, Kind: KindDisease, Attributes: map[string]string{AttrDescription: description}}
}

func (e Entity) Age() (int, bool) {
	v, ok := e.Attributes[AttrAge]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (e Entity) Description() string {
	return e.Attributes[AttrDescription]
}

func (k Kind) Validate() error {
	switch k {
	case KindPerson, KindDisease:
		return nil
	default:
		return fmt.Errorf("unsupported entity kind %q", string(k))
	}
}

var icd10Pattern = regexp.MustCompile(`\(ICD-10: ([A-Z]\d{2}\.?\d*)\)`)

// ICD10 extracts the code embedded in a disease description as
// "(ICD-10: J11.1)". It returns "N/A" when no code is present.
func ICD10(description string) string {
	m := icd10Pattern.FindStringSubmatch(description)
	if len(m) < 2 {
		return "N/A"
	}
	return m[1]
}

// Summary strips the ICD-10 suffix from a description.
func Summary(description string) string {
	return strings.TrimSpace(icd10Pattern.ReplaceAllString(description, ""))
}
