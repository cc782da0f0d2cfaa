package domain

import (
	"math"
	"strconv"
	"strings"
)

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
	StatusChronic  Status = "chronic"
)

type Patient struct {
	Name   string
	Age    int
	HasAge bool
}

type Diagnosis struct {
	Disease  string
	Doctor   string
	Date     string
	Notes    string
	Severity Severity
	Status   Status
}

type Vitals struct {
	BloodPressure string
	HeartRate     string
	Temperature   string
	Weight        string
	Height        string
	BMI           string
	RecordedAt    string
	Notes         string
}

type Prescription struct {
	Medication string
	Dosage     string
	Frequency  string
	Doctor     string
	Duration   string
	Date       string
	Status     Status
	Notes      string
}

type HistoryEntry struct {
	Condition     string
	DateDiagnosed string
	Resolved      bool
	Notes         string
}

// Record is one patient's consultation view. It is rebuilt whole on every
// fetch. DisplayID labels the panel and is not a clinical identifier.
type Record struct {
	DisplayID     string
	Patient       Patient
	Diagnoses     []Diagnosis
	Vitals        []Vitals
	Prescriptions []Prescription
	History       []HistoryEntry
}

func (r Record) ActiveDiagnoses() []Diagnosis {
	out := make([]Diagnosis, 0, len(r.Diagnoses))
	for _, d := range r.Diagnoses {
		if d.Status == StatusActive {
			out = append(out, d)
		}
	}
	return out
}

func (r Record) ActivePrescriptions() []Prescription {
	out := make([]Prescription, 0, len(r.Prescriptions))
	for _, p := range r.Prescriptions {
		if p.Status == StatusActive {
			out = append(out, p)
		}
	}
	return out
}

// BMI is weight(kg) / height(m)^2 to one decimal. It is blank when either
// input is missing, unparsable or not positive.
func BMI(weight, height string) string {
	w, okW := positive(weight)
	h, okH := positive(height)
	if !okW || !okH {
		return ""
	}
	meters := h / 100
	return strconv.FormatFloat(w/(meters*meters), 'f', 1, 64)
}

func positive(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

type VitalsEntry struct {
	BloodPressure string
	HeartRate     string
	Temperature   string
	Weight        string
	Height        string
	Notes         string
}

type NewDiagnosis struct {
	Patient  string
	Disease  string
	Doctor   string
	Severity Severity
	Notes    string
}

type StatusChange struct {
	Patient string
	Disease string
	Status  Status
	Notes   string
}

type NewPrescription struct {
	Medication string
	Dosage     string
	Frequency  string
	Doctor     string
	Duration   string
	Notes      string
}
