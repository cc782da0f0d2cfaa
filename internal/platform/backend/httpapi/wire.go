package httpapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"medgraph/internal/platform/backend"
)

// text accepts a JSON string, number, bool or null. Intake forms post
// measurements in whichever shape the browser produced.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
	default:
		*t = text(b)
	}
	return nil
}

// count accepts an integer encoded as a number or a numeric string.
type count int

func (c *count) UnmarshalJSON(b []byte) error {
	var t text
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	s := strings.TrimSpace(string(t))
	if s == "" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*c = count(f)
	return nil
}

type personJSON struct {
	Name text  `json:"name"`
	Age  count `json:"age"`
}

type diseaseJSON struct {
	Name        text `json:"name"`
	Description text `json:"description"`
}

// relationshipJSON keeps the service's dotted Cypher column names.
type relationshipJSON struct {
	Name        text `json:"d.name"`
	Description text `json:"d.description"`
}

type diagnosedJSON struct {
	Patient  text  `json:"patient_name"`
	Age      count `json:"age"`
	Doctor   text  `json:"doctor"`
	Date     text  `json:"diagnosed_date"`
	Severity text  `json:"severity"`
}

type recordJSON struct {
	Patient   personJSON `json:"patient"`
	Diagnoses []struct {
		Disease  text `json:"disease"`
		Doctor   text `json:"doctor"`
		Date     text `json:"date"`
		Notes    text `json:"notes"`
		Severity text `json:"severity"`
		Status   text `json:"status"`
	} `json:"diagnoses"`
	Prescriptions []struct {
		Medication text `json:"medication"`
		Dosage     text `json:"dosage"`
		Frequency  text `json:"frequency"`
		Doctor     text `json:"doctor"`
		Duration   text `json:"duration"`
		Date       text `json:"date"`
		Status     text `json:"status"`
		Notes      text `json:"notes"`
	} `json:"prescriptions"`
	Vitals []struct {
		BloodPressure text `json:"blood_pressure"`
		HeartRate     text `json:"heart_rate"`
		Temperature   text `json:"temperature"`
		Weight        text `json:"weight"`
		Height        text `json:"height"`
		BMI           text `json:"bmi"`
		Date          text `json:"date"`
	} `json:"vitals"`
	History []struct {
		Condition     text `json:"condition"`
		DateDiagnosed text `json:"date_diagnosed"`
		Resolved      bool `json:"resolved"`
		Notes         text `json:"notes"`
	} `json:"medical_history"`
}

func (r recordJSON) toRecord() backend.MedicalRecord {
	rec := backend.MedicalRecord{
		Patient:       backend.Person{Name: string(r.Patient.Name), Age: int(r.Patient.Age)},
		Diagnoses:     make([]backend.Diagnosis, 0, len(r.Diagnoses)),
		Prescriptions: make([]backend.Prescription, 0, len(r.Prescriptions)),
		Vitals:        make([]backend.Vitals, 0, len(r.Vitals)),
		History:       make([]backend.HistoryEntry, 0, len(r.History)),
	}
	for _, d := range r.Diagnoses {
		rec.Diagnoses = append(rec.Diagnoses, backend.Diagnosis{
			Disease: string(d.Disease), Doctor: string(d.Doctor), Date: string(d.Date),
			Notes: string(d.Notes), Severity: string(d.Severity), Status: string(d.Status),
		})
	}
	for _, p := range r.Prescriptions {
		rec.Prescriptions = append(rec.Prescriptions, backend.Prescription{
			Medication: string(p.Medication), Dosage: string(p.Dosage), Frequency: string(p.Frequency),
			Doctor: string(p.Doctor), Duration: string(p.Duration), Date: string(p.Date),
			Status: string(p.Status), Notes: string(p.Notes),
		})
	}
	for _, v := range r.Vitals {
		rec.Vitals = append(rec.Vitals, backend.Vitals{
			BloodPressure: string(v.BloodPressure), HeartRate: string(v.HeartRate),
			Temperature: string(v.Temperature), Weight: string(v.Weight), Height: string(v.Height),
			BMI: string(v.BMI), RecordedAt: string(v.Date),
		})
	}
	for _, h := range r.History {
		rec.History = append(rec.History, backend.HistoryEntry{
			Condition: string(h.Condition), DateDiagnosed: string(h.DateDiagnosed),
			Resolved: h.Resolved, Notes: string(h.Notes),
		})
	}
	return rec
}

func toPersons(rows []personJSON) []backend.Person {
	out := make([]backend.Person, 0, len(rows))
	for _, r := range rows {
		out = append(out, backend.Person{Name: string(r.Name), Age: int(r.Age)})
	}
	return out
}
