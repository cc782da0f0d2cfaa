// Package backend describes the medical records service the client talks to.
// The service owns persistence and business rules; implementations here only
// translate calls onto a concrete transport (REST, Neo4j, embedded SQLite).
package backend

import (
	"context"
	"io"

	apperrors "medgraph/internal/platform/errors"
)

// Backend is the full capability surface consumed by medgraph. Mutations
// return the service's Result envelope for business outcomes; the error is
// reserved for transport and server failures.
type Backend interface {
	io.Closer

	ListPersons(ctx context.Context) ([]Person, error)
	ListDiseases(ctx context.Context) ([]Disease, error)
	SearchPersons(ctx context.Context, query string) ([]Person, error)
	PersonDiseases(ctx context.Context, person string) ([]Disease, error)
	MedicalRecord(ctx context.Context, person string) (MedicalRecord, error)
	SearchByDiagnosis(ctx context.Context, disease string) ([]DiagnosedPatient, error)

	CreatePerson(ctx context.Context, name string, age int) (Result, error)
	CreateDisease(ctx context.Context, name, description string) (Result, error)
	CreateRelationship(ctx context.Context, person, disease string) (Result, error)
	DeleteRelationship(ctx context.Context, person, disease string) (Result, error)
	RecordVitals(ctx context.Context, person string, vitals VitalsInput) (Result, error)
	AddDiagnosis(ctx context.Context, diagnosis DiagnosisInput) (Result, error)
	UpdateDiagnosisStatus(ctx context.Context, update StatusUpdate) (Result, error)
	AddPrescription(ctx context.Context, person string, rx PrescriptionInput) (Result, error)
}

// SearchLimit caps SearchPersons results.
const SearchLimit = 20

// Result mirrors the service's {success, message} mutation envelope.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Err folds the envelope into an error: nil on success, a Rejection carrying
// the service message otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return apperrors.Reject(r.Message)
}

type Person struct {
	Name string
	Age  int
}

type Disease struct {
	Name        string
	Description string
}

// MedicalRecord is the full chart of one patient. Measurement fields are kept
// as entered because the service stores whatever the intake form submitted.
type MedicalRecord struct {
	Patient       Person
	Diagnoses     []Diagnosis
	Vitals        []Vitals
	Prescriptions []Prescription
	History       []HistoryEntry
}

type Diagnosis struct {
	Disease  string
	Doctor   string
	Date     string
	Notes    string
	Severity string
	Status   string
}

type Vitals struct {
	BloodPressure string
	HeartRate     string
	Temperature   string
	Weight        string
	Height        string
	BMI           string
	RecordedAt    string
}

type Prescription struct {
	Medication string
	Dosage     string
	Frequency  string
	Doctor     string
	Duration   string
	Date       string
	Status     string
	Notes      string
}

type HistoryEntry struct {
	Condition     string
	DateDiagnosed string
	Resolved      bool
	Notes         string
}

type DiagnosedPatient struct {
	Patient       string
	Age           int
	Doctor        string
	DiagnosedDate string
	Severity      string
}

type VitalsInput struct {
	BloodPressure string
	HeartRate     string
	Temperature   string
	Weight        string
	Height        string
	Notes         string
}

type DiagnosisInput struct {
	Patient  string
	Disease  string
	Doctor   string
	Severity string
	Notes    string
}

type StatusUpdate struct {
	Patient string
	Disease string
	Status  string
	Notes   string
}

type PrescriptionInput struct {
	Medication string
	Dosage     string
	Frequency  string
	Doctor     string
	Duration   string
	Notes      string
}
