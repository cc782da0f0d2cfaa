package out

import (
	"context"

	"medgraph/internal/modules/consultation/domain"
)

// RecordSource reads and writes a patient's chart. Mutations return the
// backend's confirmation, or an apperrors.Rejection.
type RecordSource interface {
	MedicalRecord(ctx context.Context, patient string) (domain.Record, error)
	PatientsWith(ctx context.Context, disease string) ([]domain.TrackedPatient, error)
	RecordVitals(ctx context.Context, patient string, v domain.VitalsEntry) (string, error)
	AddDiagnosis(ctx context.Context, d domain.NewDiagnosis) (string, error)
	UpdateDiagnosisStatus(ctx context.Context, c domain.StatusChange) (string, error)
	AddPrescription(ctx context.Context, patient string, rx domain.NewPrescription) (string, error)
}

// NameResolver looks a patient up in the local entity cache.
type NameResolver interface {
	Person(ctx context.Context, name string) (domain.Patient, bool)
}
