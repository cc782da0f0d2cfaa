package out

import (
	"context"

	"medgraph/internal/modules/consultation/domain"
	"medgraph/internal/platform/backend"
)

type BackendRecords struct {
	api backend.Backend
}

func NewBackendRecords(api backend.Backend) *BackendRecords {
	return &BackendRecords{api: api}
}

func (r *BackendRecords) MedicalRecord(ctx context.Context, patient string) (domain.Record, error) {
	raw, err := r.api.MedicalRecord(ctx, patient)
	if err != nil {
		return domain.Record{}, err
	}
	rec := domain.Record{
		Patient: domain.Patient{Name: raw.Patient.Name, Age: raw.Patient.Age, HasAge: raw.Patient.Age > 0},
	}
	for _, d := range raw.Diagnoses {
		rec.Diagnoses = append(rec.Diagnoses, domain.Diagnosis{
			Disease:  d.Disease,
			Doctor:   d.Doctor,
			Date:     d.Date,
			Notes:    d.Notes,
			Severity: domain.Severity(d.Severity),
			Status:   domain.Status(d.Status),
		})
	}
	for _, v := range raw.Vitals {
		rec.Vitals = append(rec.Vitals, domain.Vitals{
			BloodPressure: v.BloodPressure,
			HeartRate:     v.HeartRate,
			Temperature:   v.Temperature,
			Weight:        v.Weight,
			Height:        v.Height,
			BMI:           v.BMI,
			RecordedAt:    v.RecordedAt,
		})
	}
	for _, p := range raw.Prescriptions {
		rec.Prescriptions = append(rec.Prescriptions, domain.Prescription{
			Medication: p.Medication,
			Dosage:     p.Dosage,
			Frequency:  p.Frequency,
			Doctor:     p.Doctor,
			Duration:   p.Duration,
			Date:       p.Date,
			Status:     domain.Status(p.Status),
			Notes:      p.Notes,
		})
	}
	for _, h := range raw.History {
		rec.History = append(rec.History, domain.HistoryEntry{
			Condition:     h.Condition,
			DateDiagnosed: h.DateDiagnosed,
			Resolved:      h.Resolved,
			Notes:         h.Notes,
		})
	}
	return rec, nil
}

func (r *BackendRecords) PatientsWith(ctx context.Context, disease string) ([]domain.TrackedPatient, error) {
	rows, err := r.api.SearchByDiagnosis(ctx, disease)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TrackedPatient, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.TrackedPatient{
			Patient:       row.Patient,
			Age:           row.Age,
			Doctor:        row.Doctor,
			DiagnosedDate: row.DiagnosedDate,
			Severity:      domain.Severity(row.Severity),
		})
	}
	return out, nil
}

func (r *BackendRecords) RecordVitals(ctx context.Context, patient string, v domain.VitalsEntry) (string, error) {
	return message(r.api.RecordVitals(ctx, patient, backend.VitalsInput{
		BloodPressure: v.BloodPressure,
		HeartRate:     v.HeartRate,
		Temperature:   v.Temperature,
		Weight:        v.Weight,
		Height:        v.Height,
		Notes:         v.Notes,
	}))
}

func (r *BackendRecords) AddDiagnosis(ctx context.Context, d domain.NewDiagnosis) (string, error) {
	return message(r.api.AddDiagnosis(ctx, backend.DiagnosisInput{
		Patient:  d.Patient,
		Disease:  d.Disease,
		Doctor:   d.Doctor,
		Severity: string(d.Severity),
		Notes:    d.Notes,
	}))
}

func (r *BackendRecords) UpdateDiagnosisStatus(ctx context.Context, c domain.StatusChange) (string, error) {
	return message(r.api.UpdateDiagnosisStatus(ctx, backend.StatusUpdate{
		Patient: c.Patient,
		Disease: c.Disease,
		Status:  string(c.Status),
		Notes:   c.Notes,
	}))
}

func (r *BackendRecords) AddPrescription(ctx context.Context, patient string, rx domain.NewPrescription) (string, error) {
	return message(r.api.AddPrescription(ctx, patient, backend.PrescriptionInput{
		Medication: rx.Medication,
		Dosage:     rx.Dosage,
		Frequency:  rx.Frequency,
		Doctor:     rx.Doctor,
		Duration:   rx.Duration,
		Notes:      rx.Notes,
	}))
}

func message(res backend.Result, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return res.Message, res.Err()
}
