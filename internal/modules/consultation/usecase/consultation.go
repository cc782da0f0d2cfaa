package usecase

import (
	"context"

	"medgraph/internal/modules/consultation/domain"
	"medgraph/internal/modules/consultation/dto"
	consultin "medgraph/internal/modules/consultation/port/in"
	"medgraph/internal/modules/consultation/service"
	"medgraph/internal/platform/validation"
)

type Interactor struct {
	svc *service.Assembler
}

func NewInteractor(svc *service.Assembler) consultin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Select(ctx context.Context, patient string) (dto.RecordOutput, error) {
	rec, err := i.svc.Select(ctx, patient)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	return mapRecord(rec), nil
}

func (i *Interactor) Assemble(ctx context.Context, patient string) (dto.RecordOutput, error) {
	rec, err := i.svc.Assemble(ctx, patient)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	return mapRecord(rec), nil
}

func (i *Interactor) Current() (string, bool) { return i.svc.Current() }

func (i *Interactor) Clear() { i.svc.Clear() }

func (i *Interactor) RecordVitals(ctx context.Context, input dto.VitalsInput) (dto.MutationOutput, error) {
	if err := validation.Struct(input); err != nil {
		return dto.MutationOutput{}, err
	}
	msg, rec, err := i.svc.RecordVitals(ctx, input.Patient, domain.VitalsEntry{
		BloodPressure: input.BloodPressure,
		HeartRate:     input.HeartRate,
		Temperature:   input.Temperature,
		Weight:        input.Weight,
		Height:        input.Height,
		Notes:         input.Notes,
	})
	return mutation(msg, rec, err)
}

func (i *Interactor) AddDiagnosis(ctx context.Context, input dto.DiagnosisInput) (dto.MutationOutput, error) {
	if err := validation.Struct(input); err != nil {
		return dto.MutationOutput{}, err
	}
	msg, rec, err := i.svc.AddDiagnosis(ctx, domain.NewDiagnosis{
		Patient:  input.Patient,
		Disease:  input.Disease,
		Doctor:   input.Doctor,
		Severity: domain.Severity(input.Severity),
		Notes:    input.Notes,
	})
	return mutation(msg, rec, err)
}

func (i *Interactor) UpdateDiagnosisStatus(ctx context.Context, input dto.StatusInput) (dto.MutationOutput, error) {
	if err := validation.Struct(input); err != nil {
		return dto.MutationOutput{}, err
	}
	msg, rec, err := i.svc.UpdateDiagnosisStatus(ctx, domain.StatusChange{
		Patient: input.Patient,
		Disease: input.Disease,
		Status:  domain.Status(input.Status),
		Notes:   input.Notes,
	})
	return mutation(msg, rec, err)
}

func (i *Interactor) AddPrescription(ctx context.Context, input dto.PrescriptionInput) (dto.MutationOutput, error) {
	if err := validation.Struct(input); err != nil {
		return dto.MutationOutput{}, err
	}
	msg, rec, err := i.svc.AddPrescription(ctx, input.Patient, domain.NewPrescription{
		Medication: input.Medication,
		Dosage:     input.Dosage,
		Frequency:  input.Frequency,
		Doctor:     input.Doctor,
		Duration:   input.Duration,
		Notes:      input.Notes,
	})
	return mutation(msg, rec, err)
}

func (i *Interactor) Tracker(ctx context.Context, disease string) (dto.TrackerOutput, error) {
	tr, err := i.svc.Tracker(ctx, disease)
	if err != nil {
		return dto.TrackerOutput{}, err
	}
	out := dto.TrackerOutput{
		Disease:  tr.Disease,
		Patients: make([]dto.TrackedPatientOutput, 0, len(tr.Patients)),
		Mild:     tr.Distribution.Mild,
		Moderate: tr.Distribution.Moderate,
		Severe:   tr.Distribution.Severe,
	}
	for _, p := range tr.Patients {
		out.Patients = append(out.Patients, dto.TrackedPatientOutput{
			Patient:       p.Patient,
			Age:           p.Age,
			Doctor:        p.Doctor,
			DiagnosedDate: p.DiagnosedDate,
			Severity:      string(p.Severity),
		})
	}
	return out, nil
}

// mutation keeps the backend message even when the follow-up reload failed.
func mutation(msg string, rec domain.Record, err error) (dto.MutationOutput, error) {
	out := dto.MutationOutput{Message: msg}
	if err != nil {
		return out, err
	}
	out.Record = mapRecord(rec)
	return out, nil
}

func mapRecord(rec domain.Record) dto.RecordOutput {
	return dto.RecordOutput{
		DisplayID:           rec.DisplayID,
		Patient:             dto.PatientOutput{Name: rec.Patient.Name, Age: rec.Patient.Age},
		ActiveDiagnoses:     mapDiagnoses(rec.ActiveDiagnoses()),
		Diagnoses:           mapDiagnoses(rec.Diagnoses),
		Vitals:              mapVitals(rec.Vitals),
		ActivePrescriptions: mapPrescriptions(rec.ActivePrescriptions()),
		Prescriptions:       mapPrescriptions(rec.Prescriptions),
		History:             mapHistory(rec.History),
	}
}

func mapDiagnoses(in []domain.Diagnosis) []dto.DiagnosisOutput {
	out := make([]dto.DiagnosisOutput, 0, len(in))
	for _, d := range in {
		out = append(out, dto.DiagnosisOutput{
			Disease:  d.Disease,
			Doctor:   d.Doctor,
			Date:     d.Date,
			Notes:    d.Notes,
			Severity: string(d.Severity),
			Status:   string(d.Status),
		})
	}
	return out
}

func mapVitals(in []domain.Vitals) []dto.VitalsOutput {
	out := make([]dto.VitalsOutput, 0, len(in))
	for _, v := range in {
		out = append(out, dto.VitalsOutput{
			BloodPressure: v.BloodPressure,
			HeartRate:     v.HeartRate,
			Temperature:   v.Temperature,
			Weight:        v.Weight,
			Height:        v.Height,
			BMI:           v.BMI,
			RecordedAt:    v.RecordedAt,
		})
	}
	return out
}

func mapPrescriptions(in []domain.Prescription) []dto.PrescriptionOutput {
	out := make([]dto.PrescriptionOutput, 0, len(in))
	for _, p := range in {
		out = append(out, dto.PrescriptionOutput{
			Medication: p.Medication,
			Dosage:     p.Dosage,
			Frequency:  p.Frequency,
			Doctor:     p.Doctor,
			Duration:   p.Duration,
			Date:       p.Date,
			Status:     string(p.Status),
			Notes:      p.Notes,
		})
	}
	return out
}

func mapHistory(in []domain.HistoryEntry) []dto.HistoryOutput {
	out := make([]dto.HistoryOutput, 0, len(in))
	for _, h := range in {
		out = append(out, dto.HistoryOutput{
			Condition:     h.Condition,
			DateDiagnosed: h.DateDiagnosed,
			Resolved:      h.Resolved,
			Notes:         h.Notes,
		})
	}
	return out
}
