package backend

import (
	"context"

	"go.uber.org/zap"

	"medgraph/internal/platform/metrics"
)

type instrumented struct {
	next    Backend
	metrics *metrics.Registry
	log     *zap.Logger
}

// Instrument counts every call by operation and outcome and logs failures.
// Business rejections are counted but not logged as errors.
func Instrument(next Backend, m *metrics.Registry, log *zap.Logger) Backend {
	if log == nil {
		log = zap.NewNop()
	}
	return &instrumented{next: next, metrics: m, log: log.Named("backend")}
}

func (b *instrumented) observe(op string, err error) {
	b.metrics.BackendCall(op, err)
	if err != nil {
		b.log.Warn("backend call failed", zap.String("op", op), zap.Error(err))
	}
}

func (b *instrumented) result(op string, res Result, err error) (Result, error) {
	if err != nil {
		b.observe(op, err)
		return res, err
	}
	b.metrics.BackendCall(op, res.Err())
	if !res.Success {
		b.log.Info("backend rejected mutation", zap.String("op", op), zap.String("message", res.Message))
	}
	return res, nil
}

func (b *instrumented) Close() error { return b.next.Close() }

func (b *instrumented) ListPersons(ctx context.Context) ([]Person, error) {
	out, err := b.next.ListPersons(ctx)
	b.observe("list_persons", err)
	return out, err
}

func (b *instrumented) ListDiseases(ctx context.Context) ([]Disease, error) {
	out, err := b.next.ListDiseases(ctx)
	b.observe("list_diseases", err)
	return out, err
}

func (b *instrumented) SearchPersons(ctx context.Context, query string) ([]Person, error) {
	out, err := b.next.SearchPersons(ctx, query)
	b.observe("search_persons", err)
	return out, err
}

func (b *instrumented) PersonDiseases(ctx context.Context, person string) ([]Disease, error) {
	out, err := b.next.PersonDiseases(ctx, person)
	b.observe("person_diseases", err)
	return out, err
}

func (b *instrumented) MedicalRecord(ctx context.Context, person string) (MedicalRecord, error) {
	out, err := b.next.MedicalRecord(ctx, person)
	b.observe("medical_record", err)
	return out, err
}

func (b *instrumented) SearchByDiagnosis(ctx context.Context, disease string) ([]DiagnosedPatient, error) {
	out, err := b.next.SearchByDiagnosis(ctx, disease)
	b.observe("search_by_diagnosis", err)
	return out, err
}

func (b *instrumented) CreatePerson(ctx context.Context, name string, age int) (Result, error) {
	res, err := b.next.CreatePerson(ctx, name, age)
	return b.result("create_person", res, err)
}

func (b *instrumented) CreateDisease(ctx context.Context, name, description string) (Result, error) {
	res, err := b.next.CreateDisease(ctx, name, description)
	return b.result("create_disease", res, err)
}

func (b *instrumented) CreateRelationship(ctx context.Context, person, disease string) (Result, error) {
	res, err := b.next.CreateRelationship(ctx, person, disease)
	return b.result("create_relationship", res, err)
}

func (b *instrumented) DeleteRelationship(ctx context.Context, person, disease string) (Result, error) {
	res, err := b.next.DeleteRelationship(ctx, person, disease)
	return b.result("delete_relationship", res, err)
}

func (b *instrumented) RecordVitals(ctx context.Context, person string, v VitalsInput) (Result, error) {
	res, err := b.next.RecordVitals(ctx, person, v)
	return b.result("record_vitals", res, err)
}

func (b *instrumented) AddDiagnosis(ctx context.Context, d DiagnosisInput) (Result, error) {
	res, err := b.next.AddDiagnosis(ctx, d)
	return b.result("add_diagnosis", res, err)
}

func (b *instrumented) UpdateDiagnosisStatus(ctx context.Context, u StatusUpdate) (Result, error) {
	res, err := b.next.UpdateDiagnosisStatus(ctx, u)
	return b.result("update_diagnosis_status", res, err)
}

func (b *instrumented) AddPrescription(ctx context.Context, person string, rx PrescriptionInput) (Result, error) {
	res, err := b.next.AddPrescription(ctx, person, rx)
	return b.result("add_prescription", res, err)
}
