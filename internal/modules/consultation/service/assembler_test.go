package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgraph/internal/modules/consultation/domain"
	apperrors "medgraph/internal/platform/errors"
)

type fixedIDs struct{ n int }

func (f *fixedIDs) New() string {
	f.n++
	return "MR-00000000" + string(rune('0'+f.n))
}

type fakeSource struct {
	records   map[string]domain.Record
	diagnoses []domain.NewDiagnosis
	fetches   int
	started   chan string
	gate      map[string]chan struct{}
	reject    string
}

func newFakeSource() *fakeSource {
	return &fakeSource{records: map[string]domain.Record{}, started: make(chan string, 4), gate: map[string]chan struct{}{}}
}

func (f *fakeSource) MedicalRecord(ctx context.Context, patient string) (domain.Record, error) {
	f.fetches++
	if g, ok := f.gate[patient]; ok {
		f.started <- patient
		<-g
	}
	if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}
	rec, ok := f.records[patient]
	if !ok {
		return domain.Record{}, apperrors.ErrNotFound
	}
	return rec, nil
}

func (f *fakeSource) PatientsWith(context.Context, string) ([]domain.TrackedPatient, error) {
	return []domain.TrackedPatient{{Patient: "Alice", Severity: domain.SeveritySevere}}, nil
}

func (f *fakeSource) RecordVitals(_ context.Context, patient string, v domain.VitalsEntry) (string, error) {
	if f.reject != "" {
		return "", apperrors.Reject(f.reject)
	}
	rec := f.records[patient]
	rec.Vitals = append([]domain.Vitals{{Weight: v.Weight, Height: v.Height}}, rec.Vitals...)
	f.records[patient] = rec
	return "Vital signs recorded successfully", nil
}

func (f *fakeSource) AddDiagnosis(_ context.Context, d domain.NewDiagnosis) (string, error) {
	f.diagnoses = append(f.diagnoses, d)
	rec := f.records[d.Patient]
	rec.Diagnoses = append(rec.Diagnoses, domain.Diagnosis{Disease: d.Disease, Severity: d.Severity, Status: domain.StatusActive})
	f.records[d.Patient] = rec
	return "Diagnosis added successfully", nil
}

func (f *fakeSource) UpdateDiagnosisStatus(context.Context, domain.StatusChange) (string, error) {
	return "Diagnosis status updated", nil
}

func (f *fakeSource) AddPrescription(context.Context, string, domain.NewPrescription) (string, error) {
	return "Prescription added successfully", nil
}

type cacheResolver map[string]domain.Patient

func (c cacheResolver) Person(_ context.Context, name string) (domain.Patient, bool) {
	p, ok := c[name]
	return p, ok
}

func TestAssembleDerivesBMIAndDisplayID(t *testing.T) {
	t.Parallel()
	src := newFakeSource()
	src.records["Alice"] = domain.Record{
		Patient: domain.Patient{Name: "Alice"},
		Vitals: []domain.Vitals{
			{Weight: "70", Height: "175", BMI: "22.857142857142858"},
			{Weight: "70"},
		},
	}
	a := NewAssembler(src, cacheResolver{"Alice": {Name: "Alice", Age: 34, HasAge: true}}, &fixedIDs{}, Options{}, nil, nil)

	rec, err := a.Assemble(context.Background(), " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "MR-000000001", rec.DisplayID)
	assert.Equal(t, 34, rec.Patient.Age, "age filled from the entity cache")
	assert.Equal(t, "22.9", rec.Vitals[0].BMI)
	assert.Equal(t, "", rec.Vitals[1].BMI)
	assert.Equal(t, "22.857142857142858", src.records["Alice"].Vitals[0].BMI, "source data is not modified")

	again, err := a.Assemble(context.Background(), "Alice")
	require.NoError(t, err)
	assert.NotEqual(t, rec.DisplayID, again.DisplayID)
	assert.Equal(t, 2, src.fetches, "every assemble fetches fresh")
}

func TestAssembleUnknownPatient(t *testing.T) {
	t.Parallel()
	a := NewAssembler(newFakeSource(), nil, nil, Options{}, nil, nil)
	_, err := a.Assemble(context.Background(), "Nobody")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = a.Assemble(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSharedFetchSurvivesCallerCancellation(t *testing.T) {
	t.Parallel()
	src := newFakeSource()
	src.records["Alice"] = domain.Record{Patient: domain.Patient{Name: "Alice"}}
	a := NewAssembler(src, nil, nil, Options{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec, err := a.Assemble(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", rec.Patient.Name)
}

func TestSelectDropsSupersededRecord(t *testing.T) {
	t.Parallel()
	src := newFakeSource()
	src.records["Alice"] = domain.Record{Patient: domain.Patient{Name: "Alice"}}
	src.records["Bob"] = domain.Record{Patient: domain.Patient{Name: "Bob"}}
	src.gate["Alice"] = make(chan struct{})
	a := NewAssembler(src, nil, nil, Options{}, nil, nil)
	ctx := context.Background()

	errs := make(chan error, 1)
	go func() {
		_, err := a.Select(ctx, "Alice")
		errs <- err
	}()
	<-src.started
	rec, err := a.Select(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", rec.Patient.Name)
	close(src.gate["Alice"])
	require.ErrorIs(t, <-errs, apperrors.ErrSuperseded)

	current, ok := a.Current()
	require.True(t, ok)
	assert.Equal(t, "Bob", current)
}

func TestMutationRebuildsRecordForCurrentPatient(t *testing.T) {
	t.Parallel()
	src := newFakeSource()
	src.records["Alice"] = domain.Record{Patient: domain.Patient{Name: "Alice"}}
	a := NewAssembler(src, nil, nil, Options{Doctor: "Dr. Smith"}, nil, nil)
	ctx := context.Background()

	_, _, err := a.RecordVitals(ctx, "", domain.VitalsEntry{Weight: "70", Height: "175"})
	require.ErrorIs(t, err, apperrors.ErrNoFocus)

	_, err = a.Select(ctx, "Alice")
	require.NoError(t, err)

	msg, rec, err := a.RecordVitals(ctx, "", domain.VitalsEntry{Weight: "70", Height: "175"})
	require.NoError(t, err)
	assert.Equal(t, "Vital signs recorded successfully", msg)
	require.Len(t, rec.Vitals, 1)
	assert.Equal(t, "22.9", rec.Vitals[0].BMI)

	_, rec, err = a.AddDiagnosis(ctx, domain.NewDiagnosis{Disease: "Flu"})
	require.NoError(t, err)
	require.Len(t, src.diagnoses, 1)
	assert.Equal(t, domain.SeverityModerate, src.diagnoses[0].Severity)
	assert.Equal(t, "Dr. Smith", src.diagnoses[0].Doctor)
	assert.Equal(t, "Alice", src.diagnoses[0].Patient)
	assert.Len(t, rec.ActiveDiagnoses(), 1)

	src.reject = "Patient 'Alice' not found"
	_, _, err = a.RecordVitals(ctx, "Alice", domain.VitalsEntry{})
	require.ErrorIs(t, err, apperrors.ErrRejected)
	assert.Equal(t, "Patient 'Alice' not found", apperrors.UserMessage(err, ""))
}

func TestTrackerRequiresDisease(t *testing.T) {
	t.Parallel()
	a := NewAssembler(newFakeSource(), nil, nil, Options{}, nil, nil)
	_, err := a.Tracker(context.Background(), " ")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	tr, err := a.Tracker(context.Background(), "Flu")
	require.NoError(t, err)
	assert.Equal(t, 100.0, tr.Distribution.Severe)
}
