package usecase_test

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	consultadapter "medgraph/internal/modules/consultation/adapter/out"
	"medgraph/internal/modules/consultation/dto"
	consultin "medgraph/internal/modules/consultation/port/in"
	"medgraph/internal/modules/consultation/service"
	"medgraph/internal/modules/consultation/usecase"
	entityadapter "medgraph/internal/modules/entity/adapter/out"
	entityservice "medgraph/internal/modules/entity/service"
	entityusecase "medgraph/internal/modules/entity/usecase"
	"medgraph/internal/platform/backend/sqlitedb"
	"medgraph/internal/platform/clock"
	apperrors "medgraph/internal/platform/errors"
	"medgraph/internal/platform/id"
)

func newConsultation(t *testing.T) (consultin.Usecase, *sqlitedb.Store) {
	t.Helper()
	store, err := sqlitedb.Open(filepath.Join(t.TempDir(), "medgraph.db"), clock.SystemClock{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	entities := entityusecase.NewInteractor(entityservice.NewCatalogService(
		entityadapter.NewBackendDirectory(store), entityservice.NewEntityCache(), nil))
	assembler := service.NewAssembler(
		consultadapter.NewBackendRecords(store),
		consultadapter.NewEntityNames(entities),
		id.DisplayID{},
		service.Options{Doctor: "Dr. Smith"},
		nil, nil,
	)
	return usecase.NewInteractor(assembler), store
}

func TestConsultationLifecycleAgainstSQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, store := newConsultation(t)
	_, err := store.CreatePerson(ctx, "Alice", 34)
	require.NoError(t, err)
	_, err = store.CreateDisease(ctx, "Flu", "Viral infection")
	require.NoError(t, err)

	rec, err := uc.Select(ctx, "Alice")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^MR-[0-9A-F]{9}$`), rec.DisplayID)
	assert.Equal(t, dto.PatientOutput{Name: "Alice", Age: 34}, rec.Patient)
	assert.Empty(t, rec.ActiveDiagnoses)

	res, err := uc.RecordVitals(ctx, dto.VitalsInput{BloodPressure: "120/80", HeartRate: "72", Weight: "70", Height: "175"})
	require.NoError(t, err)
	require.Len(t, res.Record.Vitals, 1)
	assert.Equal(t, "22.9", res.Record.Vitals[0].BMI)

	res, err = uc.AddDiagnosis(ctx, dto.DiagnosisInput{Disease: "Flu", Severity: "severe"})
	require.NoError(t, err)
	require.Len(t, res.Record.ActiveDiagnoses, 1)
	assert.Equal(t, "Dr. Smith", res.Record.ActiveDiagnoses[0].Doctor)

	res, err = uc.UpdateDiagnosisStatus(ctx, dto.StatusInput{Disease: "Flu", Status: "resolved"})
	require.NoError(t, err)
	assert.Empty(t, res.Record.ActiveDiagnoses)
	assert.Len(t, res.Record.Diagnoses, 1, "resolved diagnoses stay in the full history")

	res, err = uc.AddPrescription(ctx, dto.PrescriptionInput{Medication: "Oseltamivir", Dosage: "75mg", Frequency: "twice daily"})
	require.NoError(t, err)
	require.Len(t, res.Record.ActivePrescriptions, 1)
}

func TestConsultationInputValidation(t *testing.T) {
	t.Parallel()
	uc, _ := newConsultation(t)
	ctx := context.Background()

	_, err := uc.AddDiagnosis(ctx, dto.DiagnosisInput{Patient: "Alice", Disease: "Flu", Severity: "critical"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = uc.UpdateDiagnosisStatus(ctx, dto.StatusInput{Patient: "Alice", Disease: "Flu", Status: "gone"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = uc.RecordVitals(ctx, dto.VitalsInput{Patient: "Alice", Weight: "heavy"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = uc.AddPrescription(ctx, dto.PrescriptionInput{Patient: "Alice"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestTrackerAgainstSQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, store := newConsultation(t)
	for _, p := range []string{"Alice", "Bob"} {
		_, err := store.CreatePerson(ctx, p, 40)
		require.NoError(t, err)
	}
	_, err := store.CreateDisease(ctx, "Flu", "Viral infection")
	require.NoError(t, err)
	_, err = uc.AddDiagnosis(ctx, dto.DiagnosisInput{Patient: "Alice", Disease: "Flu", Severity: "mild"})
	require.NoError(t, err)
	_, err = uc.AddDiagnosis(ctx, dto.DiagnosisInput{Patient: "Bob", Disease: "Flu", Severity: "severe"})
	require.NoError(t, err)

	tr, err := uc.Tracker(ctx, "Flu")
	require.NoError(t, err)
	assert.Len(t, tr.Patients, 2)
	assert.Equal(t, 50.0, tr.Mild)
	assert.Equal(t, 50.0, tr.Severe)
	assert.Zero(t, tr.Moderate)
}
