package sqlitedb

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgraph/internal/platform/backend"
	apperrors "medgraph/internal/platform/errors"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "medgraph.db"), &stepClock{now: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPersonsDiseasesAndRelationships(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)

	res, err := s.CreatePerson(ctx, "Alice", 34)
	require.NoError(t, err)
	assert.Equal(t, backend.Result{Success: true, Message: "Successfully created person 'Alice'"}, res)

	res, err = s.CreatePerson(ctx, "Alice", 35)
	require.NoError(t, err)
	assert.Equal(t, "Person 'Alice' already exists", res.Message)
	require.ErrorIs(t, res.Err(), apperrors.ErrRejected)

	_, err = s.CreateDisease(ctx, "Influenza", "Viral infection (ICD-10: J11.1)")
	require.NoError(t, err)
	_, err = s.CreateDisease(ctx, "Asthma", "Chronic airway inflammation")
	require.NoError(t, err)

	res, err = s.CreateRelationship(ctx, "Bob", "Influenza")
	require.NoError(t, err)
	assert.Equal(t, "Person 'Bob' does not exist", res.Message)

	res, err = s.CreateRelationship(ctx, "Alice", "Measles")
	require.NoError(t, err)
	assert.Equal(t, "Disease 'Measles' does not exist", res.Message)

	for _, d := range []string{"Influenza", "Asthma"} {
		res, err = s.CreateRelationship(ctx, "Alice", d)
		require.NoError(t, err)
		require.True(t, res.Success, res.Message)
	}
	res, err = s.CreateRelationship(ctx, "Alice", "Influenza")
	require.NoError(t, err)
	assert.Equal(t, "Relationship already exists between 'Alice' and 'Influenza'", res.Message)

	got, err := s.PersonDiseases(ctx, "Alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Influenza", got[0].Name, "insertion order")
	assert.Equal(t, "Asthma", got[1].Name)

	res, err = s.DeleteRelationship(ctx, "Alice", "Influenza")
	require.NoError(t, err)
	assert.Equal(t, "Successfully removed relationship between 'Alice' and 'Influenza'", res.Message)
	res, err = s.DeleteRelationship(ctx, "Alice", "Influenza")
	require.NoError(t, err)
	assert.Equal(t, "No relationship exists between 'Alice' and 'Influenza'", res.Message)

	all, err := s.ListDiseases(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asthma", all[0].Name)
}

func TestSearchPersonsIsCaseInsensitiveOrderedAndCapped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)
	for _, n := range []string{"Malcolm", "alice", "Alan", "Bob"} {
		_, err := s.CreatePerson(ctx, n, 40)
		require.NoError(t, err)
	}
	got, err := s.SearchPersons(ctx, "AL")
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Alan", "Malcolm", "alice"}, names)

	for i := 0; i < 30; i++ {
		_, err := s.CreatePerson(ctx, "Zed"+string(rune('A'+i)), 20)
		require.NoError(t, err)
	}
	got, err = s.SearchPersons(ctx, "zed")
	require.NoError(t, err)
	assert.Len(t, got, backend.SearchLimit)

	got, err = s.SearchPersons(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, got, "wildcards are literal")
}

func TestMedicalRecordLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)
	_, err := s.MedicalRecord(ctx, "Alice")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, _ = s.CreatePerson(ctx, "Alice", 34)
	_, _ = s.CreateDisease(ctx, "Influenza", "Viral")
	_, _ = s.CreateDisease(ctx, "Asthma", "Airways")

	res, err := s.AddDiagnosis(ctx, backend.DiagnosisInput{Patient: "Alice", Disease: "Measles", Doctor: "Dr. Smith"})
	require.NoError(t, err)
	assert.Equal(t, "Patient or disease not found", res.Message)

	res, err = s.AddDiagnosis(ctx, backend.DiagnosisInput{Patient: "Alice", Disease: "Influenza", Doctor: "Dr. Smith"})
	require.NoError(t, err)
	assert.Equal(t, "Diagnosis created successfully", res.Message)
	_, err = s.AddDiagnosis(ctx, backend.DiagnosisInput{Patient: "Alice", Disease: "Asthma", Doctor: "Dr. Jones", Severity: "severe"})
	require.NoError(t, err)

	res, err = s.UpdateDiagnosisStatus(ctx, backend.StatusUpdate{Patient: "Alice", Disease: "Influenza", Status: "resolved", Notes: "cleared"})
	require.NoError(t, err)
	assert.Equal(t, "Diagnosis status updated to resolved", res.Message)
	res, err = s.UpdateDiagnosisStatus(ctx, backend.StatusUpdate{Patient: "Bob", Disease: "Influenza", Status: "resolved"})
	require.NoError(t, err)
	assert.Equal(t, "Diagnosis not found", res.Message)

	for i := 0; i < 6; i++ {
		res, err = s.RecordVitals(ctx, "Alice", backend.VitalsInput{BloodPressure: "120/80", Weight: "70", Height: "175"})
		require.NoError(t, err)
		require.True(t, res.Success)
	}
	res, err = s.RecordVitals(ctx, "Ghost", backend.VitalsInput{})
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = s.AddPrescription(ctx, "Alice", backend.PrescriptionInput{Medication: "Salbutamol", Dosage: "100mcg", Frequency: "as needed", Doctor: "Dr. Jones"})
	require.NoError(t, err)
	assert.Equal(t, "Prescription added successfully", res.Message)
	require.NoError(t, s.AddHistory(ctx, "Alice", backend.HistoryEntry{Condition: "Chickenpox", DateDiagnosed: "1999-04-01", Resolved: true}))

	rec, err := s.MedicalRecord(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, backend.Person{Name: "Alice", Age: 34}, rec.Patient)
	require.Len(t, rec.Diagnoses, 2)
	assert.Equal(t, "Asthma", rec.Diagnoses[0].Disease, "newest first")
	assert.Equal(t, "severe", rec.Diagnoses[0].Severity)
	assert.Equal(t, "moderate", rec.Diagnoses[1].Severity, "default severity")
	assert.Equal(t, "resolved", rec.Diagnoses[1].Status)
	assert.Len(t, rec.Vitals, 5, "only the latest five readings")
	assert.True(t, strings.HasPrefix(rec.Vitals[0].BMI, "22.857"), rec.Vitals[0].BMI)
	require.Len(t, rec.Prescriptions, 1)
	assert.Equal(t, "active", rec.Prescriptions[0].Status)
	require.Len(t, rec.History, 1)
	assert.True(t, rec.History[0].Resolved)

	patients, err := s.SearchByDiagnosis(ctx, "Asthma")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "Alice", patients[0].Patient)
	assert.Equal(t, "Dr. Jones", patients[0].Doctor)

	patients, err = s.SearchByDiagnosis(ctx, "Influenza")
	require.NoError(t, err)
	assert.Empty(t, patients, "resolved diagnoses are not active")
}
