package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medgraph/internal/platform/backend"
	"medgraph/internal/platform/config"
	apperrors "medgraph/internal/platform/errors"
)

func newClient(t *testing.T, mux *http.ServeMux, breaker config.BreakerConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := New(config.BackendConfig{BaseURL: srv.URL, Breaker: breaker}, zap.NewNop(), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func lenientBreaker() config.BreakerConfig {
	return config.Default("/tmp").Backend.Breaker
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestReadsDecodeServiceShapes(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/persons/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "al", r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, []map[string]any{{"name": "Alice", "age": 34}, {"name": "Alan", "age": "41"}})
	})
	mux.HandleFunc("GET /api/persons/{name}/diseases", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mary Ann", r.PathValue("name"))
		writeJSON(w, http.StatusOK, []map[string]any{{"d.name": "Flu", "d.description": "Viral (ICD-10: J11.1)"}})
	})
	mux.HandleFunc("GET /api/patients/{name}/medical-record", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") != "Alice" {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Patient not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"patient":       map[string]any{"name": "Alice", "age": 34},
			"diagnoses":     []map[string]any{{"disease": "Flu", "doctor": "Dr. Smith", "date": "2026-01-02T10:00:00", "notes": "", "severity": "mild", "status": "active"}},
			"prescriptions": []map[string]any{},
			"vitals":        []map[string]any{{"blood_pressure": "120/80", "heart_rate": 72, "temperature": 36.6, "weight": "70", "height": 175, "bmi": nil, "date": "2026-01-02T10:05:00"}},
			"medical_history": []map[string]any{
				{"condition": "Chickenpox", "date_diagnosed": "1999-04-01", "resolved": true, "notes": nil},
			},
		})
	})

	c := newClient(t, mux, lenientBreaker())
	ctx := context.Background()

	people, err := c.SearchPersons(ctx, " al ")
	require.NoError(t, err)
	assert.Equal(t, []backend.Person{{Name: "Alice", Age: 34}, {Name: "Alan", Age: 41}}, people)

	diseases, err := c.PersonDiseases(ctx, "Mary Ann")
	require.NoError(t, err)
	assert.Equal(t, []backend.Disease{{Name: "Flu", Description: "Viral (ICD-10: J11.1)"}}, diseases)

	rec, err := c.MedicalRecord(ctx, "Alice")
	require.NoError(t, err)
	require.Len(t, rec.Vitals, 1)
	assert.Equal(t, "72", rec.Vitals[0].HeartRate)
	assert.Equal(t, "36.6", rec.Vitals[0].Temperature)
	assert.Equal(t, "175", rec.Vitals[0].Height)
	assert.Equal(t, "", rec.Vitals[0].BMI)
	assert.Equal(t, "2026-01-02T10:05:00", rec.Vitals[0].RecordedAt)
	require.Len(t, rec.History, 1)
	assert.True(t, rec.History[0].Resolved)

	_, err = c.MedicalRecord(ctx, "Ghost")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMutationsSendServiceKeysAndReturnEnvelope(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/relationships", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"person_name": "Alice", "disease_name": "Flu"}, body)
		writeJSON(w, http.StatusOK, backend.Result{Success: true, Message: "Successfully removed relationship between 'Alice' and 'Flu'"})
	})
	mux.HandleFunc("POST /api/persons", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, backend.Result{Message: "Name and age are required"})
	})
	mux.HandleFunc("PUT /api/diagnosis/status", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "chronic", body["status"])
		writeJSON(w, http.StatusOK, backend.Result{Success: true, Message: "Diagnosis status updated to chronic"})
	})

	c := newClient(t, mux, lenientBreaker())
	ctx := context.Background()

	res, err := c.DeleteRelationship(ctx, "Alice", "Flu")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = c.CreatePerson(ctx, "", 0)
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.ErrorIs(t, res.Err(), apperrors.ErrRejected)
	assert.Equal(t, "Name and age are required", apperrors.UserMessage(res.Err(), ""))

	res, err = c.UpdateDiagnosisStatus(ctx, backend.StatusUpdate{Patient: "Alice", Disease: "Flu", Status: "chronic"})
	require.NoError(t, err)
	assert.Equal(t, "Diagnosis status updated to chronic", res.Message)
}

func TestBreakerOpensOnServerErrorsOnly(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/diseases", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("POST /api/relationships", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, backend.Result{Message: "Person 'Bob' does not exist"})
	})

	c := newClient(t, mux, config.BreakerConfig{
		MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute,
		MinRequests: 2, FailureThreshold: 0.5,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := c.CreateRelationship(ctx, "Bob", "Flu")
		require.NoError(t, err)
		assert.False(t, res.Success)
	}
	assert.Equal(t, gobreaker.StateClosed, c.breaker.State(), "rejections are not failures")

	for i := 0; i < 2; i++ {
		_, err := c.ListDiseases(ctx)
		require.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	}
	assert.Equal(t, gobreaker.StateClosed, c.breaker.State())

	_, err := c.ListDiseases(ctx)
	require.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	assert.Equal(t, gobreaker.StateOpen, c.breaker.State())
	assert.EqualValues(t, 3, hits.Load())

	_, err = c.ListDiseases(ctx)
	require.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	assert.EqualValues(t, 3, hits.Load(), "open breaker short-circuits")
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	t.Parallel()
	_, err := New(config.BackendConfig{BaseURL: "localhost"}, nil)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
