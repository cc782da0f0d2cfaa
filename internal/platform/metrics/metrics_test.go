package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "medgraph/internal/platform/errors"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestBackendCallOutcomes(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.BackendCall("search", nil)
	r.BackendCall("link", apperrors.Reject("Relationship already exists"))
	r.BackendCall("link", errors.New("connection refused"))

	assert.Equal(t, 1.0, counterValue(t, r.BackendCallsTotal.WithLabelValues("search", "ok")))
	assert.Equal(t, 1.0, counterValue(t, r.BackendCallsTotal.WithLabelValues("link", "rejected")))
	assert.Equal(t, 1.0, counterValue(t, r.BackendCallsTotal.WithLabelValues("link", "error")))
}

func TestNilRegistryIsSafe(t *testing.T) {
	t.Parallel()
	var r *Registry
	r.LookupIssued()
	r.StaleDiscarded()
	r.ViewportOp("present")
	r.FocusDiscarded("graph")
	r.BackendCall("search", nil)
}

func TestHandlerExposesCounters(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.LookupIssued()
	r.StaleDiscarded()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "medgraph_search_lookups_total 1")
	assert.Contains(t, rec.Body.String(), "medgraph_search_stale_responses_total 1")
}
