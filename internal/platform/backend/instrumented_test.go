package backend_test

import (
	"context"
	"path/filepath"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medgraph/internal/platform/backend"
	"medgraph/internal/platform/backend/sqlitedb"
	"medgraph/internal/platform/clock"
	"medgraph/internal/platform/metrics"
)

func TestInstrumentCountsOutcomes(t *testing.T) {
	t.Parallel()
	store, err := sqlitedb.Open(filepath.Join(t.TempDir(), "m.db"), clock.SystemClock{})
	require.NoError(t, err)
	reg := metrics.NewRegistry()
	b := backend.Instrument(store, reg, zap.NewNop())
	t.Cleanup(func() { _ = b.Close() })
	ctx := context.Background()

	_, err = b.CreatePerson(ctx, "Alice", 30)
	require.NoError(t, err)
	res, err := b.CreatePerson(ctx, "Alice", 30)
	require.NoError(t, err)
	assert.False(t, res.Success)
	_, err = b.MedicalRecord(ctx, "Ghost")
	require.Error(t, err)

	value := func(op, outcome string) float64 {
		var m dto.Metric
		require.NoError(t, reg.BackendCallsTotal.WithLabelValues(op, outcome).Write(&m))
		return m.GetCounter().GetValue()
	}
	assert.Equal(t, 1.0, value("create_person", "ok"))
	assert.Equal(t, 1.0, value("create_person", "rejected"))
	assert.Equal(t, 1.0, value("medical_record", "error"))
}
