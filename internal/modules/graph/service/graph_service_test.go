package service

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgraph/internal/modules/graph/domain"
	apperrors "medgraph/internal/platform/errors"
	"medgraph/internal/platform/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

// memoryStore keeps relationships in a map. Relationships reads the edge set
// when called; a gate set for a person holds that one call back until
// released, so it returns what was stored at request time.
type memoryStore struct {
	mu      sync.Mutex
	edges   map[string][]string
	started chan string
	gate    map[string]chan struct{}
	fetches int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{edges: map[string][]string{}, started: make(chan string, 4), gate: map[string]chan struct{}{}}
}

func (m *memoryStore) Relationships(_ context.Context, person string) ([]domain.Relationship, error) {
	m.mu.Lock()
	m.fetches++
	out := make([]domain.Relationship, 0, len(m.edges[person]))
	for _, d := range m.edges[person] {
		out = append(out, domain.Relationship{Person: person, Disease: d})
	}
	g, gated := m.gate[person]
	delete(m.gate, person)
	m.mu.Unlock()

	if gated {
		m.started <- person
		<-g
	}
	return out, nil
}

func (m *memoryStore) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

func (m *memoryStore) hold(person string) chan struct{} {
	g := make(chan struct{})
	m.mu.Lock()
	m.gate[person] = g
	m.mu.Unlock()
	return g
}

func (m *memoryStore) Link(_ context.Context, person, disease string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.edges[person] {
		if d == disease {
			return "", apperrors.Reject("Relationship already exists between '" + person + "' and '" + disease + "'")
		}
	}
	m.edges[person] = append(m.edges[person], disease)
	return "linked", nil
}

func (m *memoryStore) Unlink(_ context.Context, person, disease string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.edges[person][:0]
	for _, d := range m.edges[person] {
		if d != disease {
			kept = append(kept, d)
		}
	}
	m.edges[person] = kept
	return "unlinked", nil
}

func TestFocusSwitchUsesUpdateOnLiveViewport(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	store.edges["Alice"] = []string{"Flu"}
	store.edges["Bob"] = []string{"Asthma", "Gout"}
	surface := &countingSurface{}
	svc := NewGraphService(store, NewViewport(surface, domain.VisualOptions{}, nil, nil), nil, nil)
	ctx := context.Background()

	view, err := svc.Focus(ctx, domain.Focus{ID: "Alice"})
	require.NoError(t, err)
	assert.Len(t, view.Structure.Nodes, 2)

	view, err = svc.Focus(ctx, domain.Focus{ID: "Bob"})
	require.NoError(t, err)
	assert.Len(t, view.Structure.Nodes, 3)
	assert.Equal(t, 1, surface.mounts)
	assert.Equal(t, 1, surface.instances[0].sets)

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "Bob", current.ID)
}

func TestSupersededFocusIsDiscarded(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	store.edges["Alice"] = []string{"Flu"}
	store.edges["Bob"] = []string{"Asthma"}
	gate := store.hold("Alice")
	surface := &countingSurface{}
	reg := metrics.NewRegistry()
	svc := NewGraphService(store, NewViewport(surface, domain.VisualOptions{}, reg, nil), reg, nil)
	ctx := context.Background()

	errs := make(chan error, 1)
	go func() {
		_, err := svc.Focus(ctx, domain.Focus{ID: "Alice"})
		errs <- err
	}()
	require.Equal(t, "Alice", <-store.started)

	_, err := svc.Focus(ctx, domain.Focus{ID: "Bob"})
	require.NoError(t, err)
	close(gate)
	require.ErrorIs(t, <-errs, apperrors.ErrSuperseded)

	require.Len(t, surface.instances, 1)
	assert.Equal(t, "Bob", surface.instances[0].data.Nodes[0].Label)
	assert.Equal(t, 1.0, counterValue(t, reg.FocusDiscardedTotal.WithLabelValues("graph")))
}

func TestClearDiscardsInFlightRender(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	gate := store.hold("Alice")
	surface := &countingSurface{}
	svc := NewGraphService(store, NewViewport(surface, domain.VisualOptions{}, nil, nil), nil, nil)

	errs := make(chan error, 1)
	go func() {
		_, err := svc.Focus(context.Background(), domain.Focus{ID: "Alice"})
		errs <- err
	}()
	<-store.started
	svc.Clear()
	close(gate)

	require.ErrorIs(t, <-errs, apperrors.ErrSuperseded)
	assert.Zero(t, surface.mounts)
	_, ok := svc.Current()
	assert.False(t, ok)
}

func TestLinkRejectionLeavesGraphUntouched(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	store.edges["Alice"] = []string{"Flu"}
	surface := &countingSurface{}
	svc := NewGraphService(store, NewViewport(surface, domain.VisualOptions{}, nil, nil), nil, nil)
	ctx := context.Background()
	_, err := svc.Focus(ctx, domain.Focus{ID: "Alice"})
	require.NoError(t, err)

	_, _, err = svc.Link(ctx, "", "Flu")
	require.ErrorIs(t, err, apperrors.ErrRejected)
	assert.Equal(t, 0, surface.instances[0].sets)
	assert.Equal(t, 1, store.fetchCount())

	msg, view, err := svc.Link(ctx, "", "Asthma")
	require.NoError(t, err)
	assert.Equal(t, "linked", msg)
	assert.Len(t, view.Structure.Edges, 2)
	assert.Equal(t, 1, surface.instances[0].sets)
}

func TestMutationsNeedAFocusOrPerson(t *testing.T) {
	t.Parallel()
	svc := NewGraphService(newMemoryStore(), NewViewport(&countingSurface{}, domain.VisualOptions{}, nil, nil), nil, nil)
	_, _, err := svc.Unlink(context.Background(), "", "Flu")
	require.ErrorIs(t, err, apperrors.ErrNoFocus)
	_, err = svc.Refresh(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNoFocus)
	_, err = svc.Focus(context.Background(), domain.Focus{ID: "  "})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLinkReloadDoesNotReuseFetchIssuedBeforeWrite(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	gate := store.hold("Alice")
	surface := &countingSurface{}
	svc := NewGraphService(store, NewViewport(surface, domain.VisualOptions{}, nil, nil), nil, nil)
	ctx := context.Background()

	errs := make(chan error, 1)
	go func() {
		_, err := svc.Focus(ctx, domain.Focus{ID: "Alice"})
		errs <- err
	}()
	require.Equal(t, "Alice", <-store.started)

	done := make(chan View, 1)
	go func() {
		_, view, err := svc.Link(ctx, "Alice", "Flu")
		assert.NoError(t, err)
		done <- view
	}()

	view := <-done
	close(gate)
	require.ErrorIs(t, <-errs, apperrors.ErrSuperseded)

	assert.Len(t, view.Structure.Nodes, 2)
	assert.Len(t, view.Structure.Edges, 1)
	require.Len(t, surface.instances, 1)
	assert.Len(t, surface.instances[0].data.Edges, 1)
	assert.Equal(t, 2, store.fetchCount())

	view, err := svc.Focus(ctx, domain.Focus{ID: "Alice"})
	require.NoError(t, err)
	assert.Len(t, view.Structure.Edges, 1)
}
