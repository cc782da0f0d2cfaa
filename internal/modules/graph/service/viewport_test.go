package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgraph/internal/modules/graph/domain"
	graphout "medgraph/internal/modules/graph/port/out"
	apperrors "medgraph/internal/platform/errors"
	"medgraph/internal/platform/metrics"
)

type countingInstance struct {
	data      domain.Structure
	sets      int
	destroyed bool
}

func (i *countingInstance) SetData(s domain.Structure) error {
	i.data = s
	i.sets++
	return nil
}

func (i *countingInstance) Render(int, int) string { return "" }
func (i *countingInstance) Pan(float64, float64)    {}
func (i *countingInstance) Zoom(float64)            {}
func (i *countingInstance) Hover(int) string        { return "" }
func (i *countingInstance) Destroy()                { i.destroyed = true }

type countingSurface struct {
	mounts    int
	instances []*countingInstance
	lastOpts  domain.VisualOptions
}

func (s *countingSurface) Mount(st domain.Structure, opts domain.VisualOptions) (graphout.Instance, error) {
	s.mounts++
	s.lastOpts = opts
	inst := &countingInstance{data: st}
	s.instances = append(s.instances, inst)
	return inst, nil
}

func structureOf(t *testing.T, person string, diseases ...string) domain.Structure {
	t.Helper()
	rels := make([]domain.Relationship, 0, len(diseases))
	for _, d := range diseases {
		rels = append(rels, domain.Relationship{Person: person, Disease: d})
	}
	s, err := domain.Build(&domain.Focus{ID: person}, rels)
	require.NoError(t, err)
	return s
}

func TestViewportPresentThenUpdateKeepsInstance(t *testing.T) {
	t.Parallel()
	surface := &countingSurface{}
	reg := metrics.NewRegistry()
	vp := NewViewport(surface, domain.VisualOptions{Shape: "dot", Size: 20}, reg, nil)

	assert.Equal(t, domain.ViewportEmpty, vp.State())
	require.NoError(t, vp.Present(structureOf(t, "Alice", "Flu")))
	assert.Equal(t, domain.ViewportLive, vp.State())
	assert.Equal(t, "dot", surface.lastOpts.Shape)

	require.NoError(t, vp.Update(structureOf(t, "Alice")))
	require.NoError(t, vp.Update(structureOf(t, "Alice", "Flu", "Asthma")))

	assert.Equal(t, 1, surface.mounts)
	assert.Equal(t, 2, surface.instances[0].sets)
	assert.Len(t, surface.instances[0].data.Nodes, 3)
	assert.Equal(t, 1.0, counterValue(t, reg.ViewportOpsTotal.WithLabelValues("present")))
	assert.Equal(t, 2.0, counterValue(t, reg.ViewportOpsTotal.WithLabelValues("update")))
}

func TestViewportRejectsInvalidTransitions(t *testing.T) {
	t.Parallel()
	surface := &countingSurface{}
	vp := NewViewport(surface, domain.VisualOptions{}, nil, nil)

	require.ErrorIs(t, vp.Update(structureOf(t, "Alice")), apperrors.ErrViewportEmpty)

	require.NoError(t, vp.Present(structureOf(t, "Alice")))
	require.ErrorIs(t, vp.Present(structureOf(t, "Bob")), apperrors.ErrViewportLive)
	assert.Equal(t, 1, surface.mounts)

	vp.Clear()
	assert.True(t, surface.instances[0].destroyed)
	assert.Equal(t, domain.ViewportEmpty, vp.State())
	require.ErrorIs(t, vp.Update(structureOf(t, "Alice")), apperrors.ErrViewportEmpty)

	vp.Clear()
}

func TestViewportShowRoutesByState(t *testing.T) {
	t.Parallel()
	surface := &countingSurface{}
	vp := NewViewport(surface, domain.VisualOptions{}, nil, nil)

	require.NoError(t, vp.Show(structureOf(t, "Alice")))
	require.NoError(t, vp.Show(structureOf(t, "Alice", "Flu")))
	assert.Equal(t, 1, surface.mounts)
	assert.Equal(t, 1, surface.instances[0].sets)

	vp.Clear()
	require.NoError(t, vp.Show(structureOf(t, "Bob")))
	assert.Equal(t, 2, surface.mounts)

	assert.True(t, vp.With(func(inst graphout.Instance) {
		assert.Same(t, surface.instances[1], inst)
	}))
}
