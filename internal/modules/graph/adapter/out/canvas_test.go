package out

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgraph/internal/modules/graph/domain"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var testOptions = domain.VisualOptions{
	Shape:      "dot",
	ArrowScale: 0.5,
	Hover:      true,
	Physics: domain.Physics{
		Enabled:               true,
		GravitationalConstant: -8000,
		SpringConstant:        0.001,
		SpringLength:          200,
		Iterations:            60,
	},
}

func build(t *testing.T, person string, diseases ...string) domain.Structure {
	t.Helper()
	rels := make([]domain.Relationship, 0, len(diseases))
	for _, d := range diseases {
		rels = append(rels, domain.Relationship{Person: person, Disease: d, Description: d + " description"})
	}
	s, err := domain.Build(&domain.Focus{ID: person}, rels)
	require.NoError(t, err)
	return s
}

func mount(t *testing.T, s domain.Structure) *canvasView {
	t.Helper()
	inst, err := NewCanvas().Mount(s, testOptions)
	require.NoError(t, err)
	v, ok := inst.(*canvasView)
	require.True(t, ok)
	return v
}

func TestSetDataKeepsSurvivingPositionsAndCamera(t *testing.T) {
	t.Parallel()
	v := mount(t, build(t, "Alice", "Flu", "Asthma"))
	v.Pan(4, 2)
	v.Zoom(1.5)
	before := map[string]point{}
	for id, p := range v.positions {
		before[id] = p
	}
	camera, zoom := v.camera, v.zoom

	require.NoError(t, v.SetData(build(t, "Alice", "Flu", "Asthma", "Gout")))

	for id, p := range before {
		assert.Equal(t, p, v.positions[id], id)
	}
	gout, ok := v.positions[domain.DiseaseNodeID("Gout")]
	require.True(t, ok)
	assert.False(t, math.IsNaN(gout.X) || math.IsNaN(gout.Y))
	assert.Equal(t, camera, v.camera)
	assert.Equal(t, zoom, v.zoom)

	require.NoError(t, v.SetData(build(t, "Alice", "Gout")))
	_, ok = v.positions[domain.DiseaseNodeID("Flu")]
	assert.False(t, ok, "removed nodes lose their position")
	assert.Equal(t, gout, v.positions[domain.DiseaseNodeID("Gout")])
}

func TestLayoutSeparatesNodes(t *testing.T) {
	t.Parallel()
	v := mount(t, build(t, "Alice", "Flu", "Asthma", "Gout"))
	ids := make([]string, 0, len(v.positions))
	for id := range v.positions {
		ids = append(ids, id)
	}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			_, _, dist := delta(v.positions[ids[i]], v.positions[ids[j]])
			assert.Greater(t, dist, 1.0, "%s vs %s", ids[i], ids[j])
		}
	}
}

func TestRenderDrawsLabelsAndArrows(t *testing.T) {
	t.Parallel()
	v := mount(t, build(t, "Alice", "Flu"))
	out := v.Render(80, 24)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 24)
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Flu")
	assert.Equal(t, 2, strings.Count(out, "●"))
	assert.True(t, strings.ContainsAny(out, "→←↑↓"), "edge has an arrowhead")
}

func TestHoverCyclesAndReportsTooltip(t *testing.T) {
	t.Parallel()
	v := mount(t, build(t, "Alice", "Flu"))
	assert.Equal(t, "Alice", v.Hover(1))
	assert.Equal(t, "Flu: Flu description", v.Hover(1))
	assert.Equal(t, "Alice", v.Hover(1))
	assert.Equal(t, "Flu: Flu description", v.Hover(-1))
}

func TestDestroyedInstanceRejectsData(t *testing.T) {
	t.Parallel()
	v := mount(t, build(t, "Alice"))
	v.Destroy()
	require.ErrorIs(t, v.SetData(build(t, "Alice", "Flu")), errDestroyed)
	assert.Empty(t, v.Render(10, 5))
}

func TestPhysicsDisabledOnlySeedsPositions(t *testing.T) {
	t.Parallel()
	opts := testOptions
	opts.Physics.Enabled = false
	inst, err := NewCanvas().Mount(build(t, "Alice", "Flu"), opts)
	require.NoError(t, err)
	v := inst.(*canvasView)
	assert.Equal(t, point{}, v.positions[domain.PersonNodeID("Alice")])
}
