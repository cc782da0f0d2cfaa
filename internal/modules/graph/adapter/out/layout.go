package out

import (
	"math"

	"medgraph/internal/modules/graph/domain"
)

const goldenAngle = 2.399963229728653

type point struct {
	X, Y float64
}

// forceLayout is a Fruchterman-Reingold pass. Pinned nodes contribute forces
// but never move, which is how existing nodes keep their place across
// updates.
type forceLayout struct {
	springLength float64
	repulsion    float64
	attraction   float64
	iterations   int
	enabled      bool
}

func newForceLayout(p domain.Physics) forceLayout {
	l := forceLayout{
		springLength: p.SpringLength,
		repulsion:    1,
		attraction:   1,
		iterations:   p.Iterations,
		enabled:      p.Enabled,
	}
	if l.springLength <= 0 {
		l.springLength = 200
	}
	// Normalised so the stock vis-network values give the plain algorithm.
	if p.GravitationalConstant != 0 {
		l.repulsion = math.Abs(p.GravitationalConstant) / 8000
	}
	if p.SpringConstant > 0 {
		l.attraction = p.SpringConstant / 0.001
	}
	if l.iterations <= 0 {
		l.iterations = 60
	}
	return l
}

// place seeds positions for nodes that have none, next to an already placed
// neighbour when there is one.
func (l forceLayout) place(nodes []domain.Node, edges []domain.Edge, pos map[string]point) {
	neighbour := make(map[string]string, len(edges)*2)
	for _, e := range edges {
		if _, ok := neighbour[e.To]; !ok {
			neighbour[e.To] = e.From
		}
		if _, ok := neighbour[e.From]; !ok {
			neighbour[e.From] = e.To
		}
	}
	for i, n := range nodes {
		if _, ok := pos[n.ID]; ok {
			continue
		}
		angle := goldenAngle * float64(i)
		origin := point{}
		radius := l.springLength * math.Sqrt(float64(i))
		if anchor, ok := pos[neighbour[n.ID]]; ok {
			origin = anchor
			radius = l.springLength
		}
		pos[n.ID] = point{X: origin.X + radius*math.Cos(angle), Y: origin.Y + radius*math.Sin(angle)}
	}
}

func (l forceLayout) settle(nodes []domain.Node, edges []domain.Edge, pos map[string]point, pinned map[string]bool) {
	if !l.enabled || len(nodes) < 2 {
		return
	}
	k := l.springLength
	temperature := k / 2
	disp := make(map[string]point, len(nodes))
	for iter := 0; iter < l.iterations; iter++ {
		for _, n := range nodes {
			disp[n.ID] = point{}
		}
		for i := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				a, b := nodes[i].ID, nodes[j].ID
				dx, dy, dist := delta(pos[a], pos[b])
				force := l.repulsion * k * k / dist
				fx, fy := dx/dist*force, dy/dist*force
				disp[a] = point{disp[a].X + fx, disp[a].Y + fy}
				disp[b] = point{disp[b].X - fx, disp[b].Y - fy}
			}
		}
		for _, e := range edges {
			from, okFrom := pos[e.From]
			to, okTo := pos[e.To]
			if !okFrom || !okTo || e.From == e.To {
				continue
			}
			dx, dy, dist := delta(from, to)
			force := l.attraction * dist * dist / k
			fx, fy := dx/dist*force, dy/dist*force
			disp[e.From] = point{disp[e.From].X - fx, disp[e.From].Y - fy}
			disp[e.To] = point{disp[e.To].X + fx, disp[e.To].Y + fy}
		}
		cool := 1 - float64(iter)/float64(l.iterations)
		for _, n := range nodes {
			if pinned[n.ID] {
				continue
			}
			d := disp[n.ID]
			mag := math.Hypot(d.X, d.Y)
			if mag == 0 {
				continue
			}
			step := math.Min(mag, temperature) * cool
			p := pos[n.ID]
			pos[n.ID] = point{p.X + d.X/mag*step, p.Y + d.Y/mag*step}
		}
		temperature *= 0.95
	}
}

func delta(a, b point) (dx, dy, dist float64) {
	dx, dy = a.X-b.X, a.Y-b.Y
	dist = math.Hypot(dx, dy)
	if dist < 0.01 {
		dist = 0.01
	}
	return dx, dy, dist
}
