package out

import (
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"medgraph/internal/modules/graph/domain"
	graphout "medgraph/internal/modules/graph/port/out"
)

var errDestroyed = errors.New("graph instance destroyed")

// world units per terminal column at zoom 1; rows are twice as tall.
const (
	colScale = 0.08
	rowScale = 0.04
)

type cellClass uint8

const (
	cellBlank cellClass = iota
	cellEdge
	cellArrow
	cellPerson
	cellDisease
	cellHover
)

var canvasStyles = map[cellClass]lipgloss.Style{
	cellEdge:    lipgloss.NewStyle().Foreground(lipgloss.Color("#585b70")),
	cellArrow:   lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8")),
	cellPerson:  lipgloss.NewStyle().Foreground(lipgloss.Color("#b4befe")).Bold(true),
	cellDisease: lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387")),
	cellHover:   lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true).Underline(true),
}

// Canvas renders graphs as text. Each Mount yields an independent view.
type Canvas struct{}

func NewCanvas() *Canvas { return &Canvas{} }

func (c *Canvas) Mount(s domain.Structure, opts domain.VisualOptions) (graphout.Instance, error) {
	v := &canvasView{
		opts:      opts,
		layout:    newForceLayout(opts.Physics),
		positions: map[string]point{},
		zoom:      1,
		hovered:   -1,
	}
	v.apply(s)
	v.camera = v.centroid()
	return v, nil
}

type canvasView struct {
	mu        sync.Mutex
	opts      domain.VisualOptions
	layout    forceLayout
	data      domain.Structure
	positions map[string]point
	camera    point
	zoom      float64
	hovered   int
	destroyed bool
}

// SetData keeps the position of every node that survives, lays out only the
// newcomers and leaves the camera where the user put it.
func (v *canvasView) SetData(s domain.Structure) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return errDestroyed
	}
	v.apply(s)
	return nil
}

func (v *canvasView) apply(s domain.Structure) {
	keep := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		keep[n.ID] = true
	}
	pinned := make(map[string]bool, len(v.positions))
	for id := range v.positions {
		if keep[id] {
			pinned[id] = true
		} else {
			delete(v.positions, id)
		}
	}
	v.layout.place(s.Nodes, s.Edges, v.positions)
	v.layout.settle(s.Nodes, s.Edges, v.positions, pinned)
	if v.hovered >= len(s.Nodes) {
		v.hovered = -1
	}
	v.data = s
}

func (v *canvasView) centroid() point {
	if len(v.data.Nodes) == 0 {
		return point{}
	}
	var c point
	for _, n := range v.data.Nodes {
		p := v.positions[n.ID]
		c.X += p.X
		c.Y += p.Y
	}
	size := float64(len(v.data.Nodes))
	return point{c.X / size, c.Y / size}
}

// Pan shifts the camera by screen cells.
func (v *canvasView) Pan(dx, dy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.camera.X += dx / (colScale * v.zoom)
	v.camera.Y += dy / (rowScale * v.zoom)
}

func (v *canvasView) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom = math.Max(0.2, math.Min(5, v.zoom*factor))
}

// Hover moves the highlight by step nodes and returns its tooltip text.
func (v *canvasView) Hover(step int) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := len(v.data.Nodes)
	if !v.opts.Hover || n == 0 || v.destroyed {
		return ""
	}
	if v.hovered < 0 {
		v.hovered = 0
		if step < 0 {
			v.hovered = n - 1
		}
	} else {
		v.hovered = ((v.hovered+step)%n + n) % n
	}
	node := v.data.Nodes[v.hovered]
	if node.Title != "" {
		return node.Label + ": " + node.Title
	}
	return node.Label
}

func (v *canvasView) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.destroyed = true
	v.data = domain.Structure{}
	v.positions = nil
}

func (v *canvasView) Render(width, height int) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed || width <= 0 || height <= 0 {
		return ""
	}
	g := newGrid(width, height)
	screen := make(map[string][2]int, len(v.data.Nodes))
	for _, n := range v.data.Nodes {
		p := v.positions[n.ID]
		x := int(math.Round((p.X-v.camera.X)*colScale*v.zoom)) + width/2
		y := int(math.Round((p.Y-v.camera.Y)*rowScale*v.zoom)) + height/2
		screen[n.ID] = [2]int{x, y}
	}
	for _, e := range v.data.Edges {
		from, okFrom := screen[e.From]
		to, okTo := screen[e.To]
		if okFrom && okTo {
			g.line(from, to, v.opts.ArrowScale > 0)
		}
	}
	glyph := shapeGlyph(v.opts.Shape)
	for i, n := range v.data.Nodes {
		at := screen[n.ID]
		class := cellDisease
		if n.Kind == domain.NodeKindPerson {
			class = cellPerson
		}
		if i == v.hovered {
			class = cellHover
		}
		g.set(at[0], at[1], glyph, class)
		g.text(at[0]+2, at[1], n.Label, class)
	}
	return g.String()
}

func shapeGlyph(shape string) rune {
	switch shape {
	case "box", "square":
		return '■'
	case "diamond":
		return '◆'
	case "triangle":
		return '▲'
	case "star":
		return '★'
	default:
		return '●'
	}
}

type grid struct {
	w, h  int
	runes [][]rune
	class [][]cellClass
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, runes: make([][]rune, h), class: make([][]cellClass, h)}
	for y := range g.runes {
		g.runes[y] = []rune(strings.Repeat(" ", w))
		g.class[y] = make([]cellClass, w)
	}
	return g
}

func (g *grid) set(x, y int, r rune, c cellClass) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.runes[y][x] = r
	g.class[y][x] = c
}

func (g *grid) text(x, y int, s string, c cellClass) {
	for i, r := range []rune(s) {
		g.set(x+i, y, r, c)
	}
}

// line draws a Bresenham segment and, when arrow is set, an arrowhead on the
// cell just before the target.
func (g *grid) line(from, to [2]int, arrow bool) {
	x0, y0, x1, y1 := from[0], from[1], to[0], to[1]
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	prevX, prevY := x0, y0
	for x, y := x0, y0; x != x1 || y != y1; {
		if (x != x0 || y != y0) && g.inside(x, y) && g.class[y][x] == cellBlank {
			g.set(x, y, '·', cellEdge)
		}
		prevX, prevY = x, y
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	if arrow && (prevX != x0 || prevY != y0) {
		g.set(prevX, prevY, arrowGlyph(x1-prevX, y1-prevY), cellArrow)
	}
}

func (g *grid) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h
}

func arrowGlyph(dx, dy int) rune {
	if abs(dx) >= abs(dy) {
		if dx >= 0 {
			return '→'
		}
		return '←'
	}
	if dy > 0 {
		return '↓'
	}
	return '↑'
}

func (g *grid) String() string {
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		start := 0
		for x := 1; x <= g.w; x++ {
			if x < g.w && g.class[y][x] == g.class[y][start] {
				continue
			}
			run := string(g.runes[y][start:x])
			if style, ok := canvasStyles[g.class[y][start]]; ok {
				run = style.Render(run)
			}
			b.WriteString(run)
			start = x
		}
		if y < g.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
