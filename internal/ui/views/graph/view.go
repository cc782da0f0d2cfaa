package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	graphdto "medgraph/internal/modules/graph/dto"
	apperrors "medgraph/internal/platform/errors"
	"medgraph/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type GraphPort interface {
	Focus(ctx context.Context, input graphdto.FocusInput) (graphdto.GraphOutput, error)
	Render(width, height int) string
	Pan(dx, dy float64)
	Zoom(factor float64)
	Hover(step int) string
	TooltipDelay() time.Duration
}

// ─── messages ────────────────────────────────────────────────────────────────

type GraphLoadedMsg struct {
	Out graphdto.GraphOutput
	Err error
}

type tooltipMsg struct {
	seq  int
	text string
}

// ─── list item ───────────────────────────────────────────────────────────────

type relationshipItem struct {
	rel graphdto.RelationshipOutput
}

func (i relationshipItem) Title() string       { return i.rel.Disease }
func (i relationshipItem) Description() string { return i.rel.Description }
func (i relationshipItem) FilterValue() string { return i.rel.Disease }

const panStep = 40

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port       GraphPort
	list       list.Model
	spinner    spinner.Model
	graph      graphdto.GraphOutput
	tooltip    string
	tooltipSeq int
	loading    bool
	width      int
	height     int
}

func New(port GraphPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Green).BorderForeground(theme.Green)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Green)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Relationships"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Green)

	return Model{port: port, list: l, spinner: sp}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.listWidth(), m.height)

	case GraphLoadedMsg:
		if errors.Is(msg.Err, apperrors.ErrSuperseded) {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			return m, nil
		}
		cmds = append(cmds, m.SetGraph(msg.Out))

	case tooltipMsg:
		if msg.seq == m.tooltipSeq {
			m.tooltip = msg.text
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if m.port == nil || m.graph.Focus == "" || m.Filtering() {
			break
		}
		switch msg.String() {
		case "shift+left":
			m.port.Pan(-panStep, 0)
		case "shift+right":
			m.port.Pan(panStep, 0)
		case "shift+up":
			m.port.Pan(0, -panStep)
		case "shift+down":
			m.port.Pan(0, panStep)
		case "+", "=":
			m.port.Zoom(1.25)
		case "-":
			m.port.Zoom(0.8)
		case "n":
			return m, m.hover(1)
		case "N":
			return m, m.hover(-1)
		}
	}

	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading graph…")
	}
	if m.graph.Focus == "" || m.port == nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("Search for a patient (/) to see their graph"))
	}

	listW := m.listWidth()
	canvasW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	innerW, innerH := canvasW-4, m.height-4
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	header := theme.Title.Render(m.graph.Focus) +
		theme.Muted.Render(fmt.Sprintf("  %d nodes  %d edges  shift+arrows: pan  +/-: zoom  n/N: hover",
			len(m.graph.Nodes), len(m.graph.Edges)))
	body := m.port.Render(innerW, innerH-2)
	footer := theme.Muted.Render(" ")
	if m.tooltip != "" {
		footer = theme.Hot.Render(m.tooltip)
	}

	canvasPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(canvasW - 2).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, canvasPane)
}

// Focus loads the graph for person. The reply is a GraphLoadedMsg.
func (m *Model) Focus(person string) tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	port := m.port
	load := func() tea.Msg {
		out, err := port.Focus(context.Background(), graphdto.FocusInput{Person: person})
		return GraphLoadedMsg{Out: out, Err: err}
	}
	return tea.Batch(load, m.spinner.Tick)
}

// SetGraph shows a graph that was produced elsewhere, e.g. by a link.
func (m *Model) SetGraph(out graphdto.GraphOutput) tea.Cmd {
	m.loading = false
	m.graph = out
	m.tooltip = ""
	m.tooltipSeq++
	items := make([]list.Item, len(out.Relationships))
	for i, r := range out.Relationships {
		items[i] = relationshipItem{rel: r}
	}
	return m.list.SetItems(items)
}

// Reset returns the view to its empty state.
func (m *Model) Reset() {
	m.loading = false
	m.graph = graphdto.GraphOutput{}
	m.tooltip = ""
	m.tooltipSeq++
	m.list.SetItems(nil)
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) listWidth() int { return m.width * 3 / 10 }

// hover moves the highlight now and shows its tooltip after the
// configured delay, unless another hover happens first.
func (m *Model) hover(step int) tea.Cmd {
	text := m.port.Hover(step)
	m.tooltip = ""
	m.tooltipSeq++
	seq := m.tooltipSeq
	delay := m.port.TooltipDelay()
	if delay <= 0 {
		m.tooltip = text
		return nil
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return tooltipMsg{seq: seq, text: text} })
}
