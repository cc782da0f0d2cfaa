package diseases

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	consultdto "medgraph/internal/modules/consultation/dto"
	entitydto "medgraph/internal/modules/entity/dto"
	"medgraph/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type DiseasesPort interface {
	ListDiseases(ctx context.Context) ([]entitydto.EntityOutput, error)
	Tracker(ctx context.Context, disease string) (consultdto.TrackerOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type DiseasesLoadedMsg struct {
	Diseases []entitydto.EntityOutput
	Err      error
}

type TrackerLoadedMsg struct {
	Out consultdto.TrackerOutput
	Err error
}

// ─── list item ───────────────────────────────────────────────────────────────

type diseaseItem struct {
	disease entitydto.EntityOutput
}

func (i diseaseItem) Title() string { return i.disease.ID }
func (i diseaseItem) Description() string {
	if i.disease.ICD10 != "" {
		return i.disease.ICD10 + "  " + i.disease.Description
	}
	return i.disease.Description
}
func (i diseaseItem) FilterValue() string { return i.disease.ID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    DiseasesPort
	list    list.Model
	detail  viewport.Model
	tracker consultdto.TrackerOutput
	err     error
	width   int
	height  int
}

func New(port DiseasesPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Peach).BorderForeground(theme.Peach)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Peach)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Diseases"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	return Model{port: port, list: l, detail: vp}
}

func (m Model) Init() tea.Cmd { return m.Reload() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case DiseasesLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Diseases · " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Diseases"
		items := make([]list.Item, len(msg.Diseases))
		for i, d := range msg.Diseases {
			items[i] = diseaseItem{disease: d}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Diseases) > 0 {
			cmds = append(cmds, m.TrackSelected())
		}

	case TrackerLoadedMsg:
		m.tracker, m.err = msg.Out, msg.Err
		m.detail.SetContent(m.renderDetail())
		m.detail.GotoTop()
	}

	prevIdx := m.list.Index()
	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	if m.list.Index() != prevIdx {
		cmds = append(cmds, m.TrackSelected())
	}

	var vCmd tea.Cmd
	m.detail, vCmd = m.detail.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) Reload() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		if port == nil {
			return DiseasesLoadedMsg{}
		}
		diseases, err := port.ListDiseases(context.Background())
		return DiseasesLoadedMsg{Diseases: diseases, Err: err}
	}
}

// TrackSelected loads the tracker for the highlighted disease.
func (m Model) TrackSelected() tea.Cmd {
	item, ok := m.list.SelectedItem().(diseaseItem)
	if !ok {
		return nil
	}
	return m.Track(item.disease.ID)
}

// Track loads the patient tracker for disease.
func (m Model) Track(disease string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		if port == nil {
			return TrackerLoadedMsg{}
		}
		out, err := port.Tracker(context.Background(), disease)
		return TrackerLoadedMsg{Out: out, Err: err}
	}
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	if m.err != nil {
		return theme.Bad.Render("Error: " + m.err.Error())
	}
	t := m.tracker
	if t.Disease == "" {
		return theme.Muted.Render("Select a disease to see its patients")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(t.Disease) + "\n\n")
	if item, ok := m.list.SelectedItem().(diseaseItem); ok && item.disease.ID == t.Disease {
		sb.WriteString(theme.Muted.Render(item.disease.Description) + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("%s %s %.1f%%  %s %.1f%%  %s %.1f%%\n\n",
		theme.Muted.Render("severity:"),
		theme.Severity("mild"), t.Mild,
		theme.Severity("moderate"), t.Moderate,
		theme.Severity("severe"), t.Severe))
	if len(t.Patients) == 0 {
		sb.WriteString(theme.Muted.Render("No patients with an active diagnosis"))
		return sb.String()
	}
	for _, p := range t.Patients {
		sb.WriteString(fmt.Sprintf("%-20s %3d  %-9s %s  %s\n",
			p.Patient, p.Age, theme.Severity(p.Severity), p.DiagnosedDate, theme.Muted.Render(p.Doctor)))
	}
	return sb.String()
}
