package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	consultdto "medgraph/internal/modules/consultation/dto"
	apperrors "medgraph/internal/platform/errors"
	"medgraph/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ConsultationPort interface {
	Select(ctx context.Context, patient string) (consultdto.RecordOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type RecordLoadedMsg struct {
	Record consultdto.RecordOutput
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     ConsultationPort
	viewport viewport.Model
	spinner  spinner.Model
	record   consultdto.RecordOutput
	showAll  bool
	loading  bool
	width    int
	height   int
}

func New(port ConsultationPort) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(0, 1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Sapphire)

	return Model{port: port, viewport: vp, spinner: sp}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.viewport.SetContent(m.renderContent())

	case RecordLoadedMsg:
		if errors.Is(msg.Err, apperrors.ErrSuperseded) {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			return m, nil
		}
		m.SetRecord(msg.Record)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if msg.String() == "a" {
			m.showAll = !m.showAll
			m.viewport.SetContent(m.renderContent())
		}
	}

	var vCmd tea.Cmd
	m.viewport, vCmd = m.viewport.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := m.renderHeader()
	headerH := lipgloss.Height(header)
	footerH := 1

	vpHeight := m.height - headerH - footerH
	if vpHeight < 1 {
		vpHeight = 1
	}
	vpView := m.viewportAt(vpHeight)

	if m.loading {
		loading := lipgloss.Place(m.width, vpHeight, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Assembling record…")
		return lipgloss.JoinVertical(lipgloss.Left, header, loading)
	}

	footer := theme.Muted.Render(fmt.Sprintf("%.0f%%", m.viewport.ScrollPercent()*100))
	return lipgloss.JoinVertical(lipgloss.Left, header, vpView, footer)
}

// Open assembles the record for patient. The reply is a RecordLoadedMsg.
func (m *Model) Open(patient string) tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	port := m.port
	load := func() tea.Msg {
		rec, err := port.Select(context.Background(), patient)
		return RecordLoadedMsg{Record: rec, Err: err}
	}
	return tea.Batch(load, m.spinner.Tick)
}

// SetRecord shows a record produced elsewhere, e.g. by a mutation reload.
func (m *Model) SetRecord(rec consultdto.RecordOutput) {
	m.loading = false
	m.record = rec
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

func (m *Model) Reset() {
	m.loading = false
	m.record = consultdto.RecordOutput{}
	m.viewport.SetContent(m.renderContent())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = m.height - 3
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
}

// viewportAt renders at a temporary height without touching the stored one.
func (m Model) viewportAt(h int) string {
	vp := m.viewport
	vp.Height = h
	return vp.View()
}

func (m Model) renderHeader() string {
	r := m.record
	if r.DisplayID == "" {
		return theme.Title.Render("Consultation") +
			theme.Muted.Render("  Search for a patient (/) to open their record") + "\n"
	}
	parts := []string{
		theme.Title.Render(r.Patient.Name),
		theme.Muted.Render(fmt.Sprintf("age %d", r.Patient.Age)),
		theme.Hot.Render(r.DisplayID),
	}
	scope := "a: show all"
	if m.showAll {
		scope = "a: active only"
	}
	return strings.Join(parts, "  ") + theme.Muted.Render("  ↑/↓: scroll  "+scope) + "\n"
}

func (m Model) renderContent() string {
	r := m.record
	if r.DisplayID == "" {
		return ""
	}
	var sb strings.Builder

	diagnoses, diagTitle := r.ActiveDiagnoses, "Active diagnoses"
	rx, rxTitle := r.ActivePrescriptions, "Active prescriptions"
	if m.showAll {
		diagnoses, diagTitle = r.Diagnoses, "Diagnoses"
		rx, rxTitle = r.Prescriptions, "Prescriptions"
	}

	section(&sb, diagTitle, len(diagnoses) == 0, "No active diagnoses")
	for _, d := range diagnoses {
		sb.WriteString(fmt.Sprintf("  %-24s %-9s %s  %s\n",
			d.Disease, theme.Severity(d.Severity), d.Date, theme.Muted.Render(d.Doctor)))
		if m.showAll && d.Status != "active" {
			sb.WriteString(theme.Muted.Render("    status: "+d.Status) + "\n")
		}
		if d.Notes != "" {
			sb.WriteString(theme.Muted.Render("    "+d.Notes) + "\n")
		}
	}

	section(&sb, "Vital signs", len(r.Vitals) == 0, "No vital signs recorded")
	for _, v := range r.Vitals {
		sb.WriteString(fmt.Sprintf("  %s  BP %s  HR %s  T %s  W %s  H %s",
			theme.Muted.Render(v.RecordedAt), dash(v.BloodPressure), dash(v.HeartRate),
			dash(v.Temperature), dash(v.Weight), dash(v.Height)))
		if v.BMI != "" {
			sb.WriteString("  " + theme.Hot.Render("BMI "+v.BMI))
		}
		sb.WriteString("\n")
	}

	section(&sb, rxTitle, len(rx) == 0, "No active prescriptions")
	for _, p := range rx {
		sb.WriteString(fmt.Sprintf("  %-20s %s, %s", p.Medication, p.Dosage, p.Frequency))
		if p.Duration != "" {
			sb.WriteString(" for " + p.Duration)
		}
		sb.WriteString("  " + theme.Muted.Render(p.Doctor+" "+p.Date) + "\n")
	}

	section(&sb, "History", len(r.History) == 0, "No medical history")
	for _, h := range r.History {
		state := theme.Hot.Render("ongoing")
		if h.Resolved {
			state = theme.Ok.Render("resolved")
		}
		sb.WriteString(fmt.Sprintf("  %-24s %s  %s\n", h.Condition, h.DateDiagnosed, state))
	}
	return sb.String()
}

func section(sb *strings.Builder, title string, empty bool, placeholder string) {
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(theme.Title.Render(title) + "\n")
	if empty {
		sb.WriteString(theme.Muted.Render("  "+placeholder) + "\n")
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
