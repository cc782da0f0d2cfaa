package patients

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	entitydto "medgraph/internal/modules/entity/dto"
	"medgraph/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type PatientsPort interface {
	ListPersons(ctx context.Context) ([]entitydto.EntityOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type PersonsLoadedMsg struct {
	Persons []entitydto.EntityOutput
	Err     error
}

// ─── list item ───────────────────────────────────────────────────────────────

type personItem struct {
	person entitydto.EntityOutput
}

func (i personItem) Title() string       { return i.person.ID }
func (i personItem) Description() string { return fmt.Sprintf("age %d", i.person.Age) }
func (i personItem) FilterValue() string { return i.person.ID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    PatientsPort
	list    list.Model
	preview viewport.Model
	spinner spinner.Model
	focus   string
	loading bool
	width   int
	height  int
}

func New(port PatientsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Patients"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case PersonsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Patients · " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Patients"
		items := make([]list.Item, len(msg.Persons))
		for i, p := range msg.Persons {
			items[i] = personItem{person: p}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.preview.SetContent(m.renderDetail())
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading patients…")
	}

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
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Reload re-reads the person list, e.g. after a create.
func (m Model) Reload() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		if port == nil {
			return PersonsLoadedMsg{}
		}
		persons, err := port.ListPersons(context.Background())
		return PersonsLoadedMsg{Persons: persons, Err: err}
	}
}

// SetFocus marks the patient currently shown in the graph and consultation.
func (m *Model) SetFocus(name string) {
	m.focus = name
	m.preview.SetContent(m.renderDetail())
}

// SelectedPerson returns the highlighted patient's name, if any.
func (m Model) SelectedPerson() (string, bool) {
	if item, ok := m.list.SelectedItem().(personItem); ok {
		return item.person.ID, true
	}
	return "", false
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(personItem)
	if !ok {
		return theme.Muted.Render("No patients yet. Use :person:create <age> <name>")
	}
	p := item.person
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(p.ID) + "\n\n")
	sb.WriteString(theme.Muted.Render("age:   ") + fmt.Sprint(p.Age) + "\n")
	if m.focus == p.ID {
		sb.WriteString(theme.Hot.Render("● in consultation") + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: open graph and consultation"))
	return sb.String()
}
