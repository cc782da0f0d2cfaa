package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	consultdto "medgraph/internal/modules/consultation/dto"
	entitydto "medgraph/internal/modules/entity/dto"
	graphdto "medgraph/internal/modules/graph/dto"
	apperrors "medgraph/internal/platform/errors"
	"medgraph/internal/ui/components"
	"medgraph/internal/ui/theme"
	consultview "medgraph/internal/ui/views/consultation"
	diseasesview "medgraph/internal/ui/views/diseases"
	graphview "medgraph/internal/ui/views/graph"
	patientsview "medgraph/internal/ui/views/patients"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type entityPort interface {
	ListPersons(ctx context.Context) ([]entitydto.EntityOutput, error)
	ListDiseases(ctx context.Context) ([]entitydto.EntityOutput, error)
	CreatePerson(ctx context.Context, input entitydto.CreatePersonInput) (entitydto.MutationOutput, error)
	CreateDisease(ctx context.Context, input entitydto.CreateDiseaseInput) (entitydto.MutationOutput, error)
}

type searchPort interface {
	components.SearchPort
	Subscribe(fn func(name string))
}

type graphPort interface {
	graphview.GraphPort
	Link(ctx context.Context, input graphdto.LinkInput) (graphdto.MutationOutput, error)
	Unlink(ctx context.Context, input graphdto.LinkInput) (graphdto.MutationOutput, error)
	Clear()
}

type consultPort interface {
	consultview.ConsultationPort
	Tracker(ctx context.Context, disease string) (consultdto.TrackerOutput, error)
	RecordVitals(ctx context.Context, input consultdto.VitalsInput) (consultdto.MutationOutput, error)
	AddDiagnosis(ctx context.Context, input consultdto.DiagnosisInput) (consultdto.MutationOutput, error)
	UpdateDiagnosisStatus(ctx context.Context, input consultdto.StatusInput) (consultdto.MutationOutput, error)
	AddPrescription(ctx context.Context, input consultdto.PrescriptionInput) (consultdto.MutationOutput, error)
	Clear()
}

// Options carries the presentation settings the model needs.
type Options struct {
	NotifyDuration time.Duration
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabPatients tabID = iota
	tabGraph
	tabConsultation
	tabDiseases
	tabCount
)

var tabLabels = [tabCount]string{
	"Patients", "Graph", "Consultation", "Diseases",
}

// ─── async messages ───────────────────────────────────────────────────────────

// selectionMsg is a patient chosen in the search panel.
type selectionMsg struct{ name string }

// mutationMsg is the outcome of a palette write. Whichever of graph and
// record is set replaces what the matching view shows.
type mutationMsg struct {
	message        string
	err            error
	graph          *graphdto.GraphOutput
	record         *consultdto.RecordOutput
	reloadPersons  bool
	reloadDiseases bool
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Search  key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Enter   key.Binding
	Pan     key.Binding
	Zoom    key.Binding
	Hover   key.Binding
	All     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search patients")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open patient")),
		Pan:     key.NewBinding(key.WithKeys("shift+left", "shift+right", "shift+up", "shift+down"), key.WithHelp("shift+arrows", "pan graph")),
		Zoom:    key.NewBinding(key.WithKeys("+", "-"), key.WithHelp("+/-", "zoom graph")),
		Hover:   key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n/N", "hover node")),
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all/active records")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Search, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Search, k.Enter},
		{k.Pan, k.Zoom, k.Hover, k.All},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the search box,
// the help overlay, toasts and the command palette. Selection from the
// search panel fans out to the graph and consultation views.
type Model struct {
	entities entityPort
	search   searchPort
	graph    graphPort
	consult  consultPort

	selections chan string

	// sub-views (one per tab)
	patientsView patientsview.Model
	graphView    graphview.Model
	consultView  consultview.Model
	diseasesView diseasesview.Model

	// global UI state
	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	searchBox components.SearchBox
	toast     components.Toast
	focus     string
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(
	opts Options,
	entities entityPort,
	search searchPort,
	graph graphPort,
	consult consultPort,
) Model {
	selections := make(chan string, 1)
	if search != nil {
		search.Subscribe(func(name string) { offerLatest(selections, name) })
	}

	var graphV graphview.Model
	if graph != nil {
		graphV = graphview.New(graph)
	} else {
		graphV = graphview.New(nil)
	}

	var consultV consultview.Model
	if consult != nil {
		consultV = consultview.New(consult)
	} else {
		consultV = consultview.New(nil)
	}

	var searchBox components.SearchBox
	if search != nil {
		searchBox = components.NewSearchBox(search)
	} else {
		searchBox = components.NewSearchBox(nil)
	}

	return Model{
		entities:     entities,
		search:       search,
		graph:        graph,
		consult:      consult,
		selections:   selections,
		patientsView: patientsview.New(entities),
		graphView:    graphV,
		consultView:  consultV,
		diseasesView: diseasesview.New(diseasesPortBridge{entities: entities, consult: consult}),
		activeTab:    tabPatients,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		searchBox:    searchBox,
		toast:        components.NewToast(opts.NotifyDuration),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.patientsView.Init(),
		m.diseasesView.Init(),
		m.searchBox.WaitForPanel(),
		m.waitForSelection(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Async results reach their view whichever tab is showing.
	switch msg := msg.(type) {
	case components.ToastExpiredMsg:
		m.toast = m.toast.Update(msg)
		return m, nil

	case components.PanelChangedMsg:
		var cmd tea.Cmd
		m.searchBox, cmd = m.searchBox.Update(msg)
		return m, cmd

	case selectionMsg:
		cmd := m.openPatient(msg.name)
		return m, tea.Batch(cmd, m.waitForSelection())

	case graphview.GraphLoadedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, apperrors.ErrSuperseded) {
			cmds = append(cmds, m.toast.Show(apperrors.UserMessage(msg.Err, "graph load failed"), components.ToastError))
		}
		var cmd tea.Cmd
		m.graphView, cmd = m.graphView.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)

	case consultview.RecordLoadedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, apperrors.ErrSuperseded) {
			cmds = append(cmds, m.toast.Show(apperrors.UserMessage(msg.Err, "record load failed"), components.ToastError))
		}
		var cmd tea.Cmd
		m.consultView, cmd = m.consultView.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)

	case patientsview.PersonsLoadedMsg:
		var cmd tea.Cmd
		m.patientsView, cmd = m.patientsView.Update(msg)
		return m, cmd

	case diseasesview.DiseasesLoadedMsg, diseasesview.TrackerLoadedMsg:
		var cmd tea.Cmd
		m.diseasesView, cmd = m.diseasesView.Update(msg)
		return m, cmd

	case mutationMsg:
		return m.applyMutation(msg)
	}

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	// So does the search box while focused.
	if _, isKey := msg.(tea.KeyMsg); isKey && m.searchBox.Focused() {
		var cmd tea.Cmd
		m.searchBox, cmd = m.searchBox.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.searchBox.SetWidth(min(m.width-4, 60))
		m.help.Width = m.width
		m.propagateSize()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its list filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "/":
			cmd := m.searchBox.Focus()
			return m, cmd
		case "enter":
			if m.activeTab == tabPatients {
				if name, ok := m.patientsView.SelectedPerson(); ok {
					cmd := m.openPatient(name)
					return m, cmd
				}
			}
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabPatients:
		m.patientsView, tabCmd = m.patientsView.Update(msg)
	case tabGraph:
		m.graphView, tabCmd = m.graphView.Update(msg)
	case tabConsultation:
		m.consultView, tabCmd = m.consultView.Update(msg)
	case tabDiseases:
		m.diseasesView, tabCmd = m.diseasesView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.searchBox.Focused():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Top, m.searchBox.View())
	default:
		content = m.activeView()
	}

	if m.toast.Visible() {
		content = lipgloss.JoinVertical(lipgloss.Right, m.toast.View(), content)
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabPatients:
		return m.patientsView.View()
	case tabGraph:
		return m.graphView.View()
	case tabConsultation:
		return m.consultView.View()
	case tabDiseases:
		return m.diseasesView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "medgraph  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.focus != "" {
		left = theme.Hot.Render("● "+m.focus) + "  " + left
	}
	right := theme.Muted.Render("/:search  ?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
	args := components.SplitArgs(rest)

	switch parts[0] {
	case "link", "unlink":
		if rest == "" {
			m.status = "usage: " + parts[0] + " <disease>"
			return m, nil
		}
		return m, m.linkCmd(parts[0] == "link", rest)

	case "person:create":
		if len(parts) < 3 {
			m.status = "usage: person:create <age> <name>"
			return m, nil
		}
		age, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid age"
			return m, nil
		}
		name := strings.TrimSpace(strings.TrimPrefix(rest, parts[1]))
		return m, m.createPersonCmd(entitydto.CreatePersonInput{Name: name, Age: age})

	case "disease:create":
		if len(args) < 2 || args[0] == "" {
			m.status = "usage: disease:create <name>; <description>"
			return m, nil
		}
		return m, m.createDiseaseCmd(entitydto.CreateDiseaseInput{Name: args[0], Description: args[1]})

	case "vitals":
		f := parts[1:]
		field := func(i int) string {
			if i < len(f) && f[i] != "-" {
				return f[i]
			}
			return ""
		}
		return m, m.consultMutationCmd(func(ctx context.Context) (consultdto.MutationOutput, error) {
			return m.consult.RecordVitals(ctx, consultdto.VitalsInput{
				BloodPressure: field(0),
				HeartRate:     field(1),
				Temperature:   field(2),
				Weight:        field(3),
				Height:        field(4),
			})
		})

	case "diagnose":
		if args[0] == "" {
			m.status = "usage: diagnose <disease>; [severity]; [notes]"
			return m, nil
		}
		in := consultdto.DiagnosisInput{Disease: args[0]}
		if len(args) > 1 {
			in.Severity = args[1]
		}
		if len(args) > 2 {
			in.Notes = args[2]
		}
		return m, m.consultMutationCmd(func(ctx context.Context) (consultdto.MutationOutput, error) {
			return m.consult.AddDiagnosis(ctx, in)
		})

	case "status":
		if len(args) < 2 {
			m.status = "usage: status <disease>; <active|resolved|chronic>"
			return m, nil
		}
		in := consultdto.StatusInput{Disease: args[0], Status: args[1]}
		return m, m.consultMutationCmd(func(ctx context.Context) (consultdto.MutationOutput, error) {
			return m.consult.UpdateDiagnosisStatus(ctx, in)
		})

	case "prescribe":
		if len(args) < 3 {
			m.status = "usage: prescribe <medication>; <dosage>; <frequency>; [duration]"
			return m, nil
		}
		in := consultdto.PrescriptionInput{Medication: args[0], Dosage: args[1], Frequency: args[2]}
		if len(args) > 3 {
			in.Duration = args[3]
		}
		return m, m.consultMutationCmd(func(ctx context.Context) (consultdto.MutationOutput, error) {
			return m.consult.AddPrescription(ctx, in)
		})

	case "tracker":
		if rest == "" {
			m.status = "usage: tracker <disease>"
			return m, nil
		}
		m.activeTab = tabDiseases
		return m, m.diseasesView.Track(rest)

	case "refresh":
		cmds := []tea.Cmd{m.patientsView.Reload(), m.diseasesView.Reload()}
		if m.focus != "" {
			cmds = append(cmds, m.openPatient(m.focus))
		}
		return m, tea.Batch(cmds...)

	case "clear":
		if m.search != nil {
			m.search.Dismiss()
		}
		if m.graph != nil {
			m.graph.Clear()
		}
		if m.consult != nil {
			m.consult.Clear()
		}
		m.graphView.Reset()
		m.consultView.Reset()
		m.focus = ""
		m.patientsView.SetFocus("")
		m.status = "cleared"
		return m, nil

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

func (m Model) applyMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if msg.err != nil {
		cmds = append(cmds, m.toast.Show(apperrors.UserMessage(msg.err, ""), components.ToastError))
	} else {
		cmds = append(cmds, m.toast.Show(msg.message, components.ToastSuccess))
	}
	// A reload can fail after the write went through; keep what we have.
	if msg.graph != nil && msg.graph.Focus != "" {
		cmds = append(cmds, m.graphView.SetGraph(*msg.graph))
	}
	if msg.record != nil && msg.record.DisplayID != "" {
		m.consultView.SetRecord(*msg.record)
	}
	if msg.reloadPersons {
		cmds = append(cmds, m.patientsView.Reload())
	}
	if msg.reloadDiseases {
		cmds = append(cmds, m.diseasesView.Reload())
	}
	return m, tea.Batch(cmds...)
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// openPatient fans a chosen patient out to the graph and the consultation.
func (m *Model) openPatient(name string) tea.Cmd {
	m.focus = name
	m.status = "patient: " + name
	m.patientsView.SetFocus(name)
	return tea.Batch(m.graphView.Focus(name), m.consultView.Open(name))
}

func (m Model) waitForSelection() tea.Cmd {
	selections := m.selections
	return func() tea.Msg {
		return selectionMsg{name: <-selections}
	}
}

// offerLatest replaces any unread selection so the channel never blocks
// the search controller.
func offerLatest(ch chan string, name string) {
	for {
		select {
		case ch <- name:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabPatients:
		return m.patientsView.Filtering()
	case tabGraph:
		return m.graphView.Filtering()
	case tabDiseases:
		return m.diseasesView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.patientsView, _ = m.patientsView.Update(sz)
	m.graphView, _ = m.graphView.Update(sz)
	m.consultView, _ = m.consultView.Update(sz)
	m.diseasesView, _ = m.diseasesView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) linkCmd(link bool, disease string) tea.Cmd {
	graph := m.graph
	return func() tea.Msg {
		if graph == nil {
			return mutationMsg{err: fmt.Errorf("graph not configured")}
		}
		in := graphdto.LinkInput{Disease: disease}
		var (
			out graphdto.MutationOutput
			err error
		)
		if link {
			out, err = graph.Link(context.Background(), in)
		} else {
			out, err = graph.Unlink(context.Background(), in)
		}
		return mutationMsg{message: out.Message, err: err, graph: &out.Graph}
	}
}

func (m Model) createPersonCmd(in entitydto.CreatePersonInput) tea.Cmd {
	entities := m.entities
	return func() tea.Msg {
		out, err := entities.CreatePerson(context.Background(), in)
		return mutationMsg{message: out.Message, err: err, reloadPersons: err == nil}
	}
}

func (m Model) createDiseaseCmd(in entitydto.CreateDiseaseInput) tea.Cmd {
	entities := m.entities
	return func() tea.Msg {
		out, err := entities.CreateDisease(context.Background(), in)
		return mutationMsg{message: out.Message, err: err, reloadDiseases: err == nil}
	}
}

func (m Model) consultMutationCmd(run func(ctx context.Context) (consultdto.MutationOutput, error)) tea.Cmd {
	if m.consult == nil {
		return nil
	}
	return func() tea.Msg {
		out, err := run(context.Background())
		return mutationMsg{message: out.Message, err: err, record: &out.Record, reloadDiseases: err == nil}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows the broad ports to the minimal interface needed by a
// specific sub-view.

type diseasesPortBridge struct {
	entities entityPort
	consult  consultPort
}

func (b diseasesPortBridge) ListDiseases(ctx context.Context) ([]entitydto.EntityOutput, error) {
	return b.entities.ListDiseases(ctx)
}

func (b diseasesPortBridge) Tracker(ctx context.Context, disease string) (consultdto.TrackerOutput, error) {
	if b.consult == nil {
		return consultdto.TrackerOutput{}, fmt.Errorf("consultation not configured")
	}
	return b.consult.Tracker(ctx, disease)
}
