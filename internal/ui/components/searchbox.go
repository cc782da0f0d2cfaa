package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	searchdto "medgraph/internal/modules/search/dto"
	"medgraph/internal/ui/theme"
)

// SearchPort is the slice of the search controller the box drives.
type SearchPort interface {
	OnInput(ctx context.Context, text string)
	Select(name string) (searchdto.CandidateOutput, error)
	Dismiss()
	Updates() <-chan struct{}
	Panel() searchdto.PanelUpdate
}

// PanelChangedMsg carries the latest results panel state.
type PanelChangedMsg struct{ Panel searchdto.PanelUpdate }

var (
	searchBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Surface1).
			Background(theme.Mantle).
			Padding(0, 1)

	searchBoxFocused = searchBoxStyle.BorderForeground(theme.Lavender)

	resultCursor = lipgloss.NewStyle().Foreground(theme.Lavender).Bold(true)
)

const maxVisibleResults = 8

// SearchBox is a text input with a results dropdown fed by the search
// controller. Keystrokes go to the controller; the dropdown only renders
// whatever panel state the controller last published.
type SearchBox struct {
	port   SearchPort
	input  textinput.Model
	panel  searchdto.PanelUpdate
	cursor int
	width  int
}

func NewSearchBox(port SearchPort) SearchBox {
	ti := textinput.New()
	ti.Placeholder = "search patients…"
	ti.Prompt = "/ "
	ti.CharLimit = 120
	return SearchBox{port: port, input: ti}
}

func (s *SearchBox) Focus() tea.Cmd { return s.input.Focus() }

func (s SearchBox) Focused() bool { return s.input.Focused() }

func (s *SearchBox) SetWidth(w int) { s.width = w }

// WaitForPanel blocks until the controller publishes a change. The app
// re-arms it after every PanelChangedMsg.
func (s SearchBox) WaitForPanel() tea.Cmd {
	if s.port == nil {
		return nil
	}
	updates := s.port.Updates()
	port := s.port
	return func() tea.Msg {
		<-updates
		return PanelChangedMsg{Panel: port.Panel()}
	}
}

func (s SearchBox) Update(msg tea.Msg) (SearchBox, tea.Cmd) {
	switch msg := msg.(type) {
	case PanelChangedMsg:
		s.panel = msg.Panel
		if s.cursor >= len(s.panel.Results) {
			s.cursor = 0
		}
		return s, s.WaitForPanel()

	case tea.KeyMsg:
		if !s.input.Focused() {
			return s, nil
		}
		switch msg.String() {
		case "esc":
			s.reset()
			if s.port != nil {
				s.port.Dismiss()
			}
			return s, nil
		case "up", "ctrl+p":
			if s.cursor > 0 {
				s.cursor--
			}
			return s, nil
		case "down", "ctrl+n":
			if s.cursor < len(s.panel.Results)-1 {
				s.cursor++
			}
			return s, nil
		case "enter":
			if s.port == nil || !s.panel.Open || len(s.panel.Results) == 0 {
				return s, nil
			}
			// Select by the name on the highlighted row; the controller may
			// already hold a newer list than this panel.
			if _, err := s.port.Select(s.panel.Results[s.cursor].Name); err != nil {
				return s, nil
			}
			s.reset()
			return s, nil
		}
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if after := s.input.Value(); after != before && s.port != nil {
		s.port.OnInput(context.Background(), after)
	}
	return s, cmd
}

func (s SearchBox) View() string {
	style := searchBoxStyle
	if s.input.Focused() {
		style = searchBoxFocused
	}
	w := s.width
	if w < 24 {
		w = 40
	}

	var sb strings.Builder
	sb.WriteString(s.input.View())
	if s.panel.Open {
		sb.WriteString("\n")
		if len(s.panel.Results) == 0 {
			sb.WriteString(theme.Muted.Render(s.panel.Message))
		}
		for i, c := range s.panel.Results {
			if i == maxVisibleResults {
				sb.WriteString(theme.Muted.Render(fmt.Sprintf("\n  … %d more", len(s.panel.Results)-i)))
				break
			}
			line := fmt.Sprintf("%s (%d)", c.Name, c.Age)
			if i == s.cursor {
				line = resultCursor.Render("› " + line)
			} else {
				line = "  " + line
			}
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(line)
		}
	}
	return style.Width(w - 2).Render(sb.String())
}

func (s *SearchBox) reset() {
	s.input.SetValue("")
	s.input.Blur()
	s.cursor = 0
	s.panel = searchdto.PanelUpdate{}
}
