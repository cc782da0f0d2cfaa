package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"medgraph/internal/ui/theme"
)

// ToastKind selects the toast colour.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// ToastExpiredMsg hides the toast that was shown with the same sequence.
type ToastExpiredMsg struct{ seq int }

var toastStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	Background(theme.Mantle).
	Padding(0, 1)

// Toast is a transient notification that dismisses itself after a fixed
// duration. A newer toast replaces the current one and restarts the timer.
type Toast struct {
	text     string
	kind     ToastKind
	seq      int
	visible  bool
	duration time.Duration
}

func NewToast(d time.Duration) Toast {
	if d <= 0 {
		d = 3 * time.Second
	}
	return Toast{duration: d}
}

// Show displays text and returns the command that will expire it.
func (t *Toast) Show(text string, kind ToastKind) tea.Cmd {
	t.seq++
	t.text = text
	t.kind = kind
	t.visible = true
	seq := t.seq
	return tea.Tick(t.duration, func(time.Time) tea.Msg { return ToastExpiredMsg{seq: seq} })
}

func (t Toast) Visible() bool { return t.visible }

func (t Toast) Text() string { return t.text }

func (t Toast) Update(msg tea.Msg) Toast {
	if m, ok := msg.(ToastExpiredMsg); ok && m.seq == t.seq {
		t.visible = false
	}
	return t
}

func (t Toast) View() string {
	if !t.visible {
		return ""
	}
	border := theme.Sapphire
	fg := lipgloss.NewStyle().Foreground(theme.Text)
	switch t.kind {
	case ToastSuccess:
		border = theme.Green
		fg = theme.Ok
	case ToastError:
		border = theme.Red
		fg = theme.Bad
	}
	return toastStyle.BorderForeground(border).Render(fg.Render(t.text))
}
