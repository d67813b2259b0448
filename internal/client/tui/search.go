// Package tui renders an interactive search box over the search controller.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/search"
)

const maxRows = 10

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noMatchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpLineStyle = dimStyle.Italic(true)
)

// Controller is the part of search.Controller the model drives.
type Controller interface {
	SetQuery(q string)
	Select(r models.SearchResult)
	Snapshot() search.Snapshot
}

// SnapshotMsg carries a search state change into the program.
type SnapshotMsg search.Snapshot

type Model struct {
	ctrl     Controller
	updates  <-chan search.Snapshot
	input    textinput.Model
	snap     search.Snapshot
	cursor   int
	selected *models.SearchResult
}

// New builds the model. updates delivers controller changes; it may be nil.
func New(ctrl Controller, updates <-chan search.Snapshot) Model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 120
	ti.Width = 40
	ti.Focus()
	return Model{ctrl: ctrl, updates: updates, input: ti, snap: ctrl.Snapshot()}
}

// Selected is the result chosen with enter, if any.
func (m Model) Selected() *models.SearchResult {
	return m.selected
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.wait())
}

func (m Model) wait() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	ch := m.updates
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg(s)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snap = search.Snapshot(msg)
		if m.cursor >= len(m.snap.Results) {
			m.cursor = 0
		}
		return m, m.wait()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tea.KeyDown:
			if m.cursor < m.visible()-1 {
				m.cursor++
			}
			return m, nil
		case tea.KeyEnter:
			if m.cursor < len(m.snap.Results) {
				r := m.snap.Results[m.cursor]
				m.selected = &r
				m.ctrl.Select(r)
				return m, tea.Quit
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.ctrl.SetQuery(v)
	}
	return m, cmd
}

func (m Model) visible() int {
	return min(len(m.snap.Results), maxRows)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Search files"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.snap.Loading:
		b.WriteString(dimStyle.Render("searching..."))
		b.WriteString("\n")
	case m.snap.Open && len(m.snap.Results) == 0:
		b.WriteString(noMatchStyle.Render("No files found"))
		b.WriteString("\n")
	case m.snap.Open:
		for i := 0; i < m.visible(); i++ {
			r := m.snap.Results[i]
			line := fmt.Sprintf("%-40s %-9s %s", r.Name, r.Type, r.CreatedAt.Format("02 Jan 2006"))
			if i == m.cursor {
				b.WriteString(cursorStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpLineStyle.Render("↑/↓ move • enter open • esc quit"))
	b.WriteString("\n")
	return b.String()
}

// Run shows the search box until the user picks a result or quits. The
// returned result is nil when nothing was picked.
func Run(ctx context.Context, ctrl Controller, updates <-chan search.Snapshot, in io.Reader, out io.Writer) (*models.SearchResult, error) {
	p := tea.NewProgram(New(ctrl, updates), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Selected(), nil
}
