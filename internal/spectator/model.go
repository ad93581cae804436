// Package spectator is a read-only terminal view of a running game.
package spectator

import (
	"fmt"
	"strings"

	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/parser"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LineMsg is one public log line.
type LineMsg struct {
	Channel string
	Line    string
}

// StatusMsg carries the registers shown in the header.
type StatusMsg struct {
	Phase     game.Phase
	Remaining []string
	Winner    game.Faction
}

// ClosedMsg ends the feed; Err is nil when the game finished normally.
type ClosedMsg struct {
	Err error
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	managerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	nighttimeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	speakerStyle   = lipgloss.NewStyle().Bold(true)
	footerStyle    = lipgloss.NewStyle().Faint(true)
)

const headerLines, footerLines = 2, 1

type Model struct {
	title    string
	viewport viewport.Model
	ready    bool
	lines    []string
	status   StatusMsg
	closed   bool
	err      error
}

func NewModel(title string) Model {
	return Model{title: title}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		height := max(1, msg.Height-headerLines-footerLines)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refresh(true)
		return m, nil
	case LineMsg:
		follow := !m.ready || m.viewport.AtBottom()
		m.lines = append(m.lines, Render(msg.Channel, msg.Line))
		m.refresh(follow)
		return m, nil
	case StatusMsg:
		m.status = msg
		return m, nil
	case ClosedMsg:
		m.closed = true
		m.err = msg.Err
		return m, nil
	}
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) refresh(follow bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) View() string {
	if !m.ready {
		return "connecting..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.header(), m.viewport.View(), m.footer())
}

func (m Model) header() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(m.status.Phase.String())
	if m.status.Winner != game.FactionNone {
		b.WriteString("  " + managerStyle.Render(m.status.Winner.OutcomeMessage()))
	}
	b.WriteString("\nremaining: " + strings.Join(m.status.Remaining, ", "))
	return b.String()
}

func (m Model) footer() string {
	switch {
	case m.err != nil:
		return footerStyle.Render("feed lost: " + m.err.Error() + "  (q to quit)")
	case m.closed:
		return footerStyle.Render("game over  (q to quit)")
	}
	return footerStyle.Render("↑/↓ scroll  q quit")
}

// Render styles one log line for display.
func Render(channel, line string) string {
	msg, ok := game.ParseMessage(line)
	if !ok {
		return line
	}
	prefix := "[" + msg.Time + "] "
	if channel == parser.ChannelNighttime {
		prefix = nighttimeStyle.Render("[night "+msg.Time+"]") + " "
	}
	if msg.Speaker == game.ManagerName {
		return prefix + managerStyle.Render(msg.Text)
	}
	return prefix + speakerStyle.Render(msg.Speaker) + ": " + msg.Text
}
