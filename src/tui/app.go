// Package tui is an interactive browser over a finished set of matches.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/facetrace/cli/src/display"
	"github.com/facetrace/cli/src/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(display.Purple).
			Bold(true).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(display.Comment).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(display.Foreground)

	selectedStyle = lipgloss.NewStyle().
			Foreground(display.Foreground).
			Background(display.Selection).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(display.Cyan)

	helpStyle = lipgloss.NewStyle().
			Foreground(display.Comment)

	errorStyle = lipgloss.NewStyle().
			Foreground(display.Red)
)

// chrome is the number of lines taken by title, input and help
const chrome = 7

// OpenFunc opens a URL outside the TUI
type OpenFunc func(url string) error

type appModel struct {
	matches  []model.Match
	filtered []model.Match
	input    textinput.Model
	viewport viewport.Model
	cursor   int
	open     OpenFunc
	status   string
	err      error
	width    int
	height   int
}

type openedMsg struct {
	url string
	err error
}

func initialModel(matches []model.Match, open OpenFunc) appModel {
	ti := textinput.New()
	ti.Placeholder = "Filter by platform or username..."
	ti.Width = 50

	m := appModel{
		matches:  matches,
		input:    ti,
		viewport: viewport.New(80, 24-chrome),
		open:     open,
	}
	m.applyFilter()
	return m
}

func (m appModel) Init() tea.Cmd {
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter", "tab":
				m.input.Blur()
				return m, nil
			case "esc":
				m.input.SetValue("")
				m.input.Blur()
				m.applyFilter()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "/":
			m.input.Focus()
			return m, textinput.Blink
		case "esc":
			m.input.SetValue("")
			m.applyFilter()
			return m, nil
		case "up", "k":
			m.moveCursor(-1)
			return m, nil
		case "down", "j":
			m.moveCursor(1)
			return m, nil
		case "enter", "o":
			if sel, ok := m.Selected(); ok && m.open != nil {
				return m, m.openURL(sel.URL)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case openedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "Opened " + msg.url
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m appModel) openURL(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return openedMsg{url: url, err: open(url)}
	}
}

// applyFilter recomputes the visible matches from the filter text
func (m *appModel) applyFilter() {
	m.filtered = Filter(m.matches, m.input.Value())
	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
	m.refresh()
}

func (m *appModel) moveCursor(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.filtered)-1)
	m.refresh()

	// two lines per row
	line := m.cursor * 2
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
	} else if line+1 >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line + 2 - m.viewport.Height)
	}
}

// resize fits the viewport below the title and filter
func (m *appModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-chrome, 1)
	m.refresh()
}

func (m *appModel) refresh() {
	m.viewport.SetContent(m.renderMatches())
}

// Selected returns the match under the cursor
func (m appModel) Selected() (model.Match, bool) {
	if len(m.filtered) == 0 {
		return model.Match{}, false
	}
	return m.filtered[m.cursor], true
}

// Filter keeps matches whose platform or username contains query,
// ignoring case
func Filter(matches []model.Match, query string) []model.Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return matches
	}
	var out []model.Match
	for _, m := range matches {
		if strings.Contains(strings.ToLower(m.Platform), query) ||
			strings.Contains(strings.ToLower(m.Username), query) {
			out = append(out, m)
		}
	}
	return out
}

func (m appModel) renderMatches() string {
	if len(m.filtered) == 0 {
		return helpStyle.Render("No matches")
	}

	var sb strings.Builder
	for i, r := range m.filtered {
		score := lipgloss.NewStyle().Foreground(display.ScoreColor(r.Score)).Render(fmt.Sprintf("%3d%%", r.Score))
		user := ""
		if r.Username != "" {
			user = " @" + r.Username
		}
		line := fmt.Sprintf("%2d. %-12s %s%s", i+1, r.Platform, score, user)
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render("> " + line))
		} else {
			sb.WriteString(rowStyle.Render("  " + line))
		}
		sb.WriteString("\n")
		sb.WriteString(urlStyle.Render("      " + r.URL))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m appModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("FaceTrace Results (%d/%d)", len(m.filtered), len(m.matches))))
	sb.WriteString("\n\n")

	sb.WriteString(inputStyle.Render(m.input.View()))
	sb.WriteString("\n\n")

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.status != "":
		sb.WriteString(helpStyle.Render(m.status))
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("/: filter • ↑/↓: move • Enter: open • Esc: clear • q: quit"))

	return sb.String()
}

// Run shows matches until the user quits. width and height size the first
// frame; later resizes come from the terminal.
func Run(matches []model.Match, open OpenFunc, width, height int) error {
	m := initialModel(matches, open)
	m.resize(width, height)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
