package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/fixedkit"
	"github.com/wippyai/fixedkit/errors"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	liveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	freeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

type keyMap struct {
	Up, Down, Get, Put, Ref, Unref, Command, Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Get, k.Put, k.Ref, k.Unref, k.Command, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k", "left"), key.WithHelp("↑", "prev")),
	Down:    key.NewBinding(key.WithKeys("down", "j", "right"), key.WithHelp("↓", "next")),
	Get:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "get")),
	Put:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "put")),
	Ref:     key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "ref")),
	Unref:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "unref")),
	Command: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type interactiveModel struct {
	s        *session
	input    textinput.Model
	help     help.Model
	result   string
	err      error
	selected int
	typing   bool
}

func newInteractiveModel(s *session) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "g, p0, r0, u0, w0:text, s"
	ti.Width = 40
	return &interactiveModel{s: s, input: ti, help: help.New()}
}

func (m *interactiveModel) Init() tea.Cmd { return nil }

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.typing {
		switch km.String() {
		case "enter":
			m.apply(m.input.Value())
			m.input.Reset()
			m.input.Blur()
			m.typing = false
			return m, nil
		case "esc":
			m.input.Reset()
			m.input.Blur()
			m.typing = false
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(km, keys.Quit):
		return m, tea.Quit
	case key.Matches(km, keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(km, keys.Down):
		if m.selected < m.s.pool.Cap()-1 {
			m.selected++
		}
	case key.Matches(km, keys.Get):
		m.apply("g")
	case key.Matches(km, keys.Put):
		m.apply(fmt.Sprintf("p%d", m.selected))
	case key.Matches(km, keys.Ref):
		m.apply(fmt.Sprintf("r%d", m.selected))
	case key.Matches(km, keys.Unref):
		m.apply(fmt.Sprintf("u%d", m.selected))
	case key.Matches(km, keys.Command):
		m.typing = true
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *interactiveModel) apply(cmd string) {
	m.result, m.err = m.s.exec(cmd)
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	st := m.s.pool.Stats()
	b.WriteString(titleStyle.Render("Pool Viewer"))
	b.WriteString(fmt.Sprintf(" %s  %d/%d live  %d available  slot %dB\n\n",
		m.s.pool.Name(), st.Live, st.Capacity, fixedkit.Available(m.s.pool), st.SlotSize))

	for i, line := range m.s.slots() {
		live, _ := m.s.pool.SlotState(i)
		switch {
		case i == m.selected:
			b.WriteString(selectedStyle.Render("> " + line))
		case live:
			b.WriteString(liveStyle.Render("  " + line))
		default:
			b.WriteString(freeStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s: %v", errors.StatusOf(m.err), m.err)))
	case m.result != "":
		b.WriteString(resultStyle.Render(m.result))
	}
	b.WriteString("\n\n")

	if m.typing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}

func runInteractive(cfg sessionConfig, script string) error {
	ctx := context.Background()
	s, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	m := newInteractiveModel(s)
	if script != "" {
		_ = s.run(script, func(line string) { m.result = line })
	}
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}
