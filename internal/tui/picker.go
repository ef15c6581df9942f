// Package tui renders the field picker in the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"orderexport/internal/catalogue"
	"orderexport/internal/columns"
	"orderexport/internal/picker"
)

const defaultListHeight = 15

type keyMap struct {
	up, down, toggle, confirm, cancel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model is the Bubble Tea model of the picker. All selection logic is
// delegated to picker.State.
type Model struct {
	cat   *catalogue.Catalogue
	live  *columns.Set
	state picker.State

	input     textinput.Model
	cursor    int
	offset    int
	height    int
	keys      keyMap
	styles    styles
	confirmed bool
}

// New opens the picker over live, seeding the draft from its columns.
func New(cat *catalogue.Catalogue, live *columns.Set) Model {
	in := textinput.New()
	in.Prompt = "search> "
	in.Placeholder = "filter by label"
	in.CharLimit = 128
	in.Focus()

	return Model{
		cat:    cat,
		live:   live,
		state:  picker.Open(live),
		input:  in,
		height: defaultListHeight,
		keys:   newKeyMap(),
		styles: newStyles(),
	}
}

// Confirmed reports whether the draft was committed into the live set.
func (m Model) Confirmed() bool { return m.confirmed }

// State exposes the underlying picker state.
func (m Model) State() picker.State { return m.state }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if h := msg.Height - 8; h > 3 {
			m.height = h
		}
		return m, nil

	case tea.KeyMsg:
		visible := m.state.Visible(m.cat)
		switch {
		case key.Matches(msg, m.keys.cancel):
			m.state = m.state.Cancel(m.live)
			return m, tea.Quit
		case key.Matches(msg, m.keys.confirm):
			m.state = m.state.Confirm(m.live)
			m.confirmed = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.up):
			m.moveCursor(-1, len(visible))
			return m, nil
		case key.Matches(msg, m.keys.down):
			m.moveCursor(1, len(visible))
			return m, nil
		case msg.Type == tea.KeySpace || key.Matches(msg, m.keys.toggle):
			if m.cursor < len(visible) {
				m.state = m.state.Toggle(visible[m.cursor].Path)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != m.state.Query {
		m.state = m.state.WithQuery(q)
		m.cursor, m.offset = 0, 0
	}
	return m, cmd
}

func (m *Model) moveCursor(delta, n int) {
	if n == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Select export fields"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	visible := m.state.Visible(m.cat)
	if len(visible) == 0 {
		b.WriteString(m.styles.empty.Render("no fields match"))
		b.WriteString("\n")
	}
	end := m.offset + m.height
	if end > len(visible) {
		end = len(visible)
	}
	for i := m.offset; i < end; i++ {
		f := visible[i]
		mark, style := "[ ]", m.styles.item
		if m.state.Selected(f.Path) {
			mark, style = "[x]", m.styles.itemSel
		}
		line := style.Render(fmt.Sprintf("%s %s", mark, f.Label)) + " " + m.styles.path.Render(f.Path)
		if i == m.cursor {
			line = m.styles.cursorRow.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.hint.Render(fmt.Sprintf(
		"%d selected · %d/%d shown · space toggle · enter confirm · esc cancel",
		len(m.state.Draft), len(visible), m.cat.Len(),
	)))
	return m.styles.frame.Render(b.String())
}

// Run shows the picker until the user confirms or cancels. On confirm the
// draft has already been applied to live.
func Run(cat *catalogue.Catalogue, live *columns.Set, opts ...tea.ProgramOption) (bool, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(New(cat, live), opts...).Run()
	if err != nil {
		return false, fmt.Errorf("run picker: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return false, nil
	}
	return m.Confirmed(), nil
}
