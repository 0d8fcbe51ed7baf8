package tui

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skeld-sh/skeld/internal/config"
	"github.com/skeld-sh/skeld/internal/errors"
	"github.com/skeld-sh/skeld/internal/project"
)

// Button is one selectable entry on the start screen.
type Button struct {
	Keybind string
	Label   string
	Action  project.Action
}

// Section groups buttons under a heading.
type Section struct {
	Heading string
	Buttons []Button
}

// Data is everything the start screen displays.
type Data struct {
	Banner   string
	Sections []Section
	Colors   config.Colorscheme
	HelpText string
}

// doubleClickWindow is how close two clicks on the same button must be
// to count as a double click.
const doubleClickWindow = 500 * time.Millisecond

// keyMap holds the controls that work independently of the configured
// button keybinds.
type keyMap struct {
	Down   key.Binding
	Up     key.Binding
	Select key.Binding
	Quit   key.Binding
}

var defaultKeyMap = keyMap{
	Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "move")),
	Up:     key.NewBinding(key.WithKeys("k", "up")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl-c", "quit")),
}

// Model is the bubbletea model for the start screen.
type Model struct {
	data    Data
	buttons []Button
	styles  screenStyles
	keys    keyMap

	width  int
	height int

	selected int
	// accumulated typed characters, never cleared. Only the end is
	// checked for a keybind match.
	accKeys string

	lastClick     int
	lastClickTime time.Time

	action   project.Action
	quitting bool
}

// NewModel creates the start screen model for the given content.
func NewModel(data Data) Model {
	var buttons []Button
	for _, section := range data.Sections {
		buttons = append(buttons, section.Buttons...)
	}

	return Model{
		data:      data,
		buttons:   buttons,
		styles:    newScreenStyles(data.Colors),
		keys:      defaultKeyMap,
		lastClick: -1,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Every typed character feeds the keybind accumulator, including j
	// and k. A suffix match beats plain movement.
	switch msg.Type {
	case tea.KeyRunes:
		m.accKeys += string(msg.Runes)
	case tea.KeySpace:
		m.accKeys += " "
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Select):
		if m.selected < len(m.buttons) {
			return m.choose(m.buttons[m.selected])
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.buttons)-1 {
			m.selected++
		}

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	}

	if button := m.matchKeybind(); button != nil {
		return m.choose(*button)
	}
	return m, nil
}

// matchKeybind returns the button whose keybind ends the accumulated
// input, preferring longer keybinds. Later buttons win length ties.
func (m *Model) matchKeybind() *Button {
	var match *Button
	for i := range m.buttons {
		button := &m.buttons[i]
		if button.Keybind == "" || !strings.HasSuffix(m.accKeys, button.Keybind) {
			continue
		}
		if match == nil || len(button.Keybind) >= len(match.Keybind) {
			match = button
		}
	}
	return match
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	pressed := m.buttonIndexAt(msg.X, msg.Y)
	if pressed < 0 {
		m.lastClick = -1
		return m, nil
	}

	now := time.Now()
	if pressed == m.lastClick && now.Sub(m.lastClickTime) < doubleClickWindow {
		m.lastClick = -1
		return m.choose(m.buttons[pressed])
	}

	m.selected = pressed
	m.lastClick = pressed
	m.lastClickTime = now
	return m, nil
}

// buttonIndexAt maps a terminal position to the button whose keybind
// cell covers it, or -1.
func (m Model) buttonIndexAt(x, y int) int {
	for i, area := range m.buildLayout(m.selected).areas {
		if y == area.line && x >= area.colStart && x <= area.colEnd {
			return i
		}
	}
	return -1
}

func (m Model) choose(button Button) (tea.Model, tea.Cmd) {
	m.action = button.Action
	m.quitting = true
	return m, tea.Quit
}

// Result returns the chosen action, nil when the user left with ctrl-c.
func (m Model) Result() project.Action {
	return m.action
}

// Run shows the start screen and returns the chosen action. A nil
// action with a nil error means the user quit with ctrl-c.
func Run(data Data) (project.Action, error) {
	if !isTTY(os.Stdout) {
		return nil, errors.New(errors.ExitGeneralError, "the skeld ui can only be used in a tty")
	}

	p := tea.NewProgram(NewModel(data), tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return nil, errors.Wrap(errors.ExitGeneralError, "failed to display the skeld ui", err)
	}
	return finalModel.(Model).Result(), nil
}
