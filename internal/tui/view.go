package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skeld-sh/skeld/internal/config"
)

// screenStyles are the lipgloss styles derived from the configured
// colorscheme. An unset color keeps the terminal default.
type screenStyles struct {
	normal          lipgloss.Style
	banner          lipgloss.Style
	heading         lipgloss.Style
	keybind         lipgloss.Style
	selectedKeybind lipgloss.Style
	label           lipgloss.Style
	help            lipgloss.Style
	background      lipgloss.Style
	hasBackground   bool
}

func newScreenStyles(colors config.Colorscheme) screenStyles {
	base := lipgloss.NewStyle()
	if colors.Background != "" {
		base = base.Background(lipgloss.Color(string(colors.Background)))
	}
	foreground := func(c config.Color) lipgloss.Style {
		if c == "" {
			return base
		}
		return base.Foreground(lipgloss.Color(string(c)))
	}

	styles := screenStyles{
		normal:        foreground(colors.Normal),
		banner:        foreground(colors.Banner),
		heading:       foreground(colors.Heading),
		keybind:       foreground(colors.Keybind),
		label:         foreground(colors.Label),
		help:          base,
		background:    base,
		hasBackground: colors.Background != "",
	}
	// the selection marker, in place of a terminal cursor
	styles.selectedKeybind = styles.keybind.Reverse(true)
	return styles
}

// buttonArea is the clickable keybind cell of one button, in screen
// coordinates. Columns are inclusive on both ends.
type buttonArea struct {
	line     int
	colStart int
	colEnd   int
}

type styledLine struct {
	text  string
	width int
}

// layout is the start screen content positioned for one terminal width.
type layout struct {
	lines    []styledLine
	maxWidth int
	leftPad  int
	areas    []buttonArea
}

// buildLayout renders the screen content into lines and records the
// clickable button cells. The whole block is centered as one unit, every
// line starts at the same column.
func (m Model) buildLayout(selected int) layout {
	var b layoutBuilder
	b.text(m.data.Banner, m.styles.banner)
	b.blank(2)

	buttonIndex := 0
	for i, section := range m.data.Sections {
		b.text(section.Heading, m.styles.heading)
		b.blank(1)
		for _, button := range section.Buttons {
			b.button(button, buttonIndex == selected, m.styles)
			buttonIndex++
		}
		// No trailing blanks after the last section, they would upset
		// the help text overlap check.
		if i != len(m.data.Sections)-1 {
			b.blank(2)
		}
	}

	leftPad := 0
	if m.width > b.maxWidth {
		leftPad = (m.width - b.maxWidth) / 2
	}
	for i := range b.areas {
		b.areas[i].colStart += leftPad
		b.areas[i].colEnd += leftPad
	}

	return layout{lines: b.lines, maxWidth: b.maxWidth, leftPad: leftPad, areas: b.areas}
}

type layoutBuilder struct {
	lines    []styledLine
	maxWidth int
	areas    []buttonArea
}

func (b *layoutBuilder) addStyled(line styledLine) {
	b.lines = append(b.lines, line)
	if line.width > b.maxWidth {
		b.maxWidth = line.width
	}
}

// text adds a chunk in one style, line by line.
func (b *layoutBuilder) text(text string, style lipgloss.Style) {
	for _, line := range strings.Split(text, "\n") {
		b.addStyled(styledLine{text: style.Render(line), width: lipgloss.Width(line)})
	}
}

func (b *layoutBuilder) blank(n int) {
	for i := 0; i < n; i++ {
		b.lines = append(b.lines, styledLine{})
	}
}

// button renders "[keybind] label" and records the keybind cell as
// clickable.
func (b *layoutBuilder) button(button Button, selected bool, styles screenStyles) {
	keybindStyle := styles.keybind
	if selected {
		keybindStyle = styles.selectedKeybind
	}

	b.areas = append(b.areas, buttonArea{
		line:     len(b.lines),
		colStart: 0,
		colEnd:   len(button.Keybind) + 1,
	})

	text := styles.normal.Render("[") +
		keybindStyle.Render(button.Keybind) +
		styles.normal.Render("] ") +
		styles.label.Render(button.Label)
	width := lipgloss.Width("[" + button.Keybind + "] " + button.Label)
	b.addStyled(styledLine{text: text, width: width})
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	lay := m.buildLayout(m.selected)

	limit := len(lay.lines)
	if m.height > 0 && limit > m.height {
		limit = m.height
	}

	rows := make([]string, 0, limit)
	for _, line := range lay.lines[:limit] {
		rows = append(rows, m.fill(lay.leftPad)+line.text)
	}

	if help, col, ok := m.helpPlacement(lay); ok {
		for len(rows) < m.height {
			rows = append(rows, "")
		}
		last := rows[m.height-1]
		rows[m.height-1] = last + m.fill(col-lipgloss.Width(last)) + m.styles.help.Render(help)
	}

	if m.styles.hasBackground && m.width > 0 {
		for i, row := range rows {
			if w := lipgloss.Width(row); w < m.width {
				rows[i] = row + m.fill(m.width-w)
			}
		}
		for m.height > 0 && len(rows) < m.height {
			rows = append(rows, m.fill(m.width))
		}
	}

	return strings.Join(rows, "\n")
}

// helpPlacement decides whether the help text fits into the bottom
// right corner and returns its column.
func (m Model) helpPlacement(lay layout) (string, int, bool) {
	help := m.data.HelpText
	if help == "" || m.width <= 0 || m.height <= 0 {
		return "", 0, false
	}

	col := m.width - lipgloss.Width(help)
	if col < 0 {
		return "", 0, false
	}
	// Hidden when the content reaches the bottom row and extends into
	// the help text's columns.
	if len(lay.lines) >= m.height && col <= lay.leftPad+lay.maxWidth {
		return "", 0, false
	}

	return help, col, true
}

// fill returns n spaces, carrying the configured background color.
func (m Model) fill(n int) string {
	if n <= 0 {
		return ""
	}
	spaces := strings.Repeat(" ", n)
	if !m.styles.hasBackground {
		return spaces
	}
	return m.styles.background.Render(spaces)
}
