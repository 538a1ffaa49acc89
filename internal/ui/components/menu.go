package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hostnav/internal/ui/theme"
)

// DefaultMenuHeight is the menu height for pixel-based hosts. Terminal
// callers pass their own height in rows.
const DefaultMenuHeight = 60

// PlaceMenu returns where a menu opened at (left, top) is drawn. A menu that
// would run past the bottom of the viewport opens upwards instead.
func PlaceMenu(left, top, viewportHeight, menuHeight int) (int, int) {
	if top+menuHeight > viewportHeight {
		return left, top - menuHeight
	}
	return left, top
}

// MenuItem is one entry of a context menu; Value is echoed back on select.
type MenuItem struct {
	Label string
	Value string
}

// MenuSelectMsg is emitted when an entry is chosen.
type MenuSelectMsg struct{ Item MenuItem }

// MenuCancelMsg is emitted when the menu is dismissed.
type MenuCancelMsg struct{}

var (
	menuStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Lavender).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	menuCursorStyle = lipgloss.NewStyle().Foreground(theme.Peach).Bold(true)
)

// Menu is a small vertical context menu.
type Menu struct {
	items   []MenuItem
	index   int
	visible bool
	left    int
	top     int
}

func NewMenu() Menu { return Menu{} }

func (m Menu) Visible() bool { return m.visible }

// Position is the top-left corner the menu is drawn at.
func (m Menu) Position() (int, int) { return m.left, m.top }

// Height is the rendered height in rows, border included.
func (m Menu) Height() int { return len(m.items) + 2 }

// Open shows items anchored at the given row, flipped upwards when they would
// not fit above viewportHeight.
func (m *Menu) Open(items []MenuItem, left, top, viewportHeight int) {
	m.items = items
	m.index = 0
	m.visible = len(items) > 0
	m.left, m.top = PlaceMenu(left, top, viewportHeight, m.Height())
	if m.top < 0 {
		m.top = 0
	}
}

func (m *Menu) Close() { m.visible = false }

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.index > 0 {
			m.index--
		}
	case "down", "j":
		if m.index < len(m.items)-1 {
			m.index++
		}
	case "enter":
		item := m.items[m.index]
		m.visible = false
		return m, func() tea.Msg { return MenuSelectMsg{Item: item} }
	case "esc", "m", "q":
		m.visible = false
		return m, func() tea.Msg { return MenuCancelMsg{} }
	}
	return m, nil
}

// Lines renders the menu one row per element so callers can splice it over
// their own content.
func (m Menu) Lines() []string {
	if !m.visible {
		return nil
	}
	var sb strings.Builder
	for i, item := range m.items {
		if i == m.index {
			sb.WriteString(menuCursorStyle.Render("› " + item.Label))
		} else {
			sb.WriteString("  " + item.Label)
		}
		if i < len(m.items)-1 {
			sb.WriteString("\n")
		}
	}
	return strings.Split(menuStyle.Render(sb.String()), "\n")
}
