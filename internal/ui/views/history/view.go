package history

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	historydto "hostnav/internal/modules/history/dto"
	"hostnav/internal/ui/theme"
)

const recentLimit = 50

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Recent(ctx context.Context, limit int) ([]historydto.ConnectionOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Items []historydto.ConnectionOutput
	Err   error
}

// ─── list item ───────────────────────────────────────────────────────────────

type connectionItem struct{ c historydto.ConnectionOutput }

func (i connectionItem) Title() string {
	if i.c.Title != "" {
		return i.c.Title
	}
	return i.c.NodeID
}

func (i connectionItem) Description() string {
	return fmt.Sprintf("%s  %s via %s", i.c.StartedAt.Local().Format("2006-01-02 15:04"), i.c.Mode, i.c.Connector)
}

func (i connectionItem) FilterValue() string { return i.c.Title + " " + i.c.NodeID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   Port
	list   list.Model
	err    error
	width  int
	height int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Recent connections"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	return Model{port: port, list: l}
}

func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load refetches the recent connections.
func (m Model) Load() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return func() tea.Msg {
		items, err := m.port.Recent(context.Background(), recentLimit)
		return LoadedMsg{Items: items, Err: err}
	}
}

// Filtering reports whether the list's own filter is capturing keys.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Len() int { return len(m.list.Items()) }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case LoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		items := make([]list.Item, len(msg.Items))
		for i, c := range msg.Items {
			items[i] = connectionItem{c: c}
		}
		cmd := m.list.SetItems(items)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.err != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Error.Render("history: "+m.err.Error()))
	}
	return m.list.View()
}
