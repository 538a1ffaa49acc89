package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	treedto "hostnav/internal/modules/tree/dto"
	"hostnav/internal/ui/components"
	"hostnav/internal/ui/theme"
)

const (
	ModeAsset = "asset"
	ModeSFTP  = "sftp"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the slice of the tree use-case this view drives. Rows, Toggle and
// AttachChildren run on the Update loop; FetchChildren runs in a tea.Cmd.
type Port interface {
	Rows(kind string) []treedto.RowOutput
	Toggle(kind string, row int) (*treedto.ExpandRequest, error)
	FetchChildren(ctx context.Context, req treedto.ExpandRequest) (treedto.ChildrenResult, error)
	AttachChildren(result treedto.ChildrenResult) error
}

// ─── messages ────────────────────────────────────────────────────────────────

// ConnectMsg asks the app to open a session on a leaf node.
type ConnectMsg struct {
	Node treedto.NodeOutput
	Mode string
}

// RefreshMsg asks the app to drop and refetch this view's tree.
type RefreshMsg struct{ Kind string }

// StatusMsg carries a line for the app status bar.
type StatusMsg struct{ Text string }

type ChildrenLoadedMsg struct {
	Kind   string
	Result treedto.ChildrenResult
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	kind     string
	title    string
	rows     []treedto.RowOutput
	cursor   int
	offset   int
	menu     components.Menu
	detail   viewport.Model
	renderer *glamour.TermRenderer
	spinner  spinner.Model
	loading  bool
	shownID  string
	width    int
	height   int
}

func New(port Port, kind, title string) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		port:     port,
		kind:     kind,
		title:    title,
		menu:     components.NewMenu(),
		detail:   vp,
		renderer: r,
		spinner:  sp,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Kind() string { return m.kind }

// SetLoading toggles the spinner; the returned command keeps it ticking.
func (m *Model) SetLoading(loading bool) tea.Cmd {
	m.loading = loading
	if loading {
		return m.spinner.Tick
	}
	return nil
}

// MenuOpen reports whether the context menu currently captures keys.
func (m Model) MenuOpen() bool { return m.menu.Visible() }

// Selected returns the node under the cursor.
func (m Model) Selected() (treedto.NodeOutput, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return treedto.NodeOutput{}, false
	}
	return m.rows[m.cursor].Node, true
}

// Reload re-reads the rows after the tree changed, keeping the cursor on the
// same node when it is still visible.
func (m *Model) Reload() {
	if m.port == nil {
		return
	}
	selectedID := ""
	if node, ok := m.Selected(); ok {
		selectedID = node.ID
	}
	m.rows = m.port.Rows(m.kind)
	if selectedID != "" {
		for i, r := range m.rows {
			if r.Node.ID == selectedID {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
	m.refreshDetail()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ChildrenLoadedMsg:
		if msg.Kind != m.kind {
			return m, nil
		}
		if msg.Err != nil {
			return m, status("load children: " + msg.Err.Error())
		}
		if err := m.port.AttachChildren(msg.Result); err != nil {
			return m, status(err.Error())
		}
		m.Reload()
		return m, nil

	case components.MenuSelectMsg:
		node, ok := m.Selected()
		if !ok {
			return m, nil
		}
		mode := msg.Item.Value
		return m, func() tea.Msg { return ConnectMsg{Node: node, Mode: mode} }

	case components.MenuCancelMsg:
		return m, nil

	case tea.KeyMsg:
		if m.menu.Visible() {
			var cmd tea.Cmd
			m.menu, cmd = m.menu.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-m.listHeight())
	case "pgdown":
		m.move(m.listHeight())
	case "home", "g":
		m.move(-len(m.rows))
	case "end", "G":
		m.move(len(m.rows))
	case "enter":
		node, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if node.IsParent {
			return m.toggle()
		}
		return m, func() tea.Msg { return ConnectMsg{Node: node, Mode: ModeAsset} }
	case "right", "l":
		if node, ok := m.Selected(); ok && node.IsParent && !node.Open {
			return m.toggle()
		}
	case "left", "h":
		node, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if node.IsParent && node.Open {
			return m.toggle()
		}
		m.jumpToParent(node)
	case "m":
		return m.openMenu()
	case "r":
		kind := m.kind
		return m, func() tea.Msg { return RefreshMsg{Kind: kind} }
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading "+strings.ToLower(m.title)+"…")
	}
	listW := m.listWidth()
	detailW := m.width - listW

	header := theme.Title.Render(m.title) + theme.Muted.Render(fmt.Sprintf("  %d rows", len(m.rows)))
	lines := m.renderRows(listW)
	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(header + "\n" + strings.Join(lines, "\n"))

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(max(detailW-2, 1)).
		Height(max(m.height-2, 1)).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Prefix returns the branch glyphs drawn before a row's label.
func Prefix(row treedto.RowOutput) string {
	if row.Depth == 0 {
		return ""
	}
	var sb strings.Builder
	for i := 1; i < row.Depth && i < len(row.Rails); i++ {
		if row.Rails[i] {
			sb.WriteString("│   ")
		} else {
			sb.WriteString("    ")
		}
	}
	if row.Last {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}

func indicator(node treedto.NodeOutput) string {
	switch {
	case !node.IsParent:
		return "•"
	case node.Open:
		return "▾"
	default:
		return "▸"
	}
}

func (m Model) renderRows(width int) []string {
	height := m.listHeight()
	lines := make([]string, 0, height)
	if len(m.rows) == 0 {
		lines = append(lines, theme.Muted.Render("  nothing to show"))
	}
	end := min(m.offset+height, len(m.rows))
	for i := m.offset; i < end; i++ {
		row := m.rows[i]
		label := indicator(row.Node) + " " + row.Node.Title
		if row.Node.MetaType == "asset" && row.Node.IP != "" {
			label += theme.Muted.Render("  " + row.Node.IP)
		}
		line := theme.Branch.Render(Prefix(row)) + label
		if i == m.cursor {
			line = theme.Selected.Render(Prefix(row) + indicator(row.Node) + " " + row.Node.Title)
		}
		lines = append(lines, truncate(line, width))
	}
	if m.menu.Visible() {
		left, top := m.menu.Position()
		for j, menuLine := range m.menu.Lines() {
			at := top + j
			for at >= len(lines) {
				lines = append(lines, "")
			}
			lines[at] = strings.Repeat(" ", left) + menuLine
		}
	}
	return lines
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) toggle() (Model, tea.Cmd) {
	req, err := m.port.Toggle(m.kind, m.cursor)
	if err != nil {
		return m, status(err.Error())
	}
	if req == nil {
		m.Reload()
		return m, nil
	}
	return m, tea.Batch(status("loading children…"), m.fetchChildrenCmd(*req))
}

func (m Model) openMenu() (Model, tea.Cmd) {
	node, ok := m.Selected()
	if !ok {
		return m, nil
	}
	if node.IsParent || node.MetaType != "asset" {
		return m, status("no actions for " + node.Title)
	}
	items := []components.MenuItem{
		{Label: "Connect terminal", Value: ModeAsset},
		{Label: "File manager", Value: ModeSFTP},
	}
	left := lipgloss.Width(Prefix(m.rows[m.cursor])) + 2
	top := m.cursor - m.offset + 1
	m.menu.Open(items, left, top, m.listHeight()+1)
	if !hasSSH(node.Protocols) {
		return m, status(theme.Warn.Render("sftp unavailable for " + node.Title + ": no ssh protocol"))
	}
	return m, nil
}

func (m *Model) move(delta int) {
	m.cursor += delta
	m.clampCursor()
	m.refreshDetail()
}

func (m *Model) jumpToParent(node treedto.NodeOutput) {
	if node.ParentID == "" {
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].Node.ID == node.ParentID {
			m.cursor = i
			m.clampCursor()
			m.refreshDetail()
			return
		}
	}
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	height := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) listWidth() int {
	return m.width * 55 / 100
}

func (m Model) listHeight() int {
	return max(m.height-1, 1)
}

func (m *Model) resize() {
	detailW := m.width - m.listWidth()
	m.detail.Width = max(detailW-4, 1)
	m.detail.Height = max(m.height-4, 1)
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(m.detail.Width),
	); err == nil {
		m.renderer = r
	}
	m.clampCursor()
	m.shownID = ""
	m.refreshDetail()
}

func (m *Model) refreshDetail() {
	node, ok := m.Selected()
	if !ok {
		m.shownID = ""
		m.detail.SetContent(theme.Muted.Render("Select a node to see details"))
		return
	}
	key := node.ID + fmt.Sprint(node.Open)
	if key == m.shownID {
		return
	}
	m.shownID = key
	doc := DetailMarkdown(node)
	if m.renderer != nil {
		if out, err := m.renderer.Render(doc); err == nil {
			m.detail.SetContent(out)
			m.detail.GotoTop()
			return
		}
	}
	m.detail.SetContent(doc)
	m.detail.GotoTop()
}

// DetailMarkdown describes a node for the detail pane.
func DetailMarkdown(node treedto.NodeOutput) string {
	var sb strings.Builder
	sb.WriteString("# " + node.Title + "\n\n")
	sb.WriteString("| field | value |\n|---|---|\n")
	field := func(name, value string) {
		if strings.TrimSpace(value) != "" {
			sb.WriteString("| " + name + " | " + strings.ReplaceAll(value, "|", "\\|") + " |\n")
		}
	}
	field("id", "`"+node.ID+"`")
	switch {
	case node.IsParent:
		field("kind", "group")
	case node.MetaType == "asset":
		field("kind", "host")
		field("hostname", node.Hostname)
		field("ip", node.IP)
		field("platform", node.Platform)
		field("protocols", strings.Join(node.Protocols, ", "))
	case node.MetaType == "remote_app":
		field("kind", "remote app")
		field("type", node.AppType)
		field("asset ip", node.AssetIP)
	}
	sb.WriteString("\n")
	if node.IsParent {
		sb.WriteString("_enter_ expands or collapses this group.\n")
	} else {
		sb.WriteString("_enter_ connects, _m_ opens the action menu.\n")
	}
	return sb.String()
}

func hasSSH(protocols []string) bool {
	for _, p := range protocols {
		if strings.HasPrefix(strings.ToLower(p), "ssh") {
			return true
		}
	}
	return false
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

func (m Model) fetchChildrenCmd(req treedto.ExpandRequest) tea.Cmd {
	kind := m.kind
	return func() tea.Msg {
		result, err := m.port.FetchChildren(context.Background(), req)
		return ChildrenLoadedMsg{Kind: kind, Result: result, Err: err}
	}
}
