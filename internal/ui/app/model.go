package app

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	connectdto "hostnav/internal/modules/connect/dto"
	historydto "hostnav/internal/modules/history/dto"
	treedto "hostnav/internal/modules/tree/dto"
	"hostnav/internal/ui/components"
	"hostnav/internal/ui/theme"
	historyview "hostnav/internal/ui/views/history"
	treeview "hostnav/internal/ui/views/tree"
)

const (
	kindHosts = "hosts"
	kindApps  = "apps"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

// treePort mixes event-loop methods (Install, Filter, Graft, Toggle,
// AttachChildren, Rows) with I/O methods that only run inside commands.
type treePort interface {
	FetchAll(ctx context.Context, refresh bool) ([]treedto.Batch, error)
	Fetch(ctx context.Context, kind string, refresh bool) (treedto.Batch, error)
	RunSearch(ctx context.Context, req treedto.SearchRequest) (treedto.SearchResult, error)
	FetchChildren(ctx context.Context, req treedto.ExpandRequest) (treedto.ChildrenResult, error)

	Install(batch treedto.Batch) ([]treedto.SearchRequest, error)
	Filter(keyword string) ([]treedto.SearchRequest, error)
	Graft(result treedto.SearchResult) (treedto.GraftOutput, error)
	Toggle(kind string, row int) (*treedto.ExpandRequest, error)
	AttachChildren(result treedto.ChildrenResult) error
	Rows(kind string) []treedto.RowOutput
}

type connectPort interface {
	Connect(ctx context.Context, input connectdto.ConnectInput) (connectdto.SessionPlanOutput, error)
}

type historyPort interface {
	Recent(ctx context.Context, limit int) ([]historydto.ConnectionOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabHosts tabID = iota
	tabApps
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{
	"Hosts", "Apps", "History",
}

var tabNames = map[string]tabID{
	"hosts":   tabHosts,
	"apps":    tabApps,
	"history": tabHistory,
}

// ─── async messages ───────────────────────────────────────────────────────────

type treesLoadedMsg struct {
	batches []treedto.Batch
	err     error
}

type treeLoadedMsg struct {
	kind  string
	batch treedto.Batch
	err   error
}

type searchDoneMsg struct {
	result treedto.SearchResult
	err    error
}

type sessionReadyMsg struct {
	plan connectdto.SessionPlanOutput
	err  error
}

type sessionDoneMsg struct {
	plan connectdto.SessionPlanOutput
	err  error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Search  key.Binding
	Clear   key.Binding
	Enter   key.Binding
	Menu    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand/connect")),
		Menu:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "connect menu")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh tree")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Search, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Enter, k.Menu, k.Refresh},
		{k.Search, k.Clear},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the shared filter
// input, session launching and the command palette. Tree state lives behind
// treePort and is only touched from Update.
type Model struct {
	tree    treePort
	connect connectPort

	hostsView   treeview.Model
	appsView    treeview.Model
	historyView historyview.Model

	search    textinput.Model
	keyword   string
	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(tree treePort, connect connectPort, history historyPort) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter hosts and apps"
	ti.CharLimit = 128

	bridge := treePortBridge{p: tree}
	var historyV historyview.Model
	if history != nil {
		historyV = historyview.New(historyPortBridge{p: history})
	} else {
		historyV = historyview.New(nil)
	}

	hosts := treeview.New(bridge, kindHosts, "Hosts")
	apps := treeview.New(bridge, kindApps, "Remote apps")
	hosts.SetLoading(true)
	apps.SetLoading(true)

	return Model{
		tree:        tree,
		connect:     connect,
		hostsView:   hosts,
		appsView:    apps,
		historyView: historyV,
		search:      ti,
		activeTab:   tabHosts,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "loading trees…",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.hostsView.Init(),
		m.appsView.Init(),
		m.historyView.Init(),
		m.loadTreesCmd(false),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.search.Width = max(m.width-4, 10)
		m.propagateSize()
		return m, nil

	case treesLoadedMsg:
		if msg.err != nil {
			m.status = "load trees: " + msg.err.Error()
			m.stopLoading(kindHosts, kindApps)
			return m, nil
		}
		for _, batch := range msg.batches {
			cmds = append(cmds, m.install(batch)...)
		}
		m.status = "ready"
		return m, tea.Batch(cmds...)

	case treeLoadedMsg:
		if msg.err != nil {
			m.status = "refresh " + msg.kind + ": " + msg.err.Error()
			m.stopLoading(msg.kind)
			return m, nil
		}
		cmds = append(cmds, m.install(msg.batch)...)
		m.status = msg.kind + " refreshed"
		return m, tea.Batch(cmds...)

	case searchDoneMsg:
		if msg.err != nil {
			m.status = "search: " + msg.err.Error()
			return m, nil
		}
		out, err := m.tree.Graft(msg.result)
		if err != nil {
			m.status = "search: " + err.Error()
			return m, nil
		}
		if out.Applied {
			m.reloadTree(msg.result.Request.Kind)
			m.status = fmt.Sprintf("%d matches for %q", out.Matches, msg.result.Request.Keyword)
		}
		return m, nil

	case sessionReadyMsg:
		if msg.err != nil {
			m.status = "connect: " + msg.err.Error()
			return m, nil
		}
		if len(msg.plan.Argv) == 0 {
			m.status = "connect: empty argv"
			return m, nil
		}
		m.status = fmt.Sprintf("%s via %s", msg.plan.Title, msg.plan.Connector)
		return m, execSession(msg.plan)

	case sessionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s: %s", msg.plan.Title, msg.err.Error())
		} else {
			m.status = fmt.Sprintf("session to %s closed", msg.plan.Title)
		}
		return m, m.historyView.Load()

	case treeview.ConnectMsg:
		m.status = fmt.Sprintf("connecting to %s (%s)…", label(msg.Node), msg.Mode)
		return m, m.connectCmd(msg.Node, msg.Mode)

	case treeview.RefreshMsg:
		cmd := m.refreshCmd(msg.Kind)
		return m, cmd

	case treeview.StatusMsg:
		m.status = msg.Text
		return m, nil

	case treeview.ChildrenLoadedMsg:
		// Routed by kind so a lazy load finishing on a hidden tab still lands.
		var cmd tea.Cmd
		if msg.Kind == kindApps {
			m.appsView, cmd = m.appsView.Update(msg)
		} else {
			m.hostsView, cmd = m.hostsView.Update(msg)
		}
		return m, cmd

	case spinner.TickMsg:
		var hostsCmd, appsCmd tea.Cmd
		m.hostsView, hostsCmd = m.hostsView.Update(msg)
		m.appsView, appsCmd = m.appsView.Update(msg)
		return m, tea.Batch(hostsCmd, appsCmd)

	case historyview.LoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		// Yield to the sub-view while its menu or list filter owns the keys.
		if m.subViewCapturing() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			cmd := m.palette.Open()
			return m, cmd
		case "/":
			if m.activeTab != tabHistory {
				cmd := m.search.Focus()
				return m, cmd
			}
		case "esc":
			if m.keyword != "" {
				m.search.SetValue("")
				cmd := m.applyFilter("")
				return m, cmd
			}
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabHosts:
		m.hostsView, tabCmd = m.hostsView.Update(msg)
	case tabApps:
		m.appsView, tabCmd = m.appsView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// updateSearch feeds the focused filter input; every value change re-filters
// both trees.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.search.Blur()
		return m, nil
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		cmd := m.applyFilter("")
		return m, cmd
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == m.keyword {
		return m, cmd
	}
	filterCmd := m.applyFilter(m.search.Value())
	return m, tea.Batch(cmd, filterCmd)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	searchBar := m.renderSearchBar()
	statusBar := m.renderStatusBar()
	chrome := lipgloss.Height(tabBar) + lipgloss.Height(searchBar) + lipgloss.Height(statusBar)

	contentH := m.height - chrome
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, searchBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabHosts:
		return m.hostsView.View()
	case tabApps:
		return m.appsView.View()
	case tabHistory:
		return m.historyView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "hostnav  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func (m Model) renderSearchBar() string {
	if m.search.Focused() || m.keyword != "" {
		return m.search.View()
	}
	return theme.Muted.Render("/ to filter")
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.keyword != "" {
		left = theme.Hot.Render("filter: "+m.keyword) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  /:filter  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "search":
		keyword := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), parts[0]))
		m.search.SetValue(keyword)
		cmd := m.applyFilter(keyword)
		return m, cmd

	case "clear":
		m.search.SetValue("")
		cmd := m.applyFilter("")
		return m, cmd

	case "refresh":
		if len(parts) >= 2 {
			if parts[1] != kindHosts && parts[1] != kindApps {
				m.status = "usage: refresh [hosts|apps]"
				return m, nil
			}
			cmd := m.refreshCmd(parts[1])
			return m, cmd
		}
		switch m.activeTab {
		case tabHosts:
			cmd := m.refreshCmd(kindHosts)
			return m, cmd
		case tabApps:
			cmd := m.refreshCmd(kindApps)
			return m, cmd
		}
		hostsCmd := m.refreshCmd(kindHosts)
		appsCmd := m.refreshCmd(kindApps)
		return m, tea.Batch(hostsCmd, appsCmd)

	case "connect", "sftp":
		view, ok := m.activeTree()
		if !ok {
			m.status = "no tree selected"
			return m, nil
		}
		node, ok := view.Selected()
		if !ok || node.IsParent {
			m.status = "select a host first"
			return m, nil
		}
		mode := treeview.ModeAsset
		if parts[0] == "sftp" {
			mode = treeview.ModeSFTP
		}
		m.status = fmt.Sprintf("connecting to %s (%s)…", label(node), mode)
		return m, m.connectCmd(node, mode)

	case "tab":
		if len(parts) < 2 {
			m.status = "usage: tab <hosts|apps|history>"
			return m, nil
		}
		tab, ok := tabNames[parts[1]]
		if !ok {
			m.status = "unknown tab: " + parts[1]
			return m, nil
		}
		m.activeTab = tab
		return m, nil

	case "history":
		m.activeTab = tabHistory
		return m, m.historyView.Load()

	case "quit":
		return m, tea.Quit

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// install applies a fetched batch on the event loop and returns the commands
// for any remote searches the active filter still needs.
func (m *Model) install(batch treedto.Batch) []tea.Cmd {
	reqs, err := m.tree.Install(batch)
	m.stopLoading(batch.Kind)
	if err != nil {
		m.status = "install " + batch.Kind + ": " + err.Error()
		return nil
	}
	m.reloadTree(batch.Kind)
	return m.searchCmds(reqs)
}

func (m *Model) applyFilter(keyword string) tea.Cmd {
	m.keyword = keyword
	reqs, err := m.tree.Filter(keyword)
	if err != nil {
		m.status = "filter: " + err.Error()
		return nil
	}
	m.hostsView.Reload()
	m.appsView.Reload()
	if keyword == "" {
		m.status = "filter cleared"
	} else if len(reqs) > 0 {
		m.status = fmt.Sprintf("searching %q…", keyword)
	}
	return tea.Batch(m.searchCmds(reqs)...)
}

func (m *Model) reloadTree(kind string) {
	if kind == kindApps {
		m.appsView.Reload()
		return
	}
	m.hostsView.Reload()
}

func (m *Model) stopLoading(kinds ...string) {
	for _, kind := range kinds {
		if kind == kindApps {
			m.appsView.SetLoading(false)
		} else {
			m.hostsView.SetLoading(false)
		}
	}
}

func label(node treedto.NodeOutput) string {
	if strings.TrimSpace(node.Title) != "" {
		return node.Title
	}
	return node.Name
}

func (m Model) activeTree() (treeview.Model, bool) {
	switch m.activeTab {
	case tabHosts:
		return m.hostsView, true
	case tabApps:
		return m.appsView, true
	}
	return treeview.Model{}, false
}

// subViewCapturing reports whether the active tab's menu or list filter is
// open, in which case global key bindings must yield.
func (m Model) subViewCapturing() bool {
	switch m.activeTab {
	case tabHosts:
		return m.hostsView.MenuOpen()
	case tabApps:
		return m.appsView.MenuOpen()
	case tabHistory:
		return m.historyView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: max(m.height-3, 1)}
	m.hostsView, _ = m.hostsView.Update(sz)
	m.appsView, _ = m.appsView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}

func execSession(plan connectdto.SessionPlanOutput) tea.Cmd {
	cmd := osexec.Command(plan.Argv[0], plan.Argv[1:]...)
	if plan.Cwd != "" {
		cmd.Dir = plan.Cwd
	}
	env := os.Environ()
	for k, v := range plan.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return sessionDoneMsg{plan: plan, err: err}
	})
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) loadTreesCmd(refresh bool) tea.Cmd {
	return func() tea.Msg {
		batches, err := m.tree.FetchAll(context.Background(), refresh)
		return treesLoadedMsg{batches: batches, err: err}
	}
}

func (m *Model) refreshCmd(kind string) tea.Cmd {
	var spin tea.Cmd
	if kind == kindApps {
		spin = m.appsView.SetLoading(true)
	} else {
		spin = m.hostsView.SetLoading(true)
	}
	m.status = "refreshing " + kind + "…"
	tree := m.tree
	return tea.Batch(spin, func() tea.Msg {
		batch, err := tree.Fetch(context.Background(), kind, true)
		return treeLoadedMsg{kind: kind, batch: batch, err: err}
	})
}

func (m Model) searchCmds(reqs []treedto.SearchRequest) []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, req := range reqs {
		cmds = append(cmds, func() tea.Msg {
			result, err := m.tree.RunSearch(context.Background(), req)
			return searchDoneMsg{result: result, err: err}
		})
	}
	return cmds
}

func (m Model) connectCmd(node treedto.NodeOutput, mode string) tea.Cmd {
	return func() tea.Msg {
		if m.connect == nil {
			return sessionReadyMsg{err: fmt.Errorf("connector not configured")}
		}
		plan, err := m.connect.Connect(context.Background(), connectdto.ConnectInput{Node: node, Mode: mode})
		return sessionReadyMsg{plan: plan, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type treePortBridge struct{ p treePort }

func (b treePortBridge) Rows(kind string) []treedto.RowOutput {
	return b.p.Rows(kind)
}
func (b treePortBridge) Toggle(kind string, row int) (*treedto.ExpandRequest, error) {
	return b.p.Toggle(kind, row)
}
func (b treePortBridge) FetchChildren(ctx context.Context, req treedto.ExpandRequest) (treedto.ChildrenResult, error) {
	return b.p.FetchChildren(ctx, req)
}
func (b treePortBridge) AttachChildren(result treedto.ChildrenResult) error {
	return b.p.AttachChildren(result)
}

type historyPortBridge struct{ p historyPort }

func (b historyPortBridge) Recent(ctx context.Context, limit int) ([]historydto.ConnectionOutput, error) {
	return b.p.Recent(ctx, limit)
}
