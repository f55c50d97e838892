package setup

import (
	"context"
	"fmt"
	"strings"

	"zcsbot/pkg/channel/telegram"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type screen int

const (
	screenMenu screen = iota
	screenURL
	screenWorking
)

type action int

const (
	actionSet action = iota
	actionDelete
	actionInfo
	actionExit
)

var menuItems = []struct {
	action action
	label  string
}{
	{action: actionSet, label: "Set webhook"},
	{action: actionDelete, label: "Delete webhook"},
	{action: actionInfo, label: "Show webhook info"},
	{action: actionExit, label: "Exit"},
}

type logEntry struct {
	title string
	body  string
	err   bool
}

type resultMsg struct {
	title  string
	status telegram.WebhookStatus
	err    error
}

type model struct {
	ctx   context.Context
	admin Admin
	opts  Options

	theme    theme
	spinner  spinner.Model
	input    textinput.Model
	viewport viewport.Model
	screen   screen
	cursor   int
	entries  []logEntry
	inputErr string
	width    int
	height   int
}

func newModel(ctx context.Context, admin Admin, opts Options) *model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))

	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "https://your-site.example"
	in.CharLimit = 0

	return &model{
		ctx:      ctx,
		admin:    admin,
		opts:     opts,
		theme:    defaultTheme(),
		spinner:  spin,
		input:    in,
		viewport: viewport.New(80, 8),
		width:    90,
		height:   26,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.resizeComponents()
		return m, nil
	case resultMsg:
		m.screen = screenMenu
		m.record(typed)
		return m, nil
	case spinner.TickMsg:
		if m.screen != screenWorking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.screen {
		case screenMenu:
			return m.updateMenu(typed)
		case screenURL:
			return m.updateURL(typed)
		}
		return m, nil
	}

	if m.screen == screenURL {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc", "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor = (m.cursor + len(menuItems) - 1) % len(menuItems)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(menuItems)
	case "enter", " ":
		return m.choose(menuItems[m.cursor].action)
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'0') <= len(menuItems) {
			m.cursor = int(key[0]-'1')
			return m.choose(menuItems[m.cursor].action)
		}
	}

	return m, nil
}

func (m *model) choose(selected action) (tea.Model, tea.Cmd) {
	switch selected {
	case actionSet:
		m.screen = screenURL
		m.inputErr = ""
		m.input.SetValue(strings.TrimSpace(m.opts.DefaultURL))
		m.input.CursorEnd()
		return m, m.input.Focus()
	case actionDelete:
		m.screen = screenWorking
		return m, tea.Batch(m.spinner.Tick, deleteWebhookCmd(m.ctx, m.admin))
	case actionInfo:
		m.screen = screenWorking
		return m, tea.Batch(m.spinner.Tick, webhookInfoCmd(m.ctx, m.admin))
	default:
		return m, tea.Quit
	}
}

func (m *model) updateURL(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.screen = screenMenu
		m.inputErr = ""
		m.input.Blur()
		return m, nil
	case "enter":
		target, err := telegram.NormalizeWebhookURL(m.input.Value(), m.opts.RoutePath)
		if err != nil {
			m.inputErr = err.Error()
			return m, nil
		}

		m.inputErr = ""
		m.input.Blur()
		m.screen = screenWorking
		return m, tea.Batch(m.spinner.Tick, setWebhookCmd(m.ctx, m.admin, target))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) record(result resultMsg) {
	entry := logEntry{title: result.title}
	if result.err != nil {
		entry.err = true
		entry.body = result.err.Error()
	} else {
		entry.body = RenderStatus(result.status)
	}

	m.entries = append(m.entries, entry)
	m.refreshViewport()
}

func (m *model) View() string {
	header := m.theme.header.Width(m.width - 2).Render("🤖 Webhook Setup")
	meta := m.theme.headerMeta.Render("route:" + displayOrNA(m.opts.RoutePath) + " · default url:" + displayOrNA(m.opts.DefaultURL))
	line := m.theme.divider.Render(strings.Repeat("═", max(8, m.width-2)))

	parts := []string{header, meta, line}

	switch m.screen {
	case screenURL:
		parts = append(parts,
			m.theme.inputLabel.Render("Site or webhook URL")+" "+m.theme.hint.Render("(the route path is appended when missing)"),
			m.theme.input.Width(m.width-2).Render(m.input.View()),
		)
		if m.inputErr != "" {
			parts = append(parts, m.theme.errorBox.Render(m.inputErr))
		}
		parts = append(parts, m.theme.status.Render("Enter confirm  ·  Esc back  ·  Ctrl+C quit"))
	case screenWorking:
		parts = append(parts, m.theme.statusBusy.Render(fmt.Sprintf("%s talking to Telegram...", m.spinner.View())))
	default:
		parts = append(parts, m.menuView(), m.theme.status.Render("↑/↓ move  ·  Enter or 1-4 select  ·  Esc quit"))
	}

	if len(m.entries) > 0 {
		parts = append(parts, m.theme.log.Width(m.width-2).Render(m.viewport.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *model) menuView() string {
	lines := make([]string, 0, len(menuItems))
	for i, item := range menuItems {
		label := fmt.Sprintf("%d. %s", i+1, item.label)
		if i == m.cursor {
			lines = append(lines, m.theme.itemActive.Render("▸ "+label))
			continue
		}
		lines = append(lines, m.theme.item.Render(label))
	}

	return strings.Join(lines, "\n")
}

func (m *model) resizeComponents() {
	w := max(40, m.width-6)
	h := max(4, m.height-14)

	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = w - 2
	m.refreshViewport()
}

func (m *model) refreshViewport() {
	sections := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		if entry.err {
			sections = append(sections, lipgloss.JoinVertical(lipgloss.Left,
				m.theme.errorTitle.Render(entry.title),
				m.theme.errorBox.Render(entry.body),
			))
			continue
		}

		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left,
			m.theme.okTitle.Render(entry.title),
			m.theme.okBox.Render(entry.body),
		))
	}

	m.viewport.SetContent(strings.Join(sections, "\n\n"))
	m.viewport.GotoBottom()
}

func setWebhookCmd(ctx context.Context, admin Admin, target string) tea.Cmd {
	return func() tea.Msg {
		title := "SET " + target
		if err := admin.SetWebhook(ctx, target); err != nil {
			return resultMsg{title: title, err: err}
		}

		status, err := admin.WebhookInfo(ctx)
		return resultMsg{title: title, status: status, err: err}
	}
}

func deleteWebhookCmd(ctx context.Context, admin Admin) tea.Cmd {
	return func() tea.Msg {
		if err := admin.DeleteWebhook(ctx); err != nil {
			return resultMsg{title: "DELETE", err: err}
		}

		status, err := admin.WebhookInfo(ctx)
		return resultMsg{title: "DELETE", status: status, err: err}
	}
}

func webhookInfoCmd(ctx context.Context, admin Admin) tea.Cmd {
	return func() tea.Msg {
		status, err := admin.WebhookInfo(ctx)
		return resultMsg{title: "INFO", status: status, err: err}
	}
}

func displayOrNA(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "n/a"
	}

	return trimmed
}
