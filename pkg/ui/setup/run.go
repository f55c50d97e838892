// Package setup renders the interactive webhook registration menu.
package setup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"zcsbot/pkg/channel/telegram"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Admin manages the bot's webhook registration. *telegram.Client implements it.
type Admin interface {
	SetWebhook(ctx context.Context, url string) error
	DeleteWebhook(ctx context.Context) error
	WebhookInfo(ctx context.Context) (telegram.WebhookStatus, error)
}

// Options configures the setup menu.
type Options struct {
	DefaultURL string
	RoutePath  string
}

func Run(ctx context.Context, admin Admin, opts Options) error {
	if admin == nil {
		return fmt.Errorf("webhook admin is required")
	}

	program := tea.NewProgram(newModel(ctx, admin, opts), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}

	fmt.Println(renderGoodbyeBanner())
	return nil
}

// RenderStatus formats webhook info as aligned label/value rows.
func RenderStatus(status telegram.WebhookStatus) string {
	t := defaultTheme()

	url := status.URL
	if url == "" {
		url = "(none, long polling allowed)"
	}

	rows := [][2]string{
		{"URL", url},
		{"Pending updates", strconv.Itoa(status.PendingUpdateCount)},
	}
	if status.MaxConnections > 0 {
		rows = append(rows, [2]string{"Max connections", strconv.Itoa(status.MaxConnections)})
	}
	if len(status.AllowedUpdates) > 0 {
		rows = append(rows, [2]string{"Allowed updates", strings.Join(status.AllowedUpdates, ", ")})
	}
	if !status.LastErrorAt.IsZero() {
		rows = append(rows, [2]string{"Last error at", status.LastErrorAt.Format(time.RFC3339)})
	}
	if status.LastErrorMessage != "" {
		rows = append(rows, [2]string{"Last error", status.LastErrorMessage})
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, t.label.Render(row[0]), t.value.Render(row[1])))
	}

	return strings.Join(lines, "\n")
}

func renderGoodbyeBanner() string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("25")).
		Padding(1, 2)

	return style.Render("🤖 Webhook setup finished")
}
