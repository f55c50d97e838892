package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"zcsbot/pkg/channel/telegram"
	"zcsbot/pkg/config"
	"zcsbot/pkg/ui/setup"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// newWebhookAdmin is replaced in tests.
var newWebhookAdmin = func(cfg *config.Config, log *slog.Logger) (setup.Admin, error) {
	client, err := telegram.NewClient(cfg.Telegram, log)
	if err != nil {
		return nil, err
	}
	return client, nil
}

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Telegram webhook registration",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set [url]",
	Short: "Register the webhook URL with Telegram",
	Long:  "Registers the webhook with Telegram. The configured route path is appended when the URL does not already end with it. Without an argument webhook.public_url (WEBHOOK_URL) is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, admin, err := webhookAdmin()
		if err != nil {
			return err
		}

		raw := cfg.Webhook.PublicURL
		if len(args) > 0 {
			raw = args[0]
		}

		return runWebhookSet(cmd.Context(), cmd.OutOrStdout(), admin, raw, cfg.Webhook.Path)
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the webhook so long polling can be used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, admin, err := webhookAdmin()
		if err != nil {
			return err
		}

		return runWebhookDelete(cmd.Context(), cmd.OutOrStdout(), admin)
	},
}

var webhookInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the current webhook registration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, admin, err := webhookAdmin()
		if err != nil {
			return err
		}

		return printWebhookInfo(cmd.Context(), cmd.OutOrStdout(), admin, "Webhook info")
	},
}

var webhookSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive webhook setup menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, admin, err := webhookAdmin()
		if err != nil {
			return err
		}

		return setup.Run(cmd.Context(), admin, setup.Options{
			DefaultURL: cfg.Webhook.PublicURL,
			RoutePath:  cfg.Webhook.Path,
		})
	},
}

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(webhookSetCmd, webhookDeleteCmd, webhookInfoCmd, webhookSetupCmd)
}

func webhookAdmin() (*config.Config, setup.Admin, error) {
	cfg, log, err := loadRuntime("cmd.webhook")
	if err != nil {
		return nil, nil, err
	}

	if _, err := cfg.RequireToken(); err != nil {
		return nil, nil, err
	}

	admin, err := newWebhookAdmin(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	return cfg, admin, nil
}

func runWebhookSet(ctx context.Context, out io.Writer, admin setup.Admin, raw string, routePath string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("webhook url is required: pass it as an argument or set WEBHOOK_URL")
	}

	target, err := telegram.NormalizeWebhookURL(raw, routePath)
	if err != nil {
		return err
	}

	if err := admin.SetWebhook(ctx, target); err != nil {
		return err
	}

	return printWebhookInfo(ctx, out, admin, "Webhook set")
}

func runWebhookDelete(ctx context.Context, out io.Writer, admin setup.Admin) error {
	if err := admin.DeleteWebhook(ctx); err != nil {
		return err
	}

	return printWebhookInfo(ctx, out, admin, "Webhook deleted")
}

func printWebhookInfo(ctx context.Context, out io.Writer, admin setup.Admin, title string) error {
	status, err := admin.WebhookInfo(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s\n%s\n", webhookTitleStyle.Render(title), setup.RenderStatus(status))
	return err
}

var webhookTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("230")).
	Background(lipgloss.Color("25")).
	Padding(0, 1)
