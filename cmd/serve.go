package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"zcsbot/pkg/channel/telegram"
	"zcsbot/pkg/config"
	"zcsbot/pkg/dispatch"
	"zcsbot/pkg/gateway"
	"zcsbot/pkg/webhook"

	"github.com/spf13/cobra"
)

var registerWebhook bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Telegram webhook over HTTP",
	Long:  "Serves the webhook route next to health and readiness endpoints. Each POST carries one update and is answered synchronously. The Telegram client is built on the first update.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = args

		cfg, log, err := loadRuntime("cmd.serve")
		if err != nil {
			return err
		}

		if _, err := cfg.RequireToken(); err != nil {
			log.Warn("Bot token missing; webhook invocations will fail until it is set", "error", err)
		}

		runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if registerWebhook {
			if err := registerPublicURL(runCtx, cfg, log); err != nil {
				log.Error("Failed to register webhook", "error", err)
				return err
			}
		}

		handler, err := webhook.NewHandler(webhook.NewLazy(webhookRuntimeFactory(cfg, log)), log)
		if err != nil {
			return err
		}

		svc, err := gateway.NewService(cfg, nil, nil, log)
		if err != nil {
			log.Error("Failed to initialize gateway service", "error", err)
			return err
		}
		if err := svc.Mount(cfg.Webhook.Path, handler); err != nil {
			return err
		}

		log.Info("Bot started", "mode", "serve", "path", cfg.Webhook.Path, "host", cfg.Gateway.Host, "port", cfg.Gateway.Port)
		if err := svc.Run(runCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Error("Bot runtime failed", "error", err)
			return err
		}

		log.Info("Bot stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&registerWebhook, "register", false, "register webhook.public_url (WEBHOOK_URL) with Telegram before serving")
}

// webhookRuntimeFactory defers client construction to the first invocation.
func webhookRuntimeFactory(cfg *config.Config, log *slog.Logger) webhook.Factory {
	return func() (*webhook.Runtime, error) {
		client, err := telegram.NewClient(cfg.Telegram, log)
		if err != nil {
			return nil, err
		}

		return &webhook.Runtime{Handler: dispatch.NewRouter().Handle, Sender: client}, nil
	}
}

func registerPublicURL(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	target, err := telegram.NormalizeWebhookURL(cfg.Webhook.PublicURL, cfg.Webhook.Path)
	if err != nil {
		return fmt.Errorf("resolve webhook url: %w", err)
	}

	client, err := telegram.NewClient(cfg.Telegram, log)
	if err != nil {
		return err
	}

	if err := client.SetWebhook(ctx, target); err != nil {
		return err
	}

	log.Info("Webhook registered", "url", target)
	return nil
}
