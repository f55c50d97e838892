package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"zcsbot/pkg/channel"
	"zcsbot/pkg/channel/telegram"
	"zcsbot/pkg/config"
	"zcsbot/pkg/dispatch"
	"zcsbot/pkg/gateway"

	"github.com/spf13/cobra"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run the bot with Telegram long polling",
	Long:  "Clears any registered webhook, then long-polls Telegram and answers updates one at a time until interrupted. Health and readiness endpoints are served on the gateway address.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = args

		cfg, log, err := loadRuntime("cmd.poll")
		if err != nil {
			return err
		}

		if _, err := cfg.RequireToken(); err != nil {
			log.Error("Bot token missing", "error", err)
			return err
		}

		adapters, err := pollingAdapters(cfg, log)
		if err != nil {
			log.Error("Polling configuration invalid", "error", err)
			return err
		}

		runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		router := dispatch.NewRouter()
		svc, err := gateway.NewService(cfg, router.Handle, adapters, log)
		if err != nil {
			log.Error("Failed to initialize gateway service", "error", err)
			return err
		}

		log.Info("Bot started", "mode", "poll", "channels", channelNames(adapters), "routes", routeNames(router))
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
	rootCmd.AddCommand(pollCmd)
}

func pollingAdapters(cfg *config.Config, log *slog.Logger) ([]channel.Adapter, error) {
	client, err := telegram.NewClient(cfg.Telegram, log)
	if err != nil {
		return nil, fmt.Errorf("configure telegram client: %w", err)
	}

	adapter, err := telegram.NewAdapter(client, log)
	if err != nil {
		return nil, fmt.Errorf("configure telegram channel: %w", err)
	}

	return []channel.Adapter{adapter}, nil
}

func channelNames(adapters []channel.Adapter) string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		names = append(names, adapter.Name())
	}

	return strings.Join(names, ",")
}

func routeNames(router *dispatch.Router) string {
	routes := router.Routes()
	names := make([]string, 0, len(routes))
	for _, route := range routes {
		names = append(names, route.String())
	}

	return strings.Join(names, ",")
}
