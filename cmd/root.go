package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"zcsbot/pkg/config"
	"zcsbot/pkg/logger"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zcsbot",
	Short: "Zero Code Studios Telegram bot",
	Long: `Runs the Zero Code Studios Telegram bot.

Use "poll" for a long-lived long-polling process, "serve" to receive updates
on an HTTPS webhook, and "webhook" to manage the webhook registration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
// Failures are printed and exit the process with a non-zero status.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "zcsbot: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime loads configuration and installs the process logger.
// The bot token, when present, is masked in every log record.
func loadRuntime(component string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logging, cfg.Telegram.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(appLogger)

	return cfg, appLogger.With("component", component), nil
}
