package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	envConfigPath = "ZCSBOT_CONFIG"

	defaultPollTimeoutSeconds = 30
	defaultGatewayHost        = "0.0.0.0"
	defaultGatewayPort        = 18790
	defaultWebhookPath        = "/webhook"
)

// ErrMissingToken reports that no bot token was configured.
var ErrMissingToken = errors.New("bot token is required (set BOT_TOKEN)")

// Config is the root runtime configuration loaded from config.json and the environment.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Gateway  GatewayConfig  `json:"gateway"`
	Webhook  WebhookConfig  `json:"webhook"`
	Logging  LoggingConfig  `json:"logging,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// TelegramConfig configures the Telegram Bot API client.
type TelegramConfig struct {
	Token              string `json:"token"`
	APIServer          string `json:"api_server,omitempty"`
	PollTimeoutSeconds int    `json:"poll_timeout_seconds,omitempty"`
}

// GatewayConfig configures the HTTP bind settings shared by health and webhook routes.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// WebhookConfig configures the stateless webhook route and its public address.
type WebhookConfig struct {
	Path      string `json:"path,omitempty"`
	PublicURL string `json:"public_url,omitempty"`
}

// envOverrides lists the environment variables layered over file config.
type envOverrides struct {
	BotToken         string `envconfig:"BOT_TOKEN"`
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	Port             int    `envconfig:"PORT"`
	WebhookURL       string `envconfig:"WEBHOOK_URL"`
}

// LoadConfig resolves an optional config.json, applies defaults, then environment overrides.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := json.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// RequireToken returns the bot token or ErrMissingToken.
func (c *Config) RequireToken() (string, error) {
	if c == nil {
		return "", ErrMissingToken
	}

	token := strings.TrimSpace(c.Telegram.Token)
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Telegram.PollTimeoutSeconds <= 0 {
		cfg.Telegram.PollTimeoutSeconds = defaultPollTimeoutSeconds
	}
	if strings.TrimSpace(cfg.Gateway.Host) == "" {
		cfg.Gateway.Host = defaultGatewayHost
	}
	if cfg.Gateway.Port <= 0 {
		cfg.Gateway.Port = defaultGatewayPort
	}

	path := strings.TrimSpace(cfg.Webhook.Path)
	if path == "" {
		path = defaultWebhookPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	cfg.Webhook.Path = path
}

// applyEnvOverrides injects env-driven settings on top of file config.
//
// BOT_TOKEN wins over TELEGRAM_BOT_TOKEN.
func applyEnvOverrides(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	if token := strings.TrimSpace(env.TelegramBotToken); token != "" {
		cfg.Telegram.Token = token
	}
	if token := strings.TrimSpace(env.BotToken); token != "" {
		cfg.Telegram.Token = token
	}
	if env.Port > 0 {
		cfg.Gateway.Port = env.Port
	}
	if url := strings.TrimSpace(env.WebhookURL); url != "" {
		cfg.Webhook.PublicURL = url
	}

	return nil
}

// findConfigPath resolves the active config file location.
//
// Precedence is ZCSBOT_CONFIG first, then cwd-local fallback paths. No file is not an error.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv(envConfigPath)); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("%s does not point to a file: %s", envConfigPath, value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}
