package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BOT_TOKEN", "TELEGRAM_BOT_TOKEN", "PORT", "WEBHOOK_URL", envConfigPath} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
	  "telegram": {"token": "file-token", "poll_timeout_seconds": 5},
	  "gateway": {"host": "127.0.0.1", "port": 9000},
	  "webhook": {"path": "hook"},
	  "logging": {"format": "json", "level": "debug", "add_source": true}
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv(envConfigPath, path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Telegram.Token != "file-token" {
		t.Fatalf("telegram.token = %q, want %q", cfg.Telegram.Token, "file-token")
	}
	if cfg.Telegram.PollTimeoutSeconds != 5 {
		t.Fatalf("telegram.poll_timeout_seconds = %d, want 5", cfg.Telegram.PollTimeoutSeconds)
	}
	if cfg.Gateway.Port != 9000 {
		t.Fatalf("gateway.port = %d, want 9000", cfg.Gateway.Port)
	}
	if cfg.Webhook.Path != "/hook" {
		t.Fatalf("webhook.path = %q, want %q", cfg.Webhook.Path, "/hook")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" || !cfg.Logging.AddSource {
		t.Fatalf("logging = %+v, want json/debug/add_source", cfg.Logging)
	}
}

func TestLoadConfigInvalidEnvPath(t *testing.T) {
	clearEnv(t)
	t.Setenv(envConfigPath, filepath.Join(t.TempDir(), "missing.json"))

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing config path")
	}
}

func TestLoadConfigWithoutFileUsesDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("BOT_TOKEN", " env-token ")
	t.Setenv("TELEGRAM_BOT_TOKEN", "secondary")
	t.Setenv("PORT", "8080")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Telegram.Token != "env-token" {
		t.Fatalf("telegram.token = %q, want %q", cfg.Telegram.Token, "env-token")
	}
	if cfg.Telegram.PollTimeoutSeconds != defaultPollTimeoutSeconds {
		t.Fatalf("poll timeout = %d, want %d", cfg.Telegram.PollTimeoutSeconds, defaultPollTimeoutSeconds)
	}
	if cfg.Gateway.Host != defaultGatewayHost || cfg.Gateway.Port != 8080 {
		t.Fatalf("gateway = %+v, want %s:8080", cfg.Gateway, defaultGatewayHost)
	}
	if cfg.Webhook.Path != defaultWebhookPath {
		t.Fatalf("webhook.path = %q, want %q", cfg.Webhook.Path, defaultWebhookPath)
	}
	if cfg.Webhook.PublicURL != "https://bot.example.com" {
		t.Fatalf("webhook.public_url = %q", cfg.Webhook.PublicURL)
	}
}

func TestLoadConfigInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "not-a-number")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}

func TestRequireToken(t *testing.T) {
	t.Parallel()

	var nilCfg *Config
	if _, err := nilCfg.RequireToken(); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("nil config err = %v, want ErrMissingToken", err)
	}

	cfg := &Config{Telegram: TelegramConfig{Token: "   "}}
	if _, err := cfg.RequireToken(); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("blank token err = %v, want ErrMissingToken", err)
	}

	cfg.Telegram.Token = " abc "
	token, err := cfg.RequireToken()
	if err != nil || token != "abc" {
		t.Fatalf("RequireToken = %q, %v; want abc, nil", token, err)
	}
}
