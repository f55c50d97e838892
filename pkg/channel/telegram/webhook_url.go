package telegram

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// NormalizeWebhookURL turns a site address into the full webhook endpoint.
//
// The route path is appended unless raw already ends with it. Telegram only
// delivers to HTTPS endpoints.
func NormalizeWebhookURL(raw string, routePath string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("webhook url is required")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse webhook url: %w", err)
	}
	if parsed.Scheme != "https" {
		return "", fmt.Errorf("webhook url must use https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("webhook url %q has no host", trimmed)
	}

	routePath = "/" + strings.Trim(strings.TrimSpace(routePath), "/")
	if routePath == "/" || strings.HasSuffix(strings.TrimRight(parsed.Path, "/"), routePath) {
		return parsed.String(), nil
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/") + routePath
	return parsed.String(), nil
}
