package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zcsbot/pkg/bus"
	"zcsbot/pkg/config"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Client is the Bot API client shared by every delivery mode and the webhook tool.
type Client struct {
	bot         *telego.Bot
	pollTimeout int
}

// WebhookStatus is the subset of getWebhookInfo the bot reports.
type WebhookStatus struct {
	URL                string
	PendingUpdateCount int
	MaxConnections     int
	LastErrorAt        time.Time
	LastErrorMessage   string
	AllowedUpdates     []string
}

// NewClient validates the token and constructs a Bot API client.
func NewClient(cfg config.TelegramConfig, log *slog.Logger) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, config.ErrMissingToken
	}

	if log == nil {
		log = slog.Default()
	}

	options := []telego.BotOption{telego.WithLogger(slogLogger{log: log.With("component", "telego")})}
	if server := strings.TrimSpace(cfg.APIServer); server != "" {
		options = append(options, telego.WithAPIServer(server))
	}

	bot, err := telego.NewBot(token, options...)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	return &Client{bot: bot, pollTimeout: cfg.PollTimeoutSeconds}, nil
}

// SendReply renders reply into a sendMessage call.
func (c *Client) SendReply(ctx context.Context, reply bus.Reply) error {
	if _, err := c.bot.SendMessage(ctx, messageParams(reply)); err != nil {
		return fmt.Errorf("send message to chat %d: %w", reply.ChatID, err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query so the client stops its loading state.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := c.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{CallbackQueryID: callbackID}); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}
	return nil
}

// Updates starts long polling. The channel closes when ctx is done.
func (c *Client) Updates(ctx context.Context) (<-chan telego.Update, error) {
	updates, err := c.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        c.pollTimeout,
		AllowedUpdates: allowedUpdates,
	})
	if err != nil {
		return nil, fmt.Errorf("start long polling: %w", err)
	}
	return updates, nil
}

// SetWebhook registers url as the push target for updates.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	if err := c.bot.SetWebhook(ctx, &telego.SetWebhookParams{URL: url, AllowedUpdates: allowedUpdates}); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes any registered webhook. Pending updates are kept.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	if err := c.bot.DeleteWebhook(ctx, &telego.DeleteWebhookParams{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// WebhookInfo reports the currently registered webhook.
func (c *Client) WebhookInfo(ctx context.Context) (WebhookStatus, error) {
	info, err := c.bot.GetWebhookInfo(ctx)
	if err != nil {
		return WebhookStatus{}, fmt.Errorf("get webhook info: %w", err)
	}
	if info == nil {
		return WebhookStatus{}, errors.New("get webhook info: empty response")
	}

	return webhookStatus(info), nil
}

func webhookStatus(info *telego.WebhookInfo) WebhookStatus {
	status := WebhookStatus{
		URL:                info.URL,
		PendingUpdateCount: info.PendingUpdateCount,
		MaxConnections:     info.MaxConnections,
		LastErrorMessage:   info.LastErrorMessage,
		AllowedUpdates:     info.AllowedUpdates,
	}
	if info.LastErrorDate > 0 {
		status.LastErrorAt = time.Unix(info.LastErrorDate, 0).UTC()
	}
	return status
}

// messageParams renders a reply. Only FormatMarkdown replies are parsed as markup.
func messageParams(reply bus.Reply) *telego.SendMessageParams {
	params := tu.Message(tu.ID(reply.ChatID), reply.Text)
	if reply.Format == bus.FormatMarkdown {
		params.ParseMode = telego.ModeMarkdown
	}
	if markup := inlineKeyboard(reply.Rows); markup != nil {
		params.ReplyMarkup = markup
	}
	return params
}

func inlineKeyboard(rows [][]bus.Button) *telego.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}

	keyboard := make([][]telego.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			rendered := telego.InlineKeyboardButton{Text: button.Label}
			if button.URL != "" {
				rendered.URL = button.URL
			} else {
				rendered.CallbackData = button.Tag
			}
			buttons = append(buttons, rendered)
		}
		keyboard = append(keyboard, tu.InlineKeyboardRow(buttons...))
	}

	return tu.InlineKeyboard(keyboard...)
}

// slogLogger routes telego's internal logging into slog.
type slogLogger struct {
	log *slog.Logger
}

func (l slogLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l slogLogger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}
