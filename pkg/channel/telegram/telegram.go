package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"zcsbot/pkg/bus"
	"zcsbot/pkg/channel"

	"github.com/mymmrac/telego"
)

const channelName = "telegram"
const messagePreviewLimit = 240

// updateSource yields long-polled updates. *Client implements it.
type updateSource interface {
	DeleteWebhook(ctx context.Context) error
	Updates(ctx context.Context) (<-chan telego.Update, error)
}

// Adapter is the long-lived delivery mode: one long-polling loop for the process lifetime.
type Adapter struct {
	source updateSource
	sender channel.Sender
	log    *slog.Logger
}

// NewAdapter constructs a long-polling adapter over client.
func NewAdapter(client *Client, log *slog.Logger) (*Adapter, error) {
	if client == nil {
		return nil, errors.New("telegram client is required")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Adapter{
		source: client,
		sender: client,
		log:    log.With("component", "channel.telegram"),
	}, nil
}

// Name returns the channel identifier used in status reports and logs.
func (a *Adapter) Name() string {
	return channelName
}

// Run clears any webhook, starts long polling and processes updates in arrival order
// until ctx is cancelled.
func (a *Adapter) Run(ctx context.Context, handler channel.Handler) error {
	if handler == nil {
		return errors.New("handler is required")
	}

	// getUpdates is rejected while a webhook is registered.
	if err := a.source.DeleteWebhook(ctx); err != nil {
		return err
	}

	updates, err := a.source.Updates(ctx)
	if err != nil {
		return err
	}

	a.log.Info("Telegram long polling started")

	return a.consume(ctx, updates, handler)
}

func (a *Adapter) consume(ctx context.Context, updates <-chan telego.Update, handler channel.Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-updates:
			if !ok {
				if err := ctx.Err(); err != nil {
					return nil
				}
				return errors.New("telegram updates channel closed")
			}

			a.process(ctx, handler, Classify(raw))
		}
	}
}

// process delivers one update. Faults are logged and never stop the loop.
func (a *Adapter) process(ctx context.Context, handler channel.Handler, update bus.Update) {
	a.log.Info("Received update", "update_id", update.ID, "kind", update.Kind.String(), "key", update.Key(), "chat_id", update.ChatID, "content", previewText(update.Text))

	reply, err := channel.Deliver(ctx, handler, a.sender, update)
	if err != nil {
		a.log.Error("Failed to process update", "update_id", update.ID, "kind", update.Kind.String(), "key", update.Key(), "category", bus.CategoryFromError(err), "error", err)
		return
	}
	if reply == nil {
		a.log.Debug("No reply for update", "update_id", update.ID, "kind", update.Kind.String(), "key", update.Key())
		return
	}

	a.log.Info("Sent reply", "update_id", update.ID, "chat_id", reply.ChatID, "format", reply.Format.String(), "content", previewText(reply.Text))
}

// previewText returns a bounded log-safe preview of message text.
func previewText(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= messagePreviewLimit {
		return trimmed
	}

	return trimmed[:messagePreviewLimit] + "..."
}
