package channel

import (
	"context"
	"errors"
	"fmt"

	"zcsbot/pkg/bus"
)

// Handler resolves one classified update to an optional reply.
type Handler func(context.Context, bus.Update) (*bus.Reply, error)

// Sender delivers replies and callback acknowledgements to the platform.
type Sender interface {
	SendReply(ctx context.Context, reply bus.Reply) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Adapter bridges one delivery mode (for example Telegram long polling) into the bot.
type Adapter interface {
	Name() string
	Run(context.Context, Handler) error
}

// Deliver runs the per-update sequence shared by every adapter.
//
// Callbacks are acknowledged first, exactly once, whatever the handler returns.
// When the handler fails nothing is sent.
func Deliver(ctx context.Context, handler Handler, sender Sender, update bus.Update) (*bus.Reply, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	if sender == nil {
		return nil, errors.New("sender is required")
	}

	var ackErr error
	if update.Kind == bus.KindCallback && update.CallbackID != "" {
		if err := sender.AnswerCallback(ctx, update.CallbackID); err != nil {
			ackErr = fmt.Errorf("answer callback %s: %w", update.CallbackID, err)
		}
	}

	reply, err := handler(ctx, update)
	if err != nil {
		return nil, errors.Join(ackErr, err)
	}
	if reply == nil {
		return nil, ackErr
	}

	if err := sender.SendReply(ctx, *reply); err != nil {
		return reply, errors.Join(ackErr, bus.WrapError(bus.ErrorDispatch, "send reply", err))
	}

	return reply, ackErr
}
