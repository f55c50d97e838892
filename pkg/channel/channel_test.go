package channel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"zcsbot/pkg/bus"

	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu      sync.Mutex
	replies []bus.Reply
	acks    []string
	sendErr error
	ackErr  error
}

func (s *recordingSender) SendReply(_ context.Context, reply bus.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.replies = append(s.replies, reply)
	return nil
}

func (s *recordingSender) AnswerCallback(_ context.Context, callbackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acks = append(s.acks, callbackID)
	return s.ackErr
}

func fixedHandler(reply *bus.Reply, err error) Handler {
	return func(context.Context, bus.Update) (*bus.Reply, error) {
		return reply, err
	}
}

func TestDeliverSendsReply(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	want := &bus.Reply{ChatID: 1, Text: "hello"}
	got, err := Deliver(context.Background(), fixedHandler(want, nil), sender, bus.Update{Kind: bus.KindText, ChatID: 1, Text: "x"})

	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, []bus.Reply{*want}, sender.replies)
	require.Empty(t, sender.acks)
}

func TestDeliverAcknowledgesCallbackOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reply   *bus.Reply
		err     error
		wantErr bool
	}{
		{name: "reply", reply: &bus.Reply{ChatID: 1, Text: "info"}},
		{name: "noop", reply: nil},
		{name: "handler error", err: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			update := bus.Update{Kind: bus.KindCallback, ChatID: 1, CallbackID: "cb-9", CallbackData: "tag"}

			_, err := Deliver(context.Background(), fixedHandler(tt.reply, tt.err), sender, update)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, []string{"cb-9"}, sender.acks)
		})
	}
}

func TestDeliverHandlerErrorSendsNothing(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	_, err := Deliver(context.Background(), fixedHandler(&bus.Reply{Text: "partial"}, errors.New("boom")), sender, bus.Update{Kind: bus.KindCommand, ChatID: 1, Command: "start"})

	require.Error(t, err)
	require.Empty(t, sender.replies)
}

func TestDeliverJoinsAckAndSendErrors(t *testing.T) {
	t.Parallel()

	ackErr := errors.New("ack failed")
	sendErr := errors.New("send failed")
	sender := &recordingSender{ackErr: ackErr, sendErr: sendErr}
	update := bus.Update{Kind: bus.KindCallback, ChatID: 1, CallbackID: "cb", CallbackData: "more_info"}

	_, err := Deliver(context.Background(), fixedHandler(&bus.Reply{ChatID: 1, Text: "x"}, nil), sender, update)

	require.ErrorIs(t, err, ackErr)
	require.ErrorIs(t, err, sendErr)
	require.Equal(t, bus.ErrorDispatch, bus.CategoryFromError(err))
}

func TestDeliverRequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := Deliver(context.Background(), nil, &recordingSender{}, bus.Update{})
	require.Error(t, err)

	_, err = Deliver(context.Background(), fixedHandler(nil, nil), nil, bus.Update{})
	require.Error(t, err)
}
