package cmd

import (
	"context"
	"errors"
	"testing"

	channelpkg "zcsbot/pkg/channel"
	"zcsbot/pkg/config"
	"zcsbot/pkg/dispatch"
)

type testAdapter struct{ name string }

func (a testAdapter) Name() string { return a.name }

func (a testAdapter) Run(_ context.Context, _ channelpkg.Handler) error { return nil }

func TestPollingAdaptersRequiresToken(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	_, err := pollingAdapters(cfg, nil)
	if !errors.Is(err, config.ErrMissingToken) {
		t.Fatalf("pollingAdapters error = %v, want ErrMissingToken", err)
	}
}

func TestChannelNames(t *testing.T) {
	t.Parallel()

	adapters := []channelpkg.Adapter{testAdapter{name: "telegram"}, testAdapter{name: "slack"}}
	if got := channelNames(adapters); got != "telegram,slack" {
		t.Fatalf("channelNames = %q, want %q", got, "telegram,slack")
	}
}

func TestRouteNames(t *testing.T) {
	t.Parallel()

	want := "command:help,command:ping,command:start,text,callback:more_info,callback:no_action"
	if got := routeNames(dispatch.NewRouter()); got != want {
		t.Fatalf("routeNames = %q, want %q", got, want)
	}
}

func TestWebhookRuntimeFactoryRequiresToken(t *testing.T) {
	t.Parallel()

	factory := webhookRuntimeFactory(&config.Config{}, nil)
	if _, err := factory(); !errors.Is(err, config.ErrMissingToken) {
		t.Fatalf("factory error = %v, want ErrMissingToken", err)
	}
}
