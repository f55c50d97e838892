// Package dispatch maps classified updates to replies through one fixed routing table.
package dispatch

import (
	"context"
	"fmt"
	"sort"

	"zcsbot/pkg/bus"
)

// Route identifies one entry of the routing table.
type Route struct {
	Kind bus.Kind
	Key  string
}

func (r Route) String() string {
	if r.Key == "" {
		return r.Kind.String()
	}
	return r.Kind.String() + ":" + r.Key
}

// Rule builds the reply for one matched update. Rules must not perform I/O.
type Rule func(bus.Update) bus.Reply

// Router resolves updates against a read-only routing table.
//
// A Router is safe for concurrent use; the table is never mutated after construction.
type Router struct {
	routes map[Route]Rule
}

// NewRouter returns a router with the bot's canonical command set.
func NewRouter() *Router {
	return NewRouterWithRoutes(DefaultRoutes())
}

// NewRouterWithRoutes returns a router over a copy of routes.
func NewRouterWithRoutes(routes map[Route]Rule) *Router {
	table := make(map[Route]Rule, len(routes))
	for route, rule := range routes {
		if rule == nil {
			continue
		}
		table[route] = rule
	}

	return &Router{routes: table}
}

// DefaultRoutes returns the canonical routing table.
func DefaultRoutes() map[Route]Rule {
	return map[Route]Rule{
		{Kind: bus.KindCommand, Key: "start"}:       startReply,
		{Kind: bus.KindCommand, Key: "help"}:        helpReply,
		{Kind: bus.KindCommand, Key: "ping"}:        pingReply,
		{Kind: bus.KindText}:                        echoReply,
		{Kind: bus.KindCallback, Key: TagMoreInfo}: moreInfoReply,
		{Kind: bus.KindCallback, Key: TagNoAction}: noActionReply,
	}
}

// Dispatch resolves update to a reply.
//
// Unrecognized commands and tags resolve to (nil, nil). An error is returned only
// when the update is structurally unusable.
func (r *Router) Dispatch(update bus.Update) (*bus.Reply, error) {
	switch update.Kind {
	case bus.KindOther:
		return nil, nil
	case bus.KindCommand, bus.KindText, bus.KindCallback:
	default:
		return nil, bus.NewError(bus.ErrorMalformedInput, fmt.Sprintf("unknown update kind %d", int(update.Kind)))
	}

	if update.ChatID == 0 {
		// Callbacks from inaccessible messages have nowhere to reply to.
		if update.Kind == bus.KindCallback {
			return nil, nil
		}
		return nil, bus.NewError(bus.ErrorMalformedInput, fmt.Sprintf("update %d has no chat", update.ID))
	}

	rule, ok := r.routes[Route{Kind: update.Kind, Key: update.Key()}]
	if !ok {
		return nil, nil
	}

	reply := rule(update)
	reply.ChatID = update.ChatID
	return &reply, nil
}

// Handle adapts Dispatch to channel.Handler.
func (r *Router) Handle(_ context.Context, update bus.Update) (*bus.Reply, error) {
	return r.Dispatch(update)
}

// Routes lists the routing table in a stable order.
func (r *Router) Routes() []Route {
	routes := make([]Route, 0, len(r.routes))
	for route := range r.routes {
		routes = append(routes, route)
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Kind != routes[j].Kind {
			return routes[i].Kind < routes[j].Kind
		}
		return routes[i].Key < routes[j].Key
	})

	return routes
}

func startReply(bus.Update) bus.Reply {
	return bus.Reply{
		Text:   welcomeText,
		Format: bus.FormatMarkdown,
		Rows: [][]bus.Button{
			{bus.LinkButton("🚀 Join Our Channel 🚀", channelURL)},
			{bus.LinkButton("🌐 Deyo's Website 🌐", websiteURL)},
			{bus.TagButton("🌐 Xynx's World 🌐", TagNoAction)},
			{bus.TagButton("💫 More Info 💫", TagMoreInfo)},
		},
	}
}

func helpReply(bus.Update) bus.Reply {
	return bus.Reply{Text: helpText, Format: bus.FormatMarkdown}
}

func pingReply(bus.Update) bus.Reply {
	return bus.Reply{Text: pongText, Format: bus.FormatPlain}
}

// echoReply embeds user text, so it stays plain to avoid markup injection.
func echoReply(update bus.Update) bus.Reply {
	return bus.Reply{Text: echoPrefix + update.Text, Format: bus.FormatPlain}
}

func moreInfoReply(bus.Update) bus.Reply {
	return bus.Reply{Text: commandListText, Format: bus.FormatMarkdown}
}

func noActionReply(bus.Update) bus.Reply {
	return bus.Reply{Text: noActionText, Format: bus.FormatPlain}
}
