package telegram

import (
	"bytes"
	"encoding/json"
	"strings"

	"zcsbot/pkg/bus"

	"github.com/mymmrac/telego"
)

const commandMarker = "/"

// allowedUpdates limits delivery to the update types the router understands.
var allowedUpdates = []string{"message", "edited_message", "callback_query"}

// ParseUpdate decodes one raw Bot API update and classifies it.
func ParseUpdate(raw []byte) (bus.Update, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return bus.Update{}, bus.NewError(bus.ErrorMissingBody, "empty update payload")
	}

	var update telego.Update
	if err := json.Unmarshal(trimmed, &update); err != nil {
		return bus.Update{}, bus.WrapError(bus.ErrorMalformedInput, "decode update", err)
	}

	return Classify(update), nil
}

// Classify maps a Bot API update onto the bot's update model.
//
// Callback queries win over messages. Edited messages are treated like new ones.
// Messages without text classify as bus.KindOther.
func Classify(update telego.Update) bus.Update {
	out := bus.Update{ID: update.UpdateID, Kind: bus.KindOther}

	if query := update.CallbackQuery; query != nil {
		out.Kind = bus.KindCallback
		out.SenderID = query.From.ID
		out.CallbackID = query.ID
		out.CallbackData = query.Data
		if query.Message != nil {
			out.ChatID = query.Message.GetChat().ID
		}
		return out
	}

	message := update.Message
	if message == nil {
		message = update.EditedMessage
	}
	if message == nil {
		return out
	}

	out.ChatID = message.Chat.ID
	if message.From != nil {
		out.SenderID = message.From.ID
	}
	out.Text = message.Text

	if strings.TrimSpace(message.Text) == "" {
		return out
	}

	if name, args, ok := parseCommand(message.Text); ok {
		out.Kind = bus.KindCommand
		out.Command = name
		out.Args = args
		return out
	}

	out.Kind = bus.KindText
	return out
}

// parseCommand splits "/name@bot arg..." into its name and arguments.
//
// Exactly one leading marker is stripped; matching stays case-sensitive.
func parseCommand(text string) (string, []string, bool) {
	if !strings.HasPrefix(text, commandMarker) {
		return "", nil, false
	}

	fields := strings.Fields(text)
	name := strings.TrimPrefix(fields[0], commandMarker)
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}

	var args []string
	if len(fields) > 1 {
		args = fields[1:]
	}

	return name, args, true
}
