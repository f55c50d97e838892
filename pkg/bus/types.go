package bus

// Kind classifies one inbound update for routing.
type Kind int

const (
	KindOther Kind = iota
	KindCommand
	KindText
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindCallback:
		return "callback"
	default:
		return "other"
	}
}

// Update is one inbound platform event, already classified.
//
// Command and Args are only set for KindCommand. CallbackID and CallbackData
// are only set for KindCallback.
type Update struct {
	ID           int      `json:"update_id"`
	Kind         Kind     `json:"kind"`
	ChatID       int64    `json:"chat_id"`
	SenderID     int64    `json:"sender_id,omitempty"`
	Command      string   `json:"command,omitempty"`
	Args         []string `json:"args,omitempty"`
	Text         string   `json:"text,omitempty"`
	CallbackID   string   `json:"callback_id,omitempty"`
	CallbackData string   `json:"callback_data,omitempty"`
}

// Key returns the routing key of the update: the command name, the callback tag, or "".
func (u Update) Key() string {
	switch u.Kind {
	case KindCommand:
		return u.Command
	case KindCallback:
		return u.CallbackData
	default:
		return ""
	}
}

// Format selects how the platform renders reply text.
type Format int

const (
	FormatPlain Format = iota
	FormatMarkdown
)

func (f Format) String() string {
	if f == FormatMarkdown {
		return "markdown"
	}
	return "plain"
}

// Button is one inline button. Exactly one of URL or Tag is set.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// LinkButton opens url when pressed.
func LinkButton(label string, url string) Button {
	return Button{Label: label, URL: url}
}

// TagButton sends tag back as callback data when pressed.
func TagButton(label string, tag string) Button {
	return Button{Label: label, Tag: tag}
}

// Reply describes one outbound message addressed to a chat.
type Reply struct {
	ChatID int64      `json:"chat_id"`
	Text   string     `json:"text"`
	Format Format     `json:"format"`
	Rows   [][]Button `json:"rows,omitempty"`
}
