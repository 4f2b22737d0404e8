package model

// InboundKind discriminates inbound channel events.
type InboundKind string

const (
	InboundText    InboundKind = "text"
	InboundPhoto   InboundKind = "photo"
	InboundCommand InboundKind = "command"
)

// Command names understood by the bot.
const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandClear = "clear"
)

// Inbound is an event delivered by the channel adapter.
type Inbound struct {
	ChatID  int64
	Kind    InboundKind
	Text    string
	Image   []byte
	Command string
}

// InlineButton is a single URL button attached to a text reply.
type InlineButton struct {
	Label string
	URL   string
}

// Outbound is a reply to send back through the channel adapter. Exactly one
// of Text or PhotoURL is the payload; photo replies carry a caption instead
// of text.
type Outbound struct {
	Text     string
	PhotoURL string
	Caption  string
	Buttons  []InlineButton
}

// IsPhoto reports whether the event is a photo reply.
func (o Outbound) IsPhoto() bool {
	return o.PhotoURL != ""
}
