package bot

// EventKind classifies an incoming transport event.
type EventKind string

const (
	EventCommand  EventKind = "command"
	EventCallback EventKind = "callback"
	EventText     EventKind = "text"
	EventVoice    EventKind = "voice"
)

// Event is one incoming update from the chat transport, already stripped of
// transport framing. The router does not know how it was delivered.
type Event struct {
	ChatKey   string    `json:"chat_key"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	Kind      EventKind `json:"kind"`
	Command   string    `json:"command"`
	Action    string    `json:"action"`
	Text      string    `json:"text"`
	VoiceURL  string    `json:"voice_url"`
}

// Reply is one outgoing message. The transport decides how to render the
// keyboard.
type Reply struct {
	Text     string    `json:"text"`
	Keyboard *Keyboard `json:"keyboard,omitempty"`
}

func reply(text string) Reply {
	return Reply{Text: text}
}

func replyWithKeyboard(text string, kb *Keyboard) Reply {
	return Reply{Text: text, Keyboard: kb}
}
