package domain

type ChatSender string

const (
	SenderGuest     ChatSender = "guest"
	SenderAssistant ChatSender = "assistant"
)

// ChatMessage lives only for the duration of one check-in session. The
// transcript is append-only and never persisted.
type ChatMessage struct {
	Sender ChatSender `json:"sender"`
	Text   string     `json:"text"`
}
