package chat

import (
	"time"
)

type Sender string

const (
	SenderPatient Sender = "patient"
	SenderDoctor  Sender = "doctor"
)

// Greeting opens every conversation.
const Greeting = "Hello! How can I help you today?"

const DefaultDoctor = "Dr. Ahmed Hassan"

type Message struct {
	ID     string    `json:"id"`
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

type Conversation struct {
	ID        string    `json:"id"`
	Doctor    string    `json:"doctor"`
	StartedAt time.Time `json:"started_at"`
	Messages  []Message `json:"messages"`
}

func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// AwaitingReply reports whether the patient spoke last.
func (c *Conversation) AwaitingReply() bool {
	m, ok := c.LastMessage()
	return ok && m.Sender == SenderPatient
}

type StartConversationCommand struct {
	Doctor string
}

type SendMessageCommand struct {
	ConversationID string
	Text           string
}
