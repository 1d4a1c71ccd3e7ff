package contact

import (
	"context"
	"time"
)

type Message struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone,omitempty"`
	Subject string    `json:"subject,omitempty"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

type Repository interface {
	// Create stores m under a fresh contact_<ts> key derived from now and sets m.ID.
	Create(ctx context.Context, m *Message, now time.Time) error
	Count(ctx context.Context) (int, error)
}

type SubmitCommand struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}
