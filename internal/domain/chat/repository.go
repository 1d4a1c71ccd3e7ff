package chat

import (
	"context"
	"time"
)

type Repository interface {
	// Create stores c under a fresh chat_<ts> key derived from now and sets c.ID.
	Create(ctx context.Context, c *Conversation, now time.Time) error
	Get(ctx context.Context, id string) (*Conversation, error)
	List(ctx context.Context) ([]*Conversation, error)
	AppendMessage(ctx context.Context, id string, m Message) (*Conversation, error)
}
