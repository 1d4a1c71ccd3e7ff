package repository

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/chat"
)

type ConversationRepository struct {
	docs *timestamped[chat.Conversation]
}

func (r *ConversationRepository) Create(ctx context.Context, c *chat.Conversation, now time.Time) error {
	id, err := r.docs.create(ctx, now, func(id string) *chat.Conversation {
		c.ID = id
		return c
	})
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *ConversationRepository) Get(ctx context.Context, id string) (*chat.Conversation, error) {
	c, err := r.docs.get(ctx, id)
	return c, translate(err, chat.ErrConversationNotFound)
}

func (r *ConversationRepository) List(ctx context.Context) ([]*chat.Conversation, error) {
	return r.docs.list(ctx)
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, id string, m chat.Message) (*chat.Conversation, error) {
	c, err := r.docs.update(ctx, id, func(c *chat.Conversation) error {
		c.Messages = append(c.Messages, m)
		return nil
	})
	return c, translate(err, chat.ErrConversationNotFound)
}
