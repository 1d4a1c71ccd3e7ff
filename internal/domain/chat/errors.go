package chat

import "errors"

var (
	ErrEmptyMessage         = errors.New("message text is required")
	ErrConversationNotFound = errors.New("conversation not found")
)
