package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/chat"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/events"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tasks is the scheduler surface the services need.
type Tasks interface {
	After(group, name string, d time.Duration, fn func(ctx context.Context)) error
	Every(group, name string, interval time.Duration, fn func(ctx context.Context) bool) error
	Cancel(group, name string) bool
	CancelPrefix(group, prefix string) int
	CancelGroup(group string) int
	Pending(group string) int
}

type ReplyGenerator interface {
	ChatReply() string
}

const replyTaskPrefix = "reply/"

type ChatService struct {
	repos      func(sessionID string) chat.Repository
	tasks      Tasks
	replies    ReplyGenerator
	replyDelay time.Duration
	events     *eventSink
	metrics    *metrics.Collector
	log        *zap.Logger
	now        func() time.Time
}

func NewChatService(
	repos func(sessionID string) chat.Repository,
	tasks Tasks,
	replies ReplyGenerator,
	replyDelay time.Duration,
	pub events.Publisher,
	m *metrics.Collector,
	log *zap.Logger,
) *ChatService {
	return &ChatService{
		repos:      repos,
		tasks:      tasks,
		replies:    replies,
		replyDelay: replyDelay,
		events:     newEventSink(pub, m, log),
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

// StartConversation opens a conversation with the doctor's greeting. Replies
// still pending in the session's other conversations are dropped.
func (s *ChatService) StartConversation(ctx context.Context, caller Caller, cmd *chat.StartConversationCommand) (_ *chat.Conversation, err error) {
	ctx, span := startSpan(ctx, "ChatService.StartConversation", caller)
	defer func() { endSpan(span, err) }()

	if n := s.tasks.CancelPrefix(caller.SessionID, replyTaskPrefix); n > 0 {
		s.log.Debug("dropped pending chat replies", zap.String("session_id", caller.SessionID), zap.Int("count", n))
	}

	doctor := strings.TrimSpace(cmd.Doctor)
	if doctor == "" {
		doctor = chat.DefaultDoctor
	}
	now := s.now().UTC()
	c := &chat.Conversation{
		Doctor:    doctor,
		StartedAt: now,
		Messages: []chat.Message{{
			ID:     uuid.NewString(),
			Sender: chat.SenderDoctor,
			Text:   chat.Greeting,
			SentAt: now,
		}},
	}

	if err := s.repos(caller.SessionID).Create(ctx, c, now); err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	return c, nil
}

// Send appends the patient's message and schedules the doctor's reply. A
// newer message replaces a reply that has not been delivered yet.
func (s *ChatService) Send(ctx context.Context, caller Caller, cmd *chat.SendMessageCommand) (_ *chat.Conversation, err error) {
	ctx, span := startSpan(ctx, "ChatService.Send", caller)
	defer func() { endSpan(span, err) }()

	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return nil, chat.ErrEmptyMessage
	}

	repo := s.repos(caller.SessionID)
	c, err := repo.AppendMessage(ctx, cmd.ConversationID, chat.Message{
		ID:     uuid.NewString(),
		Sender: chat.SenderPatient,
		Text:   text,
		SentAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("appending message: %w", err)
	}

	sessionID, convID := caller.SessionID, c.ID
	err = s.tasks.After(sessionID, replyTaskPrefix+convID, s.replyDelay, func(taskCtx context.Context) {
		s.deliverReply(taskCtx, repo, sessionID, convID)
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling reply: %w", err)
	}
	return c, nil
}

func (s *ChatService) deliverReply(ctx context.Context, repo chat.Repository, sessionID, convID string) {
	_, err := repo.AppendMessage(ctx, convID, chat.Message{
		ID:     uuid.NewString(),
		Sender: chat.SenderDoctor,
		Text:   s.replies.ChatReply(),
		SentAt: s.now().UTC(),
	})
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("failed to deliver chat reply",
				zap.String("session_id", sessionID),
				zap.String("conversation_id", convID),
				zap.Error(err),
			)
		}
		return
	}
	s.metrics.ChatRepliesTotal.Inc()
	s.events.emit(ctx, events.ChatReplied, sessionID, map[string]string{"conversation_id": convID})
}

func (s *ChatService) Conversation(ctx context.Context, caller Caller, id string) (*chat.Conversation, error) {
	return s.repos(caller.SessionID).Get(ctx, id)
}

func (s *ChatService) Conversations(ctx context.Context, caller Caller) ([]*chat.Conversation, error) {
	return s.repos(caller.SessionID).List(ctx)
}
