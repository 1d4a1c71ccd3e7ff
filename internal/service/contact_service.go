package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/contact"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/events"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"go.uber.org/zap"
)

type ContactService struct {
	repo   contact.Repository
	events *eventSink
	log    *zap.Logger
	now    func() time.Time
}

func NewContactService(repo contact.Repository, pub events.Publisher, m *metrics.Collector, log *zap.Logger) *ContactService {
	return &ContactService{repo: repo, events: newEventSink(pub, m, log), log: log, now: time.Now}
}

func (s *ContactService) Submit(ctx context.Context, caller Caller, cmd *contact.SubmitCommand) (*contact.Message, error) {
	var errs fieldErrors
	errs.require(cmd.Name, "name")
	errs.require(cmd.Email, "email")
	errs.require(cmd.Message, "message")
	if strings.TrimSpace(cmd.Email) != "" {
		if _, err := mail.ParseAddress(cmd.Email); err != nil {
			errs.add("email is invalid")
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	m := &contact.Message{
		Name:    strings.TrimSpace(cmd.Name),
		Email:   strings.ToLower(strings.TrimSpace(cmd.Email)),
		Phone:   strings.TrimSpace(cmd.Phone),
		Subject: strings.TrimSpace(cmd.Subject),
		Message: strings.TrimSpace(cmd.Message),
		SentAt:  now,
	}
	if err := s.repo.Create(ctx, m, now); err != nil {
		s.log.Error("failed to store contact message", zap.Error(err))
		return nil, fmt.Errorf("storing contact message: %w", err)
	}

	s.events.emit(ctx, events.ContactReceived, caller.SessionID, map[string]string{"message_id": m.ID})
	return m, nil
}
