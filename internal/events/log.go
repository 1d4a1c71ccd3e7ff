package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher writes events to the service log.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events")}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.Info("domain event",
		zap.String("event_id", e.ID),
		zap.String("type", e.Type),
		zap.String("session_id", e.SessionID),
		zap.Any("payload", e.Payload),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
