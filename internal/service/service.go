// Package service holds the portal's application services. Handlers call
// them with a Caller describing the browser session behind the request.
package service

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/events"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Caller identifies who is behind a request.
type Caller struct {
	SessionID string
	UserEmail string
	IP        string
	RequestID string
}

func (c Caller) audit(action domain.AuditAction, resourceType, resourceID string) AuditEntry {
	return AuditEntry{
		SessionID:    c.SessionID,
		UserEmail:    c.UserEmail,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    c.IP,
		RequestID:    c.RequestID,
	}
}

var tr = tracer.Tracer("service")

func startSpan(ctx context.Context, name string, caller Caller) (context.Context, trace.Span) {
	return tr.Start(ctx, name, trace.WithAttributes(
		attribute.String("session.id", caller.SessionID),
		attribute.String("request.id", caller.RequestID),
	))
}

// endSpan records err on span before ending it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// eventSink publishes domain events without letting a broker outage fail
// the operation that produced them.
type eventSink struct {
	pub     events.Publisher
	metrics *metrics.Collector
	log     *zap.Logger
}

func newEventSink(pub events.Publisher, m *metrics.Collector, log *zap.Logger) *eventSink {
	return &eventSink{pub: pub, metrics: m, log: log}
}

const publishTimeout = 5 * time.Second

func (s *eventSink) emit(ctx context.Context, eventType, sessionID string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.pub.Publish(ctx, events.New(eventType, sessionID, payload)); err != nil {
		s.metrics.EventsTotal.WithLabelValues(eventType, "failed").Inc()
		s.log.Warn("failed to publish event",
			zap.String("type", eventType),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}
	s.metrics.EventsTotal.WithLabelValues(eventType, "published").Inc()
}
