// Package events publishes portal domain events. Publishing is best-effort:
// callers log failures and carry on.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	PatientRegistered    = "patient.registered"
	AppointmentBooked    = "appointment.booked"
	AppointmentCancelled = "appointment.cancelled"
	AppointmentMoved     = "appointment.rescheduled"
	DrugChecked          = "drug.checked"
	ChatReplied          = "chat.replied"
	DermatologyCompleted = "dermatology.completed"
	ContactReceived      = "contact.received"
	UserRegistered       = "user.registered"
	UserLoggedIn         = "user.logged_in"
	UserLoggedOut        = "user.logged_out"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	SessionID  string    `json:"session_id,omitempty"`
	Payload    any       `json:"payload,omitempty"`
}

func New(eventType, sessionID string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		SessionID:  sessionID,
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}
