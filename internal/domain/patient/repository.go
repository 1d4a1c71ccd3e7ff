package patient

import (
	"context"
	"time"
)

type Repository interface {
	// Create assigns the next free ID for registeredAt and appends the patient.
	Create(ctx context.Context, p *Patient, registeredAt time.Time) error

	// All returns every patient in registration order.
	All(ctx context.Context) ([]*Patient, error)

	// GetByID returns ErrPatientNotFound if no patient has the ID.
	GetByID(ctx context.Context, id string) (*Patient, error)

	Count(ctx context.Context) (int, error)
}
