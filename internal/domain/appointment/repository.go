package appointment

import "context"

type Repository interface {
	// Create appends a, failing with ErrAppointmentConflict when another
	// confirmed appointment holds the same doctor slot.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context) ([]*Appointment, error)

	// Update loads the appointment, applies fn and writes it back atomically.
	Update(ctx context.Context, id string, fn func(a *Appointment) error) (*Appointment, error)
}
