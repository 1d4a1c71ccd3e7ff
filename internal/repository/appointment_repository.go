package repository

import (
	"context"
	"slices"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
	"go.uber.org/zap"
)

// AppointmentRepository keeps a session's appointments in that session's
// scope. Doctor slots are shared by every visitor, so each confirmed booking
// also holds a slot_<doctor>_<date>_<time> key in the portal scope.
type AppointmentRepository struct {
	items *store.Collection[appointment.Appointment]
	slots store.Store
	log   *zap.Logger
}

type slotHold struct {
	AppointmentID string `json:"appointment_id"`
}

func slotKey(a *appointment.Appointment) string {
	return prefixSlot + a.Doctor + "_" + a.Date + "_" + a.Time
}

// reserve claims a's slot for a. Holding it already is not a conflict.
func (r *AppointmentRepository) reserve(ctx context.Context, a *appointment.Appointment) error {
	return store.UpdateJSON(ctx, r.slots, slotKey(a), func(h *slotHold, _ bool) error {
		if h.AppointmentID != "" && h.AppointmentID != a.ID {
			return appointment.ErrAppointmentConflict
		}
		h.AppointmentID = a.ID
		return nil
	})
}

// release frees a's slot if a still holds it.
func (r *AppointmentRepository) release(ctx context.Context, a *appointment.Appointment) {
	err := store.UpdateJSON(ctx, r.slots, slotKey(a), func(h *slotHold, _ bool) error {
		if h.AppointmentID == a.ID {
			h.AppointmentID = ""
		}
		return nil
	})
	if err != nil {
		r.log.Error("failed to release appointment slot",
			zap.String("appointment_id", a.ID),
			zap.Error(err),
		)
	}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if a.Holds() {
		if err := r.reserve(ctx, a); err != nil {
			return err
		}
	}

	_, err := r.items.AppendWith(ctx, func(existing []appointment.Appointment) (appointment.Appointment, error) {
		if hasConflict(existing, a, "") {
			return appointment.Appointment{}, appointment.ErrAppointmentConflict
		}
		return *a, nil
	})
	if err != nil && a.Holds() {
		r.release(ctx, a)
	}
	return err
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*appointment.Appointment, error) {
	items, err := r.items.All(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(items, func(a appointment.Appointment) bool { return a.ID == id })
	if i < 0 {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &items[i], nil
}

func (r *AppointmentRepository) List(ctx context.Context) ([]*appointment.Appointment, error) {
	items, err := r.items.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*appointment.Appointment, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}

// Update applies fn to the appointment and rejects the result if it now
// clashes with another confirmed booking, in this session or any other.
func (r *AppointmentRepository) Update(ctx context.Context, id string, fn func(a *appointment.Appointment) error) (*appointment.Appointment, error) {
	before, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	preview := *before
	if err := fn(&preview); err != nil {
		return nil, err
	}
	claimed := preview.Holds() && !(before.Holds() && preview.SameSlot(before))
	if claimed {
		if err := r.reserve(ctx, &preview); err != nil {
			return nil, err
		}
	}

	updated, err := r.modify(ctx, id, fn)
	if err != nil {
		if claimed {
			r.release(ctx, &preview)
		}
		return nil, err
	}

	if claimed && !(updated.Holds() && updated.SameSlot(&preview)) {
		r.release(ctx, &preview)
	}
	if before.Holds() && !(updated.Holds() && updated.SameSlot(before)) {
		r.release(ctx, before)
	}
	return updated, nil
}

func (r *AppointmentRepository) modify(ctx context.Context, id string, fn func(a *appointment.Appointment) error) (*appointment.Appointment, error) {
	var updated appointment.Appointment
	err := r.items.Modify(ctx, func(items []appointment.Appointment) ([]appointment.Appointment, error) {
		i := slices.IndexFunc(items, func(a appointment.Appointment) bool { return a.ID == id })
		if i < 0 {
			return nil, appointment.ErrAppointmentNotFound
		}
		a := items[i]
		if err := fn(&a); err != nil {
			return nil, err
		}
		if hasConflict(items, &a, id) {
			return nil, appointment.ErrAppointmentConflict
		}
		items[i] = a
		updated = a
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func hasConflict(existing []appointment.Appointment, a *appointment.Appointment, skipID string) bool {
	if !a.Holds() {
		return false
	}
	return slices.ContainsFunc(existing, func(e appointment.Appointment) bool {
		return e.ID != skipID && e.Holds() && e.SameSlot(a)
	})
}
