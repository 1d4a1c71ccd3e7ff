package appointment

import (
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// State transitions possibilities:
//
//	confirmed → cancelled
//
// Bookings are confirmed immediately; rescheduling keeps the status.
type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID         string            `json:"id"`
	Department string            `json:"department"`
	Doctor     string            `json:"doctor"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	Reason     string            `json:"reason,omitempty"`
	Status     AppointmentStatus `json:"status"`
	BookedAt   time.Time         `json:"booked_at"`

	RescheduledAt      *time.Time `json:"rescheduled_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
}

// SameSlot reports whether both appointments occupy the same doctor slot.
func (a *Appointment) SameSlot(o *Appointment) bool {
	return a.Doctor == o.Doctor && a.Date == o.Date && a.Time == o.Time
}

// Holds reports whether the appointment still occupies its slot.
func (a *Appointment) Holds() bool {
	return a.Status == StatusConfirmed
}

func (a *Appointment) CanTransitionTo(newStatus AppointmentStatus) bool {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		StatusConfirmed: {StatusCancelled},
		StatusCancelled: {},
	}

	for _, s := range allowed[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

func (a *Appointment) Cancel(reason string, now time.Time) error {
	if !a.CanTransitionTo(StatusCancelled) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.CancellationReason = reason
	return nil
}

func (a *Appointment) Reschedule(date, clock string, now time.Time) error {
	if a.Status != StatusConfirmed {
		return ErrInvalidStatusTransition
	}
	a.Date = date
	a.Time = clock
	a.RescheduledAt = &now
	return nil
}

// ParseSlot validates date and clock and returns the slot start in loc.
func ParseSlot(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	tod, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return day.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute), nil
}

type BookAppointmentCommand struct {
	Department string
	Doctor     string
	Date       string
	Time       string
	Reason     string
}

type RescheduleCommand struct {
	Date string
	Time string
}

type CancelAppointmentCommand struct {
	Reason string
}
