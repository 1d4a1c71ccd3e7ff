package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentConflict     = errors.New("appointment time slot is already booked")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrScheduledInPast         = errors.New("cannot schedule appointment in the past")
	ErrInvalidDate             = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidTime             = errors.New("time must be formatted as HH:MM")
)
