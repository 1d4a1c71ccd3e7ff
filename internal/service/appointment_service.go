package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/events"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AppointmentService struct {
	repos    func(sessionID string) appointment.Repository
	auditSvc *AuditService
	events   *eventSink
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
	loc      *time.Location
}

func NewAppointmentService(
	repos func(sessionID string) appointment.Repository,
	auditSvc *AuditService,
	pub events.Publisher,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repos:    repos,
		auditSvc: auditSvc,
		events:   newEventSink(pub, m, log),
		metrics:  m,
		log:      log,
		now:      time.Now,
		loc:      time.UTC,
	}
}

func (s *AppointmentService) Book(ctx context.Context, caller Caller, cmd *appointment.BookAppointmentCommand) (_ *appointment.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Book", caller)
	defer func() { endSpan(span, err) }()

	// -------- Input Validation -----------
	var errs fieldErrors
	errs.require(cmd.Department, "department")
	errs.require(cmd.Doctor, "doctor")
	errs.require(cmd.Date, "date")
	errs.require(cmd.Time, "time")
	if err := errs.err(); err != nil {
		return nil, err
	}
	if err := s.checkSlot(cmd.Date, cmd.Time); err != nil {
		return nil, err
	}

	a := &appointment.Appointment{
		ID:         uuid.NewString(),
		Department: strings.TrimSpace(cmd.Department),
		Doctor:     strings.TrimSpace(cmd.Doctor),
		Date:       cmd.Date,
		Time:       cmd.Time,
		Reason:     strings.TrimSpace(cmd.Reason),
		Status:     appointment.StatusConfirmed,
		BookedAt:   s.now().UTC(),
	}

	if err := s.repos(caller.SessionID).Create(ctx, a); err != nil {
		if errors.Is(err, appointment.ErrAppointmentConflict) {
			return nil, err
		}
		s.log.Error("failed to book appointment", zap.Error(err))
		return nil, fmt.Errorf("booking appointment: %w", err)
	}

	s.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	s.auditSvc.LogAsync(ctx, caller.audit(domain.ActionCreate, "appointment", a.ID))
	s.events.emit(ctx, events.AppointmentBooked, caller.SessionID, a)

	return a, nil
}

func (s *AppointmentService) List(ctx context.Context, caller Caller) ([]*appointment.Appointment, error) {
	return s.repos(caller.SessionID).List(ctx)
}

func (s *AppointmentService) Get(ctx context.Context, caller Caller, id string) (*appointment.Appointment, error) {
	return s.repos(caller.SessionID).GetByID(ctx, id)
}

func (s *AppointmentService) Cancel(ctx context.Context, caller Caller, id string, cmd *appointment.CancelAppointmentCommand) (_ *appointment.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Cancel", caller)
	defer func() { endSpan(span, err) }()

	now := s.now().UTC()
	reason := strings.TrimSpace(cmd.Reason)
	a, err := s.repos(caller.SessionID).Update(ctx, id, func(a *appointment.Appointment) error {
		return a.Cancel(reason, now)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	entry := caller.audit(domain.ActionUpdate, "appointment", id)
	entry.Changes = fmt.Sprintf(`{"status":%q,"reason":%q}`, a.Status, reason)
	s.auditSvc.LogAsync(ctx, entry)
	s.events.emit(ctx, events.AppointmentCancelled, caller.SessionID, a)

	return a, nil
}

func (s *AppointmentService) Reschedule(ctx context.Context, caller Caller, id string, cmd *appointment.RescheduleCommand) (_ *appointment.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Reschedule", caller)
	defer func() { endSpan(span, err) }()

	var errs fieldErrors
	errs.require(cmd.Date, "date")
	errs.require(cmd.Time, "time")
	if err := errs.err(); err != nil {
		return nil, err
	}
	if err := s.checkSlot(cmd.Date, cmd.Time); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a, err := s.repos(caller.SessionID).Update(ctx, id, func(a *appointment.Appointment) error {
		return a.Reschedule(cmd.Date, cmd.Time, now)
	})
	if err != nil {
		return nil, err
	}

	entry := caller.audit(domain.ActionUpdate, "appointment", id)
	entry.Changes = fmt.Sprintf(`{"date":%q,"time":%q}`, a.Date, a.Time)
	s.auditSvc.LogAsync(ctx, entry)
	s.events.emit(ctx, events.AppointmentMoved, caller.SessionID, a)

	return a, nil
}

func (s *AppointmentService) checkSlot(date, clock string) error {
	at, err := appointment.ParseSlot(date, clock, s.loc)
	if err != nil {
		return err
	}
	if at.Before(s.now().In(s.loc)) {
		return appointment.ErrScheduledInPast
	}
	return nil
}
