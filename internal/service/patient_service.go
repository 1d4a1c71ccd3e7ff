package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/events"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type PatientService struct {
	repo     patient.Repository
	auditSvc *AuditService
	events   *eventSink
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
}

func NewPatientService(repo patient.Repository, auditSvc *AuditService, pub events.Publisher, m *metrics.Collector, log *zap.Logger) *PatientService {
	return &PatientService{
		repo:     repo,
		auditSvc: auditSvc,
		events:   newEventSink(pub, m, log),
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

func (s *PatientService) Register(ctx context.Context, caller Caller, cmd *patient.RegisterPatientCommand) (_ *patient.Patient, err error) {
	ctx, span := startSpan(ctx, "PatientService.Register", caller)
	defer func() { endSpan(span, err) }()

	if err := validateRegisterPatient(cmd); err != nil {
		return nil, err
	}

	p := &patient.Patient{
		Name:           strings.TrimSpace(cmd.Name),
		Age:            cmd.Age,
		Sex:            cmd.Sex,
		ChiefComplaint: strings.TrimSpace(cmd.ChiefComplaint),
		Phone:          strings.TrimSpace(cmd.Phone),
	}

	if err := s.repo.Create(ctx, p, s.now().UTC()); err != nil {
		s.log.Error("failed to register patient", zap.Error(err))
		return nil, fmt.Errorf("registering patient: %w", err)
	}

	s.metrics.PatientsRegisteredTotal.Inc()
	s.auditSvc.LogAsync(ctx, caller.audit(domain.ActionCreate, "patient", p.ID))
	s.events.emit(ctx, events.PatientRegistered, caller.SessionID, map[string]string{"patient_id": p.ID})

	s.log.Info("patient registered", zap.String("patient_id", p.ID))
	return p, nil
}

// List returns every patient sorted by name.
func (s *PatientService) List(ctx context.Context) ([]*patient.Patient, error) {
	return s.Search(ctx, patient.SearchQuery{Order: patient.OrderByName})
}

func (s *PatientService) ListInRegistrationOrder(ctx context.Context) ([]*patient.Patient, error) {
	return s.Search(ctx, patient.SearchQuery{Order: patient.OrderByRegistration})
}

// Search filters patients whose name or ID contains q.Query, case-insensitively.
// Results are sorted by name unless registration order is requested.
func (s *PatientService) Search(ctx context.Context, q patient.SearchQuery) ([]*patient.Patient, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading patients: %w", err)
	}

	found := lo.Filter(all, func(p *patient.Patient, _ int) bool { return p.Matches(q.Query) })
	if q.Order != patient.OrderByRegistration {
		patient.SortByName(found)
	}
	return found, nil
}

func (s *PatientService) Get(ctx context.Context, id string) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func validateRegisterPatient(cmd *patient.RegisterPatientCommand) error {
	var errs fieldErrors

	errs.require(cmd.Name, "name")
	if cmd.Age < 0 || cmd.Age > patient.MaxAge {
		errs.add(fmt.Sprintf("age must be between 0 and %d", patient.MaxAge))
	}
	if !cmd.Sex.IsValid() {
		errs.add("sex must be one of male, female, other")
	}

	return errs.err()
}
