package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/events"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"go.uber.org/zap"
)

// InteractionChecker looks drug pairs up in the interaction table.
type InteractionChecker interface {
	CheckInteractions(drugs []string) ([]medication.Interaction, medication.Severity)
}

// MedicationService keeps each session's medication list and runs
// interaction checks over it.
type MedicationService struct {
	lists    func(sessionID string) medication.ListRepository
	checks   func(sessionID string) medication.CheckRepository
	checker  InteractionChecker
	auditSvc *AuditService
	events   *eventSink
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
}

func NewMedicationService(
	lists func(sessionID string) medication.ListRepository,
	checks func(sessionID string) medication.CheckRepository,
	checker InteractionChecker,
	auditSvc *AuditService,
	pub events.Publisher,
	m *metrics.Collector,
	log *zap.Logger,
) *MedicationService {
	return &MedicationService{
		lists:    lists,
		checks:   checks,
		checker:  checker,
		auditSvc: auditSvc,
		events:   newEventSink(pub, m, log),
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// AddMedicationResult carries the updated list and, once it holds two or
// more medications, the check run over it.
type AddMedicationResult struct {
	Medications []string                `json:"medications"`
	Check       *medication.CheckResult `json:"check,omitempty"`
}

func (s *MedicationService) AddMedication(ctx context.Context, caller Caller, name string) (*AddMedicationResult, error) {
	name = medication.Normalize(name)
	if name == "" {
		return nil, medication.ErrMedicationRequired
	}

	list, err := s.lists(caller.SessionID).Add(ctx, name)
	if err != nil {
		if errors.Is(err, medication.ErrDuplicateMedication) {
			return nil, err
		}
		return nil, fmt.Errorf("adding medication: %w", err)
	}

	res := &AddMedicationResult{Medications: list}
	if len(list) >= 2 {
		check, err := s.Check(ctx, caller, list)
		if err != nil {
			return nil, err
		}
		res.Check = check
	}
	return res, nil
}

func (s *MedicationService) RemoveMedication(ctx context.Context, caller Caller, name string) error {
	return s.lists(caller.SessionID).Remove(ctx, medication.Normalize(name))
}

func (s *MedicationService) Medications(ctx context.Context, caller Caller) ([]string, error) {
	return s.lists(caller.SessionID).All(ctx)
}

func (s *MedicationService) ClearMedications(ctx context.Context, caller Caller) error {
	return s.lists(caller.SessionID).Clear(ctx)
}

// Check deduplicates drugs and looks every pair up. Fewer than two distinct
// drugs yield an empty, unsaved result.
func (s *MedicationService) Check(ctx context.Context, caller Caller, drugs []string) (_ *medication.CheckResult, err error) {
	ctx, span := startSpan(ctx, "MedicationService.Check", caller)
	defer func() { endSpan(span, err) }()

	unique := medication.Dedupe(drugs)
	res := &medication.CheckResult{
		Drugs:        unique,
		Interactions: []medication.Interaction{},
		RiskLevel:    medication.SeveritySafe,
		CheckedAt:    s.now().UTC(),
	}
	if len(unique) < 2 {
		return res, nil
	}

	res.Interactions, res.RiskLevel = s.checker.CheckInteractions(unique)

	if err := s.checks(caller.SessionID).Save(ctx, res); err != nil {
		s.log.Error("failed to save drug check", zap.Error(err))
		return nil, fmt.Errorf("saving drug check: %w", err)
	}

	s.metrics.DrugChecksTotal.WithLabelValues(string(res.RiskLevel)).Inc()
	s.auditSvc.LogAsync(ctx, caller.audit(domain.ActionCreate, "drug_check", res.ID))
	s.events.emit(ctx, events.DrugChecked, caller.SessionID, map[string]any{
		"check_id":     res.ID,
		"drugs":        res.Drugs,
		"risk_level":   res.RiskLevel,
		"interactions": len(res.Interactions),
	})

	return res, nil
}

// History returns the session's saved checks, newest first.
func (s *MedicationService) History(ctx context.Context, caller Caller) ([]*medication.CheckResult, error) {
	return s.checks(caller.SessionID).History(ctx)
}
