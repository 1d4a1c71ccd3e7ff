package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	mr "github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medical_record"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type MedicalRecordService struct {
	repos    func(sessionID string) mr.Repository
	auditSvc *AuditService
	log      *zap.Logger
	now      func() time.Time
}

func NewMedicalRecordService(repos func(sessionID string) mr.Repository, auditSvc *AuditService, log *zap.Logger) *MedicalRecordService {
	return &MedicalRecordService{repos: repos, auditSvc: auditSvc, log: log, now: time.Now}
}

// List returns the seeded check-up followed by the session's own records.
func (s *MedicalRecordService) List(ctx context.Context, caller Caller) ([]*mr.MedicalRecord, error) {
	stored, err := s.repos(caller.SessionID).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	s.auditSvc.LogAsync(ctx, caller.audit(domain.ActionRead, "medical_record", ""))
	return append([]*mr.MedicalRecord{mr.Seeded()}, stored...), nil
}

// Get finds one record by ID, the seeded check-up included.
func (s *MedicalRecordService) Get(ctx context.Context, caller Caller, id string) (*mr.MedicalRecord, error) {
	all, err := s.List(ctx, caller)
	if err != nil {
		return nil, err
	}
	rec, ok := lo.Find(all, func(r *mr.MedicalRecord) bool { return r.ID == id })
	if !ok {
		return nil, mr.ErrRecordNotFound
	}
	return rec, nil
}

func (s *MedicalRecordService) Add(ctx context.Context, caller Caller, cmd *mr.CreateRecordCommand) (_ *mr.MedicalRecord, err error) {
	ctx, span := startSpan(ctx, "MedicalRecordService.Add", caller)
	defer func() { endSpan(span, err) }()

	var errs fieldErrors
	if !cmd.Type.IsValid() {
		errs.add(mr.ErrInvalidRecordType.Error())
	}
	errs.require(cmd.Doctor, "doctor")
	errs.require(cmd.Diagnosis, "diagnosis")
	if cmd.Date != "" {
		if _, perr := time.Parse("2006-01-02", cmd.Date); perr != nil {
			errs.add("date must be formatted as YYYY-MM-DD")
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &mr.MedicalRecord{
		ID:        uuid.NewString(),
		Type:      cmd.Type,
		Date:      cmd.Date,
		Doctor:    strings.TrimSpace(cmd.Doctor),
		Diagnosis: strings.TrimSpace(cmd.Diagnosis),
		Notes:     strings.TrimSpace(cmd.Notes),
		CreatedAt: now,
	}
	if rec.Date == "" {
		rec.Date = now.Format("2006-01-02")
	}

	if err := s.repos(caller.SessionID).Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("appending record: %w", err)
	}

	s.auditSvc.LogAsync(ctx, caller.audit(domain.ActionCreate, "medical_record", rec.ID))
	return rec, nil
}
