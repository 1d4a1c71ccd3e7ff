package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/dermatology"
	mr "github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medical_record"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/events"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/media"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SkinAnalyzer interface {
	AnalyzeSkin() dermatology.Finding
	ProgressStep() int
}

const (
	analysisTaskPrefix = "analysis/"
	analysisDoctor     = "AI Dermatology"
)

type DermatologyService struct {
	analyses func(sessionID string) dermatology.Repository
	records  func(sessionID string) mr.Repository
	images   media.Store
	tasks    Tasks
	analyzer SkinAnalyzer
	interval time.Duration
	maxBytes int64
	auditSvc *AuditService
	events   *eventSink
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
}

type DermatologyConfig struct {
	ProgressInterval time.Duration
	MaxUploadBytes   int64
}

func NewDermatologyService(
	analyses func(sessionID string) dermatology.Repository,
	records func(sessionID string) mr.Repository,
	images media.Store,
	tasks Tasks,
	analyzer SkinAnalyzer,
	cfg DermatologyConfig,
	auditSvc *AuditService,
	pub events.Publisher,
	m *metrics.Collector,
	log *zap.Logger,
) *DermatologyService {
	return &DermatologyService{
		analyses: analyses,
		records:  records,
		images:   images,
		tasks:    tasks,
		analyzer: analyzer,
		interval: cfg.ProgressInterval,
		maxBytes: cfg.MaxUploadBytes,
		auditSvc: auditSvc,
		events:   newEventSink(pub, m, log),
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Submit stores the image and starts a new analysis. Any analysis of the
// session that is still running is cancelled first.
func (s *DermatologyService) Submit(ctx context.Context, caller Caller, cmd *dermatology.SubmitImageCommand) (_ *dermatology.Analysis, err error) {
	ctx, span := startSpan(ctx, "DermatologyService.Submit", caller)
	defer func() { endSpan(span, err) }()

	if !dermatology.IsImage(cmd.ContentType) {
		return nil, dermatology.ErrNotAnImage
	}
	if len(cmd.Data) == 0 {
		return nil, dermatology.ErrEmptyImage
	}
	if s.maxBytes > 0 && int64(len(cmd.Data)) > s.maxBytes {
		return nil, dermatology.ErrImageTooLarge
	}

	if err := s.cancelInFlight(ctx, caller.SessionID); err != nil {
		return nil, err
	}

	imageKey := fmt.Sprintf("dermatology/%s/%s", caller.SessionID, uuid.NewString())
	err = s.images.Put(ctx, media.Object{
		Key:         imageKey,
		ContentType: strings.ToLower(strings.TrimSpace(cmd.ContentType)),
		Data:        cmd.Data,
	})
	if err != nil {
		s.log.Error("failed to store skin image", zap.Error(err))
		return nil, fmt.Errorf("storing image: %w", err)
	}

	now := s.now().UTC()
	a := &dermatology.Analysis{
		Status:      dermatology.StatusAnalyzing,
		ImageKey:    imageKey,
		FileName:    cmd.FileName,
		ContentType: cmd.ContentType,
		SizeBytes:   int64(len(cmd.Data)),
		StartedAt:   now,
	}
	repo := s.analyses(caller.SessionID)
	if err := repo.Create(ctx, a, now); err != nil {
		return nil, fmt.Errorf("creating analysis: %w", err)
	}

	sessionID, id := caller.SessionID, a.ID
	err = s.tasks.Every(sessionID, analysisTaskPrefix+id, s.interval, func(taskCtx context.Context) bool {
		return s.tick(taskCtx, sessionID, id)
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling analysis: %w", err)
	}

	s.metrics.AnalysesTotal.WithLabelValues("started").Inc()
	s.auditSvc.LogAsync(ctx, caller.audit(domain.ActionCreate, "dermatology_analysis", a.ID))
	return a, nil
}

// tick advances one analysis and reports whether it should keep running.
func (s *DermatologyService) tick(ctx context.Context, sessionID, id string) bool {
	step := s.analyzer.ProgressStep()
	finding := s.analyzer.AnalyzeSkin()
	now := s.now().UTC()

	a, err := s.analyses(sessionID).Update(ctx, id, func(a *dermatology.Analysis) error {
		done, err := a.Advance(step)
		if err != nil || !done {
			return err
		}
		return a.Complete(finding, now)
	})
	if err != nil {
		if !errors.Is(err, dermatology.ErrAnalysisFinished) && ctx.Err() == nil {
			s.log.Error("failed to advance analysis",
				zap.String("session_id", sessionID),
				zap.String("analysis_id", id),
				zap.Error(err),
			)
		}
		return false
	}
	if a.Status != dermatology.StatusCompleted {
		return true
	}

	s.complete(ctx, sessionID, a)
	return false
}

// complete files the finding. The analysis is already marked completed, so a
// cancellation arriving now must not lose the record.
func (s *DermatologyService) complete(ctx context.Context, sessionID string, a *dermatology.Analysis) {
	ctx = context.WithoutCancel(ctx)
	f := a.Finding
	rec := &mr.MedicalRecord{
		ID:        uuid.NewString(),
		Type:      mr.TypeSkinAnalysis,
		Date:      a.CompletedAt.Format("2006-01-02"),
		Doctor:    analysisDoctor,
		Diagnosis: fmt.Sprintf("%s (%s)", f.Condition, f.Severity),
		Notes: fmt.Sprintf("Confidence %.0f%%. %s.",
			f.Confidence*100, strings.Join(f.Recommendations, ". ")),
		Attachments: []mr.Attachment{{
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Key:         a.ImageKey,
			SizeBytes:   a.SizeBytes,
			UploadedAt:  a.StartedAt,
		}},
		CreatedAt: *a.CompletedAt,
	}
	if err := s.records(sessionID).Append(ctx, rec); err != nil {
		s.log.Error("failed to record skin analysis",
			zap.String("analysis_id", a.ID),
			zap.Error(err),
		)
	}

	s.metrics.AnalysesTotal.WithLabelValues("completed").Inc()
	s.events.emit(ctx, events.DermatologyCompleted, sessionID, a)
	s.log.Info("skin analysis completed",
		zap.String("session_id", sessionID),
		zap.String("analysis_id", a.ID),
		zap.String("condition", string(f.Condition)),
	)
}

func (s *DermatologyService) cancelInFlight(ctx context.Context, sessionID string) error {
	s.tasks.CancelPrefix(sessionID, analysisTaskPrefix)

	all, err := s.analyses(sessionID).List(ctx)
	if err != nil {
		return fmt.Errorf("listing analyses: %w", err)
	}
	for _, a := range all {
		if !a.InFlight() {
			continue
		}
		if _, err := s.cancel(ctx, sessionID, a.ID); err != nil && !errors.Is(err, dermatology.ErrAnalysisFinished) {
			return err
		}
	}
	return nil
}

func (s *DermatologyService) cancel(ctx context.Context, sessionID, id string) (*dermatology.Analysis, error) {
	s.tasks.Cancel(sessionID, analysisTaskPrefix+id)

	now := s.now().UTC()
	a, err := s.analyses(sessionID).Update(ctx, id, func(a *dermatology.Analysis) error {
		return a.Cancel(now)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AnalysesTotal.WithLabelValues("cancelled").Inc()
	return a, nil
}

// Cancel stops a running analysis.
func (s *DermatologyService) Cancel(ctx context.Context, caller Caller, id string) (*dermatology.Analysis, error) {
	a, err := s.cancel(ctx, caller.SessionID, id)
	if err != nil {
		return nil, err
	}
	s.auditSvc.LogAsync(ctx, caller.audit(domain.ActionUpdate, "dermatology_analysis", id))
	return a, nil
}

func (s *DermatologyService) Get(ctx context.Context, caller Caller, id string) (*dermatology.Analysis, error) {
	return s.analyses(caller.SessionID).Get(ctx, id)
}

func (s *DermatologyService) List(ctx context.Context, caller Caller) ([]*dermatology.Analysis, error) {
	return s.analyses(caller.SessionID).List(ctx)
}
