package service

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	Recent(ctx context.Context, limit int) ([]domain.AuditLog, error)
}

type AuditService struct {
	repo    AuditRepository
	metrics *metrics.Collector
	log     *zap.Logger
	entries chan *domain.AuditLog
	done    chan struct{}

	// mu guards closed; senders hold it shared so Shutdown never closes
	// entries under a send.
	mu     sync.RWMutex
	closed bool
}

const auditBufferSize = 10_000

func NewAuditService(repo AuditRepository, m *metrics.Collector, log *zap.Logger) *AuditService {
	return newAuditService(repo, m, log, auditBufferSize)
}

func newAuditService(repo AuditRepository, m *metrics.Collector, log *zap.Logger, buffer int) *AuditService {
	svc := &AuditService{
		repo:    repo,
		metrics: m,
		log:     log,
		entries: make(chan *domain.AuditLog, buffer),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// LogAsync enqueues an audit entry for async persistence.
// If the buffer is full, or the service has shut down, the entry is dropped
// and a warning is emitted.
func (s *AuditService) LogAsync(ctx context.Context, entry AuditEntry) {
	al := &domain.AuditLog{
		ID:           uuid.New(),
		OccurredAt:   time.Now().UTC(),
		SessionID:    entry.SessionID,
		UserEmail:    entry.UserEmail,
		IPAddress:    entry.IPAddress,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		RequestID:    entry.RequestID,
		Changes:      entry.Changes,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.drop(entry, "audit service stopped, dropping entry")
		return
	}
	select {
	case s.entries <- al:
	default:
		s.drop(entry, "audit log buffer full, dropping entry")
	}
}

func (s *AuditService) drop(entry AuditEntry, msg string) {
	s.metrics.AuditBufferDropped.Inc()
	s.log.Warn(msg,
		zap.String("action", string(entry.Action)),
		zap.String("resource", entry.ResourceType),
	)
}

const maxAuditPage = 500

// Recent returns up to limit of the newest persisted entries, oldest first.
// Only administrators may read the audit trail.
func (s *AuditService) Recent(ctx context.Context, role domain.Role, limit int) ([]domain.AuditLog, error) {
	if role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if limit <= 0 || limit > maxAuditPage {
		limit = maxAuditPage
	}
	return s.repo.Recent(ctx, limit)
}

// Shutdown stops accepting entries and waits for the worker to drain the
// buffer. Calling it more than once is safe.
func (s *AuditService) Shutdown() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("audit service shutdown timed out; some entries may be lost")
	}
}

func (s *AuditService) worker() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Error("failed to persist audit log", zap.Error(err))
		} else {
			s.metrics.AuditEntriesTotal.Inc()
		}
		cancel()
	}
}
