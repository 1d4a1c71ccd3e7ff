package service

import (
	"context"
	"errors"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"go.uber.org/zap"
)

// SessionService tears a browser session down: pending chat replies and
// running analyses are cancelled and the login marker is cleared.
type SessionService struct {
	tasks Tasks
	auth  *AuthService
	log   *zap.Logger
}

func NewSessionService(tasks Tasks, auth *AuthService, log *zap.Logger) *SessionService {
	return &SessionService{tasks: tasks, auth: auth, log: log}
}

type SessionInfo struct {
	SessionID     string `json:"session_id"`
	Authenticated bool   `json:"authenticated"`
	HealthID      string `json:"health_id,omitempty"`
	PendingTasks  int    `json:"pending_tasks"`
}

func (s *SessionService) Info(ctx context.Context, caller Caller) (*SessionInfo, error) {
	healthID, err := s.auth.HealthID(ctx, caller)
	if err != nil {
		return nil, err
	}
	_, err = s.auth.CurrentUser(ctx, caller)
	if err != nil && !errors.Is(err, domain.ErrAnonymous) {
		return nil, err
	}
	return &SessionInfo{
		SessionID:     caller.SessionID,
		Authenticated: err == nil,
		HealthID:      healthID,
		PendingTasks:  s.tasks.Pending(caller.SessionID),
	}, nil
}

func (s *SessionService) End(ctx context.Context, caller Caller) error {
	if n := s.tasks.CancelGroup(caller.SessionID); n > 0 {
		s.log.Info("cancelled session tasks",
			zap.String("session_id", caller.SessionID),
			zap.Int("count", n),
		)
	}
	return s.auth.Logout(ctx, caller)
}
