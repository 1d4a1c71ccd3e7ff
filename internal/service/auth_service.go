package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/events"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
)

const maxFailedAttempts = 5

const lockDuration = 15 * time.Minute

const (
	minPasswordLength = 8
	// bcrypt refuses anything longer.
	maxPasswordBytes = 72
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, email string, fn func(u *domain.User) error) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type HealthIDGenerator interface {
	HealthID(now time.Time) string
}

type AuthService struct {
	userRepo   UserRepository
	sessions   func(sessionID string) domain.SessionRepository
	jwtManager *auth.JWTManager
	healthIDs  HealthIDGenerator
	auditSvc   *AuditService
	events     *eventSink
	metrics    *metrics.Collector
	log        *zap.Logger
	now        func() time.Time
	bcryptCost int
}

func NewAuthService(
	userRepo UserRepository,
	sessions func(sessionID string) domain.SessionRepository,
	jwtManager *auth.JWTManager,
	healthIDs HealthIDGenerator,
	auditSvc *AuditService,
	pub events.Publisher,
	m *metrics.Collector,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		sessions:   sessions,
		jwtManager: jwtManager,
		healthIDs:  healthIDs,
		auditSvc:   auditSvc,
		events:     newEventSink(pub, m, log),
		metrics:    m,
		log:        log,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

type RegisterCommand struct {
	Email      string
	Password   string
	FullName   string
	NationalID string
	Phone      string
	Role       domain.Role
}

// Register creates an account. Duplicate emails and national IDs are
// rejected; the new health ID is also remembered by the session.
func (s *AuthService) Register(ctx context.Context, caller Caller, cmd *RegisterCommand) (_ *domain.Profile, err error) {
	ctx, span := startSpan(ctx, "AuthService.Register", caller)
	defer func() { endSpan(span, err) }()

	if cmd.Role == "" {
		cmd.Role = domain.RolePatient
	}
	if err := validateRegister(cmd); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	u := &domain.User{
		ID:                uuid.New(),
		Email:             normalizeEmail(cmd.Email),
		PasswordHash:      string(hash),
		FullName:          strings.TrimSpace(cmd.FullName),
		NationalID:        strings.TrimSpace(cmd.NationalID),
		Phone:             strings.TrimSpace(cmd.Phone),
		Role:              cmd.Role,
		HealthID:          s.healthIDs.HealthID(now),
		PasswordChangedAt: now,
		RegisteredAt:      now,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrNationalIDTaken) {
			return nil, err
		}
		s.log.Error("failed to create user", zap.Error(err))
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if err := s.sessions(caller.SessionID).SetHealthID(ctx, u.HealthID); err != nil {
		s.log.Warn("failed to remember health ID in session", zap.Error(err))
	}

	s.auditSvc.LogAsync(ctx, caller.audit(domain.ActionCreate, "user", u.ID.String()))
	s.events.emit(ctx, events.UserRegistered, caller.SessionID, map[string]string{
		"user_id": u.ID.String(),
		"role":    string(u.Role),
	})
	s.log.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
	)

	p := u.Profile()
	return &p, nil
}

type LoginResult struct {
	User   domain.Profile   `json:"user"`
	Tokens domain.TokenPair `json:"tokens"`
}

// Login verifies the password, marks the session as authenticated and issues
// a token pair.
func (s *AuthService) Login(ctx context.Context, caller Caller, email, password string) (_ *LoginResult, err error) {
	ctx, span := startSpan(ctx, "AuthService.Login", caller)
	defer func() { endSpan(span, err) }()

	email = normalizeEmail(email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("loading user: %w", err)
		}
		// Use bcrypt dummy hash to prevent timing-based user enumeration.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		s.metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if user.IsLocked(now) {
		s.metrics.LoginsTotal.WithLabelValues("locked").Inc()
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		// Record failed attempt; lock if threshold exceeded
		if _, uerr := s.userRepo.Update(ctx, email, func(u *domain.User) error {
			u.RecordFailedLogin(now, maxFailedAttempts, lockDuration)
			return nil
		}); uerr != nil {
			s.log.Error("failed to record login attempt", zap.Error(uerr))
		}
		s.metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		s.log.Warn("failed login attempt",
			zap.String("email", email),
			zap.String("ip", caller.IP),
		)
		return nil, ErrInvalidCredentials
	}

	user, err = s.userRepo.Update(ctx, email, func(u *domain.User) error {
		u.RecordSuccessfulLogin(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recording login: %w", err)
	}

	pair, err := s.jwtManager.GenerateTokenPair(claimsFor(user))
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	err = s.sessions(caller.SessionID).SetCurrentUser(ctx, &domain.SessionMarker{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		LoggedInAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("writing session marker: %w", err)
	}

	s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.auditSvc.LogAsync(ctx, Caller{
		SessionID: caller.SessionID,
		UserEmail: user.Email,
		IP:        caller.IP,
		RequestID: caller.RequestID,
	}.audit(domain.ActionLogin, "user", user.ID.String()))
	s.events.emit(ctx, events.UserLoggedIn, caller.SessionID, map[string]string{"user_id": user.ID.String()})
	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", caller.IP),
	)

	return &LoginResult{User: user.Profile(), Tokens: *pair}, nil
}

// CurrentUser returns the account the session is logged in as, or
// domain.ErrAnonymous.
func (s *AuthService) CurrentUser(ctx context.Context, caller Caller) (*domain.Profile, error) {
	sess := s.sessions(caller.SessionID)
	marker, err := sess.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, marker.Email)
	if errors.Is(err, domain.ErrUserNotFound) || (err == nil && user.ID != marker.UserID) {
		// The account behind the marker is gone.
		if cerr := sess.ClearCurrentUser(ctx); cerr != nil {
			s.log.Warn("failed to clear stale session marker", zap.Error(cerr))
		}
		return nil, domain.ErrAnonymous
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	p := user.Profile()
	return &p, nil
}

// Logout clears the session marker. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, caller Caller) error {
	sess := s.sessions(caller.SessionID)
	marker, err := sess.CurrentUser(ctx)
	if errors.Is(err, domain.ErrAnonymous) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := sess.ClearCurrentUser(ctx); err != nil {
		return fmt.Errorf("clearing session marker: %w", err)
	}

	s.auditSvc.LogAsync(ctx, Caller{
		SessionID: caller.SessionID,
		UserEmail: marker.Email,
		IP:        caller.IP,
		RequestID: caller.RequestID,
	}.audit(domain.ActionLogout, "user", marker.UserID.String()))
	s.events.emit(ctx, events.UserLoggedOut, caller.SessionID, map[string]string{"user_id": marker.UserID.String()})
	return nil
}

// HealthID returns the health ID remembered by the session, if any.
func (s *AuthService) HealthID(ctx context.Context, caller Caller) (string, error) {
	return s.sessions(caller.SessionID).HealthID(ctx)
}

// RefreshToken issues a new token pair given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Re-validate the account still exists
	user, err := s.userRepo.GetByEmail(ctx, claims.Email)
	if err != nil || user.ID != claims.UserID {
		return nil, ErrInvalidCredentials
	}

	return s.jwtManager.GenerateTokenPair(claimsFor(user))
}

// ChangePassword updates a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, caller Caller, email, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	_, err = s.userRepo.Update(ctx, email, func(u *domain.User) error {
		u.PasswordHash = string(hash)
		u.PasswordChangedAt = now
		return nil
	})
	if err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, caller.audit(domain.ActionUpdate, "user_password", user.ID.String()))
	return nil
}

func claimsFor(u *domain.User) *domain.Claims {
	return &domain.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegister(cmd *RegisterCommand) error {
	var errs fieldErrors

	errs.require(cmd.Email, "email")
	if strings.TrimSpace(cmd.Email) != "" {
		if _, err := mail.ParseAddress(cmd.Email); err != nil {
			errs.add("email is invalid")
		}
	}
	errs.require(cmd.Password, "password")
	if cmd.Password != "" {
		if problem := passwordProblem(cmd.Password); problem != "" {
			errs.add(problem)
		}
	}
	errs.require(cmd.FullName, "full_name")
	errs.require(cmd.NationalID, "national_id")
	if !cmd.Role.IsValid() {
		errs.add("role must be one of patient, doctor, admin")
	}

	return errs.err()
}

func validatePasswordStrength(password string) error {
	if problem := passwordProblem(password); problem != "" {
		return &ValidationError{Fields: []string{problem}}
	}
	return nil
}

func passwordProblem(password string) string {
	switch {
	case len(password) < minPasswordLength:
		return fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	case len(password) > maxPasswordBytes:
		return fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes)
	}
	return ""
}
