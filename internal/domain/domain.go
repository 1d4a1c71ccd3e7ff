package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// User is a portal account, stored under user_<email>.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"` // stored, never returned by the API
	FullName     string    `json:"full_name"`
	NationalID   string    `json:"national_id"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	HealthID     string    `json:"health_id"`

	FailedLoginCount  int        `json:"failed_login_count"`
	LockedUntil       *time.Time `json:"locked_until,omitempty"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	PasswordChangedAt time.Time  `json:"password_changed_at"`
	RegisteredAt      time.Time  `json:"registered_at"`
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// RecordFailedLogin counts a failed password check and locks the account for
// lockFor once max consecutive failures are reached.
func (u *User) RecordFailedLogin(now time.Time, max int, lockFor time.Duration) {
	u.FailedLoginCount++
	if u.FailedLoginCount >= max {
		until := now.Add(lockFor)
		u.LockedUntil = &until
		u.FailedLoginCount = 0
	}
}

func (u *User) RecordSuccessfulLogin(now time.Time) {
	u.FailedLoginCount = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
}

// Profile is the public view of a user.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	NationalID   string    `json:"national_id"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	HealthID     string    `json:"health_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		NationalID:   u.NationalID,
		Phone:        u.Phone,
		Role:         u.Role,
		HealthID:     u.HealthID,
		RegisteredAt: u.RegisteredAt,
	}
}

// SessionMarker is stored as currentUser in a session scope while someone is
// logged in. Its absence means the session is anonymous.
type SessionMarker struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionLogin  AuditAction = "login"
	ActionLogout AuditAction = "logout"
)

type AuditLog struct {
	ID         uuid.UUID `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`

	// Who
	SessionID string `json:"session_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`

	// What
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`

	RequestID string `json:"request_id,omitempty"`
	Changes   string `json:"changes,omitempty"`
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID uuid.UUID `json:"sub"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

// SessionRepository holds the login marker and health ID of one session.
type SessionRepository interface {
	// CurrentUser returns ErrAnonymous when nobody is logged in.
	CurrentUser(ctx context.Context) (*SessionMarker, error)
	SetCurrentUser(ctx context.Context, m *SessionMarker) error
	ClearCurrentUser(ctx context.Context) error
	SetHealthID(ctx context.Context, id string) error
	HealthID(ctx context.Context) (string, error)
}
