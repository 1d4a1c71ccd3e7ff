package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_LocksAfterRepeatedFailures(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	u := &User{}

	for i := 0; i < 4; i++ {
		u.RecordFailedLogin(now, 5, 15*time.Minute)
	}
	assert.False(t, u.IsLocked(now))
	assert.Equal(t, 4, u.FailedLoginCount)

	u.RecordFailedLogin(now, 5, 15*time.Minute)
	require.NotNil(t, u.LockedUntil)
	assert.True(t, u.IsLocked(now.Add(14*time.Minute)))
	assert.False(t, u.IsLocked(now.Add(15*time.Minute)))
	assert.Zero(t, u.FailedLoginCount)
}

func TestUser_SuccessfulLoginResetsCounters(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	u := &User{FailedLoginCount: 3}

	u.RecordSuccessfulLogin(now)

	assert.Zero(t, u.FailedLoginCount)
	assert.Nil(t, u.LockedUntil)
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, now, *u.LastLoginAt)
}

func TestUser_ProfileOmitsPasswordHash(t *testing.T) {
	u := &User{Email: "a@b.com", PasswordHash: "secret", Role: RolePatient, HealthID: "MH-1"}
	p := u.Profile()

	assert.Equal(t, "a@b.com", p.Email)
	assert.Equal(t, "MH-1", p.HealthID)
	assert.Equal(t, RolePatient, p.Role)
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RolePatient.IsValid())
	assert.False(t, Role("nurse").IsValid())
	assert.False(t, Role("").IsValid())
}
