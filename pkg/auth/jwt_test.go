package auth

import (
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/config"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-with-enough-entropy",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "myhealth-test",
	})
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestManager()
	claims := &domain.Claims{UserID: uuid.New(), Email: "amina@example.com", Role: domain.RolePatient}

	pair, err := m.GenerateTokenPair(claims)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	got, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims, got)

	got, err = m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, got.UserID)
}

func TestJWTManager_RejectsWrongType(t *testing.T) {
	m := newTestManager()
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RolePatient})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	pair, err := newTestManager().GenerateTokenPair(&domain.Claims{UserID: uuid.New()})
	require.NoError(t, err)

	other := NewJWTManager(config.JWTConfig{Secret: "another-secret", Issuer: "myhealth-test", AccessTokenTTL: time.Minute})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager(config.JWTConfig{Secret: "s", Issuer: "i", AccessTokenTTL: -time.Minute, RefreshTokenTTL: time.Hour})
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken()
	require.NoError(t, err)
	b, err := NewOpaqueToken()
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9a-f]{64}$`, a)
	assert.NotEqual(t, a, b)
}

func TestJWTManager_ToleratesClockSkew(t *testing.T) {
	m := newTestManager()
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New()})
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(time.Minute + 5*time.Second) }
	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.NoError(t, err, "within skew of expiry")

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
