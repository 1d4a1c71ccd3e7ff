package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/config"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

// clockSkew is tolerated on every time-based claim.
const clockSkew = 10 * time.Second

var (
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenInvalid      = errors.New("token is invalid")
	ErrTokenTypeMismatch = errors.New("wrong token type")
)

type portalClaims struct {
	jwt.RegisteredClaims
	Email string    `json:"email"`
	Role  string    `json:"role"`
	Kind  tokenKind `json:"token_type"`
}

// JWTManager signs and checks the HS256 token pairs handed out by
// /api/v1/auth/login and /api/v1/auth/refresh.
type JWTManager struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) *JWTManager {
	return &JWTManager{cfg: cfg, now: time.Now}
}

func (m *JWTManager) GenerateTokenPair(claims *domain.Claims) (*domain.TokenPair, error) {
	access, expiresAt, err := m.issue(claims, kindAccess)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}
	refresh, _, err := m.issue(claims, kindRefresh)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

func (m *JWTManager) ValidateAccessToken(token string) (*domain.Claims, error) {
	return m.parse(token, kindAccess)
}

func (m *JWTManager) ValidateRefreshToken(token string) (*domain.Claims, error) {
	return m.parse(token, kindRefresh)
}

func (m *JWTManager) ttl(kind tokenKind) time.Duration {
	if kind == kindRefresh {
		return m.cfg.RefreshTokenTTL
	}
	return m.cfg.AccessTokenTTL
}

func (m *JWTManager) issue(claims *domain.Claims, kind tokenKind) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl(kind))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, portalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   claims.UserID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: claims.Email,
		Role:  string(claims.Role),
		Kind:  kind,
	})

	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *JWTManager) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(m.cfg.Secret), nil
}

func (m *JWTManager) parse(raw string, want tokenKind) (*domain.Claims, error) {
	var pc portalClaims
	token, err := jwt.ParseWithClaims(raw, &pc, m.keyFunc,
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil, !token.Valid:
		return nil, ErrTokenInvalid
	}

	if pc.Kind != want {
		return nil, ErrTokenTypeMismatch
	}

	userID, err := uuid.Parse(pc.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &domain.Claims{
		UserID: userID,
		Email:  pc.Email,
		Role:   domain.Role(pc.Role),
	}, nil
}
