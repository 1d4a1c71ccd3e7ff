package v1

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/config"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	RequestIDHeader = "X-Request-ID"
	SessionIDHeader = "X-Session-ID"

	ctxRequestID = "request_id"
	ctxSessionID = "session_id"
	ctxClaims    = "user_claims"
)

// RequestID propagates the caller's request ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// Session resolves the browser session from the session cookie or the
// X-Session-ID header. Unknown or malformed IDs start a fresh session, which
// is echoed back in both places.
func Session(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || !validSessionID(id) {
			id = c.GetHeader(SessionIDHeader)
		}
		if !validSessionID(id) {
			id = uuid.NewString()
		}

		c.Set(ctxSessionID, id)
		c.Header(SessionIDHeader, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, int(cfg.CookieMaxAge.Seconds()), "/", "", cfg.Secure, true)
		c.Next()
	}
}

// validSessionID keeps session IDs to UUIDs so they cannot escape their
// store scope.
func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return id != "" && err == nil
}

func sessionIDFrom(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

// AccessLog writes one structured line per request.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", requestIDFrom(c)),
			zap.String("session_id", sessionIDFrom(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Recovery turns panics into 500s and logs them.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestIDFrom(c)),
			zap.Stack("stack"),
		)
		respondError(c, http.StatusInternalServerError, "internal server error")
	})
}

// RateLimiter hands out one token bucket per client key.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	lastScan time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    limit,
		burst:    burst,
		idleTTL:  10 * time.Minute,
		lastScan: time.Now(),
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now
	if now.Sub(rl.lastScan) > rl.idleTTL {
		rl.cleanup(now)
	}
	rl.mu.Unlock()

	return cl.limiter.AllowN(now, 1)
}

// cleanup drops buckets idle for longer than idleTTL. Callers hold mu.
func (rl *RateLimiter) cleanup(now time.Time) {
	for k, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) > rl.idleTTL {
			delete(rl.limiters, k)
		}
	}
	rl.lastScan = now
}

func RateLimit(rl *RateLimiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			log.Warn("rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", "1")
			respondError(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}

// RequireAuth accepts requests carrying a valid bearer access token.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondError(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondError(c, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ctxClaims, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*domain.Claims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.Claims)
	return claims, ok
}
