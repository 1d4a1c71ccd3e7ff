package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Store      StoreConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Log        LogConfig
	Tracing    TracingConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Session    SessionConfig
	Simulation SimulationConfig
	Media      MediaConfig
	Events     EventsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

const (
	StoreBackendMemory   = "memory"
	StoreBackendPostgres = "postgres"
)

type StoreConfig struct {
	Backend string
}

type DatabaseConfig struct {
	Host               string
	Port               int
	Name               string
	User               string
	Password           string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

// AllowsAllOrigins reports whether the wildcard origin is configured.
func (c CORSConfig) AllowsAllOrigins() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

type RateLimitConfig struct {
	// Global Rate limit per IP
	RequestsPerSecond float64
	BurstSize         int
	// Auth endpoints have stricter limits
	AuthRequestsPerMinute int
}

type SessionConfig struct {
	CookieName   string
	CookieMaxAge time.Duration
	Secure       bool
}

// SimulationConfig controls the canned-response behaviour of chat and
// dermatology. A zero RandomSeed seeds from the clock.
type SimulationConfig struct {
	ChatReplyDelay   time.Duration
	ProgressInterval time.Duration
	RandomSeed       uint64
}

const (
	MediaBackendMemory = "memory"
	MediaBackendS3     = "s3"
)

type MediaConfig struct {
	Backend        string
	S3Bucket       string
	S3Prefix       string
	S3Endpoint     string
	S3PathStyle    bool
	MaxUploadBytes int64
}

const (
	EventsBackendLog   = "log"
	EventsBackendKafka = "kafka"
)

type EventsConfig struct {
	Backend      string
	KafkaBrokers []string
	KafkaTopic   string
}

func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "myhealth-api"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StoreBackendMemory),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			Name:               getEnv("DB_NAME", "myhealth"),
			User:               getEnv("DB_USER", "myhealth"),
			Password:           getEnv("DB_PASSWORD", ""),
			SSLMode:            getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:    getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime:    getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			SlowQueryThreshold: getEnvDuration("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", ""),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
			Issuer:          getEnv("JWT_ISSUER", "myhealth-api"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "myhealth-api"),
			Endpoint:    getEnv("OTEL_EXPORTER_ENDPOINT", "otel-collector:4318"),
			SampleRate:  getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type", "X-Request-ID", "X-Session-ID"}),
			MaxAge:         getEnvDuration("CORS_MAX_AGE", 12*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond:     getEnvFloat("RATE_LIMIT_RPS", 100),
			BurstSize:             getEnvInt("RATE_LIMIT_BURST", 200),
			AuthRequestsPerMinute: getEnvInt("RATE_LIMIT_AUTH_RPM", 10),
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "myhealth_session"),
			CookieMaxAge: getEnvDuration("SESSION_COOKIE_MAX_AGE", 24*time.Hour),
			Secure:       getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		Simulation: SimulationConfig{
			ChatReplyDelay:   getEnvDuration("SIM_CHAT_REPLY_DELAY", 1500*time.Millisecond),
			ProgressInterval: getEnvDuration("SIM_PROGRESS_INTERVAL", 200*time.Millisecond),
			RandomSeed:       uint64(getEnvInt("SIM_RANDOM_SEED", 0)),
		},
		Media: MediaConfig{
			Backend:        getEnv("MEDIA_BACKEND", MediaBackendMemory),
			S3Bucket:       getEnv("MEDIA_S3_BUCKET", ""),
			S3Prefix:       getEnv("MEDIA_S3_PREFIX", "dermatology"),
			S3Endpoint:     getEnv("MEDIA_S3_ENDPOINT", ""),
			S3PathStyle:    getEnvBool("MEDIA_S3_PATH_STYLE", false),
			MaxUploadBytes: int64(getEnvInt("MEDIA_MAX_UPLOAD_BYTES", 10<<20)),
		},
		Events: EventsConfig{
			Backend:      getEnv("EVENTS_BACKEND", EventsBackendLog),
			KafkaBrokers: getEnvSlice("KAFKA_BROKERS", []string{"kafka:9092"}),
			KafkaTopic:   getEnv("KAFKA_TOPIC", "myhealth.portal-events"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces production security requirements.
func validate(cfg *Config) error {
	var errs []string

	if cfg.JWT.Secret == "" {
		errs = append(errs, "JWT_SECRET is required")
	} else if len(cfg.JWT.Secret) < 32 && cfg.App.Environment == "production" {
		errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
	}

	switch cfg.Store.Backend {
	case StoreBackendMemory:
		if cfg.App.Environment == "production" {
			errs = append(errs, "STORE_BACKEND=memory is not allowed in production")
		}
	case StoreBackendPostgres:
		if cfg.Database.Password == "" && cfg.App.Environment != "development" {
			errs = append(errs, "DB_PASSWORD is required in non-development environments")
		}
		if cfg.Database.SSLMode == "disable" && cfg.App.Environment == "production" {
			errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND %q is not one of memory, postgres", cfg.Store.Backend))
	}

	switch cfg.Media.Backend {
	case MediaBackendMemory:
	case MediaBackendS3:
		if cfg.Media.S3Bucket == "" {
			errs = append(errs, "MEDIA_S3_BUCKET is required when MEDIA_BACKEND=s3")
		}
	default:
		errs = append(errs, fmt.Sprintf("MEDIA_BACKEND %q is not one of memory, s3", cfg.Media.Backend))
	}
	if cfg.Media.MaxUploadBytes <= 0 {
		errs = append(errs, "MEDIA_MAX_UPLOAD_BYTES must be positive")
	}

	switch cfg.Events.Backend {
	case EventsBackendLog:
	case EventsBackendKafka:
		if len(cfg.Events.KafkaBrokers) == 0 || cfg.Events.KafkaTopic == "" {
			errs = append(errs, "KAFKA_BROKERS and KAFKA_TOPIC are required when EVENTS_BACKEND=kafka")
		}
	default:
		errs = append(errs, fmt.Sprintf("EVENTS_BACKEND %q is not one of log, kafka", cfg.Events.Backend))
	}

	if cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.BurstSize <= 0 || cfg.RateLimit.AuthRequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS, RATE_LIMIT_BURST and RATE_LIMIT_AUTH_RPM must be positive")
	}

	if cfg.Simulation.ChatReplyDelay < 0 || cfg.Simulation.ProgressInterval <= 0 {
		errs = append(errs, "SIM_CHAT_REPLY_DELAY must be >= 0 and SIM_PROGRESS_INTERVAL > 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
