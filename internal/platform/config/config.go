package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSigningKey = "dev-session-key-change-in-production"

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	AllowedOrigins []string
	RateLimit      RateLimitConfig
	Session        SessionConfig
	Storage        StorageConfig
	Redis          RedisConfig
}

// SessionConfig configures verification of tokens issued by the auth service.
type SessionConfig struct {
	SigningKey string
	CookieName string
}

// StorageConfig selects and configures the record store.
type StorageConfig struct {
	Backend      string
	DatabaseURL  string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the session store connection. An empty URL keeps
// sessions in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// IsProduction reports whether the server runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}

	env := getEnv("APP_ENV", "development")
	defaultFormat := "text"
	if env == "production" {
		defaultFormat = "json"
	}

	cfg := Server{
		Addr:           getEnv("DOMAINDESK_ADDR", ":8080"),
		Environment:    env,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", defaultFormat),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getFloat("RATE_LIMIT_RPS", 20),
			Burst:             getInt("RATE_LIMIT_BURST", 40),
		},
		Session: SessionConfig{
			SigningKey: os.Getenv("SESSION_SIGNING_KEY"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "better-auth.session_token"),
		},
		Storage: StorageConfig{
			Backend:      getEnv("STORAGE_BACKEND", StorageMemory),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	if cfg.Session.SigningKey == "" && !cfg.IsProduction() {
		// Use a default for development - must be set in production
		cfg.Session.SigningKey = devSigningKey
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the server cannot start with.
func (s Server) Validate() error {
	var errs []error
	if s.Session.SigningKey == "" {
		errs = append(errs, errors.New("SESSION_SIGNING_KEY is required in production"))
	}
	switch s.Storage.Backend {
	case StorageMemory:
	case StoragePostgres:
		if s.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", s.Storage.Backend))
	}
	if s.RateLimit.RequestsPerSecond <= 0 || s.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate limit must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
