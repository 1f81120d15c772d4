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

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port               string
	StoreDriver        string
	DatabaseURL        string
	DBMaxConns         int
	DBRetryMax         int
	JWTSecret          string
	JWTTTL             time.Duration
	AuthToken          string
	CorsAllowedOrigins []string
	RedisURL           string
	NotifyChannel      string
	NotifyQueueSize    int
	RequestTimeout     time.Duration
	PollEnforceExpiry  bool
	LogLevel           string
}

// Load reads .env (when present) and the process environment. Only the
// storage settings are checked here; see ValidateServer for the rest.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 10),
		DBRetryMax:         getEnvInt("DB_RETRY_MAX", 3),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             getEnvDuration("JWT_TTL", 24*time.Hour),
		AuthToken:          getEnv("AUTH_TOKEN", ""),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RedisURL:           getEnv("REDIS_URL", ""),
		NotifyChannel:      getEnv("NOTIFY_CHANNEL", "snip:notifications"),
		NotifyQueueSize:    getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		PollEnforceExpiry:  getEnvBool("POLL_ENFORCE_EXPIRY", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", DriverPostgres, DriverMemory)
	}
	return nil
}

// ValidateServer checks the secrets the HTTP server cannot start without.
func (c Config) ValidateServer() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.AuthToken == "" {
		errs = append(errs, errors.New("AUTH_TOKEN is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	if parsed, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return parsed
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if parsed, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return parsed
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if parsed, err := time.ParseDuration(getEnv(key, "")); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
