package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AUTH_TOKEN", "token")
	t.Setenv("PORT", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.CorsAllowedOrigins)
	assert.True(t, cfg.PollEnforceExpiry)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/snip")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AUTH_TOKEN", "token")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("POLL_ENFORCE_EXPIRY", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 25, cfg.DBMaxConns)
	assert.False(t, cfg.PollEnforceExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsAllowedOrigins)
}

func TestValidate(t *testing.T) {
	assert.ErrorContains(t, Config{StoreDriver: DriverPostgres}.Validate(), "DATABASE_URL")
	assert.ErrorContains(t, Config{StoreDriver: "sqlite"}.Validate(), "STORE_DRIVER")
	assert.NoError(t, Config{StoreDriver: DriverMemory}.Validate())
}

func TestValidateServerReportsEveryMissingSecret(t *testing.T) {
	err := Config{StoreDriver: DriverMemory}.ValidateServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "AUTH_TOKEN")

	assert.NoError(t, Config{JWTSecret: "s", AuthToken: "t"}.ValidateServer())
}
