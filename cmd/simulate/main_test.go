package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_NoJWTSecretNeeded(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("POSTGRES_DSN", "postgres://sim@localhost/clinic")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SIM_WORKERS", "4")

	cfg := loadConfig()
	require.NoError(t, validateConfig(cfg))
	assert.Equal(t, "postgres://sim@localhost/clinic", cfg.PostgresDSN)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadConfig_RatiosNormalized(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://sim@localhost/clinic")
	t.Setenv("SIM_BOOKING_RATIO", "2")
	t.Setenv("SIM_STATUS_RATIO", "1")
	t.Setenv("SIM_VITALS_RATIO", "1")
	t.Setenv("SIM_READ_RATIO", "0")

	cfg := loadConfig()
	assert.InDelta(t, 0.5, cfg.BookingRatio, 1e-9)
	assert.InDelta(t, 0.25, cfg.StatusRatio, 1e-9)
	assert.InDelta(t, 0.0, cfg.ReadRatio, 1e-9)
}

func TestValidateConfig_RequiresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	assert.Error(t, validateConfig(loadConfig()))
}
