package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 5001, cfg.FallbackPort)
	assert.Equal(t, "admin123", cfg.AdminPassword)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.True(t, cfg.ConsoleEnabled)
	assert.Equal(t, "messenger.events", cfg.AMQPExchange)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("WRITE_TIMEOUT", "2s")
	t.Setenv("CONSOLE_ENABLED", "false")
	t.Setenv("ADMIN_TOKEN", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.WriteTimeout)
	assert.False(t, cfg.ConsoleEnabled)
	assert.Equal(t, "s3cret", cfg.AdminToken)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Port: 5000, FallbackPort: 5001, HistoryLimit: 50, SendBuffer: 1, MaxFrameBytes: 1, BcryptCost: 10}
	require.NoError(t, base.Validate())

	bad := base
	bad.HistoryLimit = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.BcryptCost = 2
	assert.Error(t, bad.Validate())

	bad = base
	bad.Port = 70000
	assert.Error(t, bad.Validate())
}
