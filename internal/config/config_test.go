package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "localhost:50100", cfg.Daemon.Address)
	assert.Equal(t, "/dev/socket/installd", cfg.Daemon.SocketPath)
	assert.Equal(t, 10*time.Second, cfg.Daemon.DialTimeout)
	assert.Equal(t, 1*time.Second, cfg.Daemon.ReadyInterval)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "localhost:50100", cfg.Daemon.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	t.Setenv("INSTALLD_ADDR", "installd:50123")
	t.Setenv("INSTALLD_SOCKET", "/run/installd.sock")
	t.Setenv("INSTALLD_DIAL_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "installd:50123", cfg.Daemon.Address)
	assert.Equal(t, "/run/installd.sock", cfg.Daemon.SocketPath)
	assert.Equal(t, 3*time.Second, cfg.Daemon.DialTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}
