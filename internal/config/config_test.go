package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token-123")
	t.Setenv("MEDIA_NODE_PASSWORD", "hunter2")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "token-123", cfg.DiscordToken)
	assert.Equal(t, "http://localhost:2333", cfg.MediaNodeURI)
	assert.Equal(t, "hunter2", cfg.MediaNodePassword)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.InitSlashCommands)
	assert.Equal(t, 15*time.Minute, cfg.InactivityTimeout)
	assert.Equal(t, time.Minute, cfg.MonitorInterval)
	assert.Equal(t, 30, cfg.DefaultVolume)
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token-123")
	t.Setenv("MEDIA_NODE_PASSWORD", "hunter2")
	t.Setenv("MEDIA_NODE_URI", "http://node:8080")
	t.Setenv("INACTIVITY_TIMEOUT", "30m")
	t.Setenv("DEFAULT_VOLUME", "50")
	t.Setenv("INIT_SLASH_COMMANDS", "false")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "http://node:8080", cfg.MediaNodeURI)
	assert.Equal(t, 30*time.Minute, cfg.InactivityTimeout)
	assert.Equal(t, 50, cfg.DefaultVolume)
	assert.False(t, cfg.InitSlashCommands)
}

func TestNewRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "placeholder") // registers cleanup
	require.NoError(t, os.Unsetenv("DISCORD_TOKEN"))
	t.Setenv("MEDIA_NODE_PASSWORD", "hunter2")

	_, err := New()
	assert.Error(t, err)
}
