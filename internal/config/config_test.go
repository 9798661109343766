package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SELF_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DEV_LOG", "")
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("AI_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "", cfg.SelfURL)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.False(t, cfg.DevLog)
	assert.Equal(t, "gemini", cfg.AIProvider)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SELF_URL", "https://codesync.example.com")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DEV_LOG", "true")
	t.Setenv("AUTH_SECRET", "shh")
	t.Setenv("AI_PROVIDER", "gemini")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "https://codesync.example.com", cfg.SelfURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.DevLog)
	assert.Equal(t, "shh", cfg.AuthSecret)
}
