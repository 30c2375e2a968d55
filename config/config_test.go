package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("BOT_TOKEN", "test-token")
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.False(t, cfg.RedisConfigured())
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestRedisConfigured(t *testing.T) {
	cfg := &Config{RedisHost: "localhost"}
	assert.True(t, cfg.RedisConfigured())

	cfg = &Config{RedisURL: "redis://localhost:6379"}
	assert.True(t, cfg.RedisConfigured())
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
