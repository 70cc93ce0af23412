package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "STORE_DRIVER", "DB_DSN", "AI_PROVIDER", "AI_TIMEOUT_MS", "CHAT_CONTEXT_WINDOW_SIZE", "OPENAI_TEMPERATURE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoreRedis, cfg.StoreDriver)
	assert.Empty(t, cfg.DBDSN)
	assert.Equal(t, "openai", cfg.AIProvider)
	assert.Equal(t, 8*time.Second, cfg.AITimeout)
	assert.Equal(t, 30, cfg.ChatContextWindowSize)
	assert.InDelta(t, 0.7, cfg.OpenAITemperature, 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("DB_DSN", "")
	t.Setenv("AI_TIMEOUT_MS", "1500")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	assert.Equal(t, StoreMySQL, cfg.StoreDriver)
	assert.Contains(t, cfg.DBDSN, "/askboard?")
	assert.Equal(t, 1500*time.Millisecond, cfg.AITimeout)
	assert.Equal(t, 0, cfg.RedisDB)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	base := Load()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, "unsupported STORE_DRIVER"},
		{"zero timeout", func(c *Config) { c.AITimeout = 0 }, "AI_TIMEOUT_MS"},
		{"window too large", func(c *Config) { c.ChatContextWindowSize = 500 }, "CHAT_CONTEXT_WINDOW_SIZE"},
		{"concurrency", func(c *Config) { c.WorkerConcurrency = 0 }, "WORKER_CONCURRENCY"},
		{"mysql without dsn", func(c *Config) { c.StoreDriver = StoreMySQL; c.DBDSN = "" }, "DB_DSN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
