package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/askboard/internal/ai"
	"github.com/suPer8Hu/askboard/internal/config"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	kv, err := OpenStore(config.Config{StoreDriver: config.StoreRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, kv.Ping(ctx))
	require.NoError(t, kv.Close())

	kv, err = OpenStore(config.Config{StoreDriver: config.StoreSQLite, SQLitePath: "file:app_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	n, err := kv.Incr(ctx, "post:id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, kv.Close())

	kv, err = OpenStore(config.Config{StoreDriver: "mongo"})
	assert.Error(t, err)
	assert.Nil(t, kv)
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()
	base := config.Config{OpenAIModel: "gpt-4o", OllamaBaseURL: "http://localhost:11434", OllamaModel: "llama3:latest"}

	cfg := base
	cfg.AIProvider = "openai"
	p, err := NewProvider(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, p, "no key means AI disabled")

	cfg.OpenAIAPIKey = "sk-test"
	p, err = NewProvider(ctx, cfg)
	require.NoError(t, err)
	oa, ok := p.(*ai.OpenAIProvider)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", oa.Model)

	cfg.AIProvider = "Ollama"
	p, err = NewProvider(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &ai.OllamaProvider{}, p)

	cfg.AIProvider = "claude"
	_, err = NewProvider(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: ollama, openai")
}
