// Package app builds the long-lived clients shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/suPer8Hu/askboard/internal/ai"
	"github.com/suPer8Hu/askboard/internal/config"
	"github.com/suPer8Hu/askboard/internal/store"
	"github.com/suPer8Hu/askboard/internal/store/redisstore"
	"github.com/suPer8Hu/askboard/internal/store/sqlstore"
)

// OpenStore connects the KV backend selected by STORE_DRIVER.
func OpenStore(cfg config.Config) (store.KV, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		log.Printf("store=redis addr=%s url_set=%t", cfg.RedisAddr, cfg.RedisURL != "")
		s, err := redisstore.New(redisstore.Options{
			URL:      cfg.RedisURL,
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreMySQL, config.StoreSQLite:
		dsn := cfg.DBDSN
		if cfg.StoreDriver == config.StoreSQLite {
			dsn = cfg.SQLitePath
		}
		log.Printf("store=%s", cfg.StoreDriver)
		s, err := sqlstore.Open(cfg.StoreDriver, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER=%q", cfg.StoreDriver)
	}
}

// NewRegistry registers every completion backend the config knows about.
func NewRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()

	reg.Register("openai", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, ai.ErrNotConfigured
		}
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenAIModel
		}
		return ai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, m, cfg.OpenAITemperature, cfg.OpenAIMaxTokens), nil
	})

	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		p := ai.NewOllamaProvider(cfg.OllamaBaseURL, m)
		p.Temperature = cfg.OpenAITemperature
		p.NumPredict = cfg.OpenAIMaxTokens
		return p, nil
	})
	return reg
}

// NewProvider resolves AI_PROVIDER. Missing credentials yield a nil provider
// and no error: the board keeps working without AI turns.
func NewProvider(ctx context.Context, cfg config.Config) (ai.Provider, error) {
	reg := NewRegistry(cfg)
	p, err := reg.Get(ctx, cfg.AIProvider, "")
	if errors.Is(err, ai.ErrNotConfigured) {
		log.Printf("ai provider=%s not configured, AI turns disabled", cfg.AIProvider)
		return nil, nil
	}
	if errors.Is(err, ai.ErrUnknownProvider) {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(reg.Names(), ", "))
	}
	if err != nil {
		return nil, err
	}
	log.Printf("ai provider=%s ready", cfg.AIProvider)
	return p, nil
}
