package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreRedis  = "redis"
	StoreMySQL  = "mysql"
	StoreSQLite = "sqlite"
)

type Config struct {
	HTTPAddr   string
	AdminToken string

	// storage
	StoreDriver   string
	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DBDSN         string
	SQLitePath    string

	// AI provider
	AIProvider        string
	OpenAIBaseURL     string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAITemperature float64
	OpenAIMaxTokens   int
	OllamaBaseURL     string
	OllamaModel       string

	AITimeout             time.Duration
	ChatContextWindowSize int

	// offline migration
	WorkerConcurrency int
}

func Load() Config {
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	storeDriver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	if storeDriver == "" {
		storeDriver = StoreRedis
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	// DSN demo：
	// app:apppass@tcp(127.0.0.1:3306)/askboard?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" && storeDriver == StoreMySQL {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			"app", "apppass", "127.0.0.1", "3306", "askboard",
		)
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "askboard.db"
	}

	aiProvider := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	if aiProvider == "" {
		aiProvider = "openai"
	}

	openAIBaseURL := os.Getenv("OPENAI_BASE_URL")
	if openAIBaseURL == "" {
		openAIBaseURL = "https://api.openai.com/v1"
	}
	openAIModel := os.Getenv("OPENAI_MODEL")
	if openAIModel == "" {
		openAIModel = "gpt-4o"
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}
	ollamaModel := os.Getenv("OLLAMA_MODEL")
	if ollamaModel == "" {
		ollamaModel = "llama3:latest"
	}

	return Config{
		HTTPAddr:   httpAddr,
		AdminToken: os.Getenv("ADMIN_TOKEN"),

		StoreDriver:   storeDriver,
		RedisURL:      os.Getenv("REDIS_URL"),
		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		DBDSN:         dsn,
		SQLitePath:    sqlitePath,

		AIProvider:        aiProvider,
		OpenAIBaseURL:     openAIBaseURL,
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       openAIModel,
		OpenAITemperature: envFloat("OPENAI_TEMPERATURE", 0.7),
		OpenAIMaxTokens:   envInt("OPENAI_MAX_TOKENS", 1000),
		OllamaBaseURL:     ollamaBaseURL,
		OllamaModel:       ollamaModel,

		AITimeout:             time.Duration(envInt("AI_TIMEOUT_MS", 8000)) * time.Millisecond,
		ChatContextWindowSize: envInt("CHAT_CONTEXT_WINDOW_SIZE", 30),

		WorkerConcurrency: envInt("WORKER_CONCURRENCY", 4),
	}
}

// Validate rejects settings the server cannot start with. A missing AI key
// or admin token is allowed; those features are reported as unavailable.
func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreRedis:
		if c.RedisURL == "" && c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR or REDIS_URL is required"))
		}
	case StoreMySQL:
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for STORE_DRIVER=mysql"))
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for STORE_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER=%q", c.StoreDriver))
	}
	if c.AITimeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT_MS must be positive"))
	}
	if c.ChatContextWindowSize < 1 || c.ChatContextWindowSize > 100 {
		errs = append(errs, errors.New("CHAT_CONTEXT_WINDOW_SIZE must be in 1..100"))
	}
	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 50 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be in 1..50"))
	}
	return errors.Join(errs...)
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
