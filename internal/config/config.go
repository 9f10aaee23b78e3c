package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"docsummarizer/internal/summarizer"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// APIKey is optional here: a missing key fails each invocation instead of the process.
	APIKey             string          `env:"GROQ_API_KEY"`
	CompletionBaseURL  string          `env:"COMPLETION_BASE_URL"      envDefault:"https://api.groq.com/openai/v1/"`
	CompletionModel    string          `env:"COMPLETION_MODEL"         envDefault:"llama-3.1-8b-instant"`
	PromptMode         summarizer.Mode `env:"PROMPT_MODE"              envDefault:"content"`
	S3Endpoint         string          `env:"S3_ENDPOINT"              envDefault:"s3.amazonaws.com"`
	S3AccessKey        string          `env:"S3_ACCESS_KEY"`
	S3SecretKey        string          `env:"S3_SECRET_KEY"`
	S3Region           string          `env:"S3_REGION"                envDefault:"us-east-1"`
	S3UseSSL           bool            `env:"S3_USE_SSL"               envDefault:"true"`
	WatchBucket        string          `env:"WATCH_BUCKET"`
	WatchPrefix        string          `env:"WATCH_PREFIX"`
	BackfillSpec       string          `env:"BACKFILL_SPEC"`
	HTTPAddr           string          `env:"HTTP_ADDR"                envDefault:":8080"`
	MaxParallelInvokes int             `env:"MAX_PARALLEL_INVOCATIONS" envDefault:"4"`
	LogLevel           slog.Level      `env:"LOG_LEVEL"                envDefault:"info"`
}

// Load reads an optional .env file and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	return Parse()
}

// Parse reads the configuration from the process environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	if cfg.MaxParallelInvokes <= 0 {
		return Config{}, fmt.Errorf("MAX_PARALLEL_INVOCATIONS must be positive (got %d)", cfg.MaxParallelInvokes)
	}

	return cfg, nil
}
