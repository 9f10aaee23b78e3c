package config_test

import (
	"log/slog"
	"testing"

	"docsummarizer/internal/config"
	"docsummarizer/internal/summarizer"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "  secret  ")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIKey != "secret" {
		t.Fatalf("expected trimmed API key, got %q", cfg.APIKey)
	}
	if cfg.PromptMode != summarizer.ModeContent {
		t.Fatalf("unexpected prompt mode: %q", cfg.PromptMode)
	}
	if cfg.CompletionModel != summarizer.DefaultModel {
		t.Fatalf("unexpected model: %q", cfg.CompletionModel)
	}
	if cfg.CompletionBaseURL != summarizer.DefaultBaseURL {
		t.Fatalf("unexpected base URL: %q", cfg.CompletionBaseURL)
	}
	if !cfg.S3UseSSL || cfg.S3Region != "us-east-1" {
		t.Fatalf("unexpected storage defaults: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
	if cfg.MaxParallelInvokes != 4 {
		t.Fatalf("unexpected parallelism: %d", cfg.MaxParallelInvokes)
	}
}

func TestParseMissingAPIKeyIsNotFatal(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "" {
		t.Fatalf("expected empty API key, got %q", cfg.APIKey)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PROMPT_MODE", "filename")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("S3_USE_SSL", "false")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PromptMode != summarizer.ModeFilename {
		t.Fatalf("unexpected prompt mode: %q", cfg.PromptMode)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
	if cfg.S3UseSSL {
		t.Fatalf("expected SSL to be disabled")
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	t.Run("prompt mode", func(t *testing.T) {
		t.Setenv("PROMPT_MODE", "chunked")

		if _, err := config.Parse(); err == nil {
			t.Fatalf("expected error for unknown prompt mode")
		}
	})

	t.Run("parallelism", func(t *testing.T) {
		t.Setenv("MAX_PARALLEL_INVOCATIONS", "0")

		if _, err := config.Parse(); err == nil {
			t.Fatalf("expected error for non-positive parallelism")
		}
	})
}
