package config_test

import (
	"log/slog"
	"testing"
	"time"

	"pdfsummarizer/internal/config"
)

func TestLoadSummarizerDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := config.LoadSummarizer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OpenAI.Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected model: %q", cfg.OpenAI.Model)
	}
	if cfg.Summary.Retries != 5 {
		t.Fatalf("unexpected retries: %d", cfg.Summary.Retries)
	}
	if cfg.Summary.RetryWait != 5*time.Second {
		t.Fatalf("unexpected retry wait: %s", cfg.Summary.RetryWait)
	}
	if cfg.Summary.ChunkMaxLength != 1000 {
		t.Fatalf("unexpected chunk max length: %d", cfg.Summary.ChunkMaxLength)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoadSummarizerRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := config.LoadSummarizer(); err == nil {
		t.Fatalf("expected error when OPENAI_API_KEY is empty")
	}
}

func TestLoadSummarizerRejectsNonPositiveRetries(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SUMMARY_RETRIES", "0")

	if _, err := config.LoadSummarizer(); err == nil {
		t.Fatalf("expected error for zero retries")
	}
}

func TestLoadBot(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TOKEN", "123:abc")
	t.Setenv("ALLOWED_USERS", "1,2,3")
	t.Setenv("PIPELINE_TIMEOUT", "10m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.LoadBot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Token != "123:abc" {
		t.Fatalf("unexpected token: %q", cfg.Token)
	}
	if len(cfg.AllowedUsers) != 3 || cfg.AllowedUsers[2] != 3 {
		t.Fatalf("unexpected allowed users: %v", cfg.AllowedUsers)
	}
	if cfg.PipelineTimeout != 10*time.Minute {
		t.Fatalf("unexpected pipeline timeout: %s", cfg.PipelineTimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("expected embedded OpenAI settings to be parsed")
	}
}

func TestLoadBotRequiresToken(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TOKEN", "")

	if _, err := config.LoadBot(); err == nil {
		t.Fatalf("expected error when TOKEN is empty")
	}
}
