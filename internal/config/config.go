package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// OpenAI holds the remote completion service settings.
type OpenAI struct {
	APIKey  string `env:"OPENAI_API_KEY,required,notEmpty"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	Model   string `env:"OPENAI_MODEL"                     envDefault:"gpt-3.5-turbo"`
}

// Summary holds the chunking and retry knobs of the summary pipeline.
type Summary struct {
	Retries        int           `env:"SUMMARY_RETRIES"    envDefault:"5"`
	RetryWait      time.Duration `env:"SUMMARY_RETRY_WAIT" envDefault:"5s"`
	ChunkMaxLength int           `env:"CHUNK_MAX_LENGTH"   envDefault:"1000"`
}

// Summarizer is everything needed to run the pipeline headless.
type Summarizer struct {
	OpenAI   OpenAI
	Summary  Summary
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

// Bot is the configuration of the Telegram front end.
type Bot struct {
	Summarizer

	Token           string        `env:"TOKEN,required,notEmpty"`
	AllowedUsers    []int64       `env:"ALLOWED_USERS"`
	PipelineTimeout time.Duration `env:"PIPELINE_TIMEOUT"        envDefault:"30m"`
}

func LoadBot() (Bot, error) {
	var cfg Bot
	if err := load(&cfg); err != nil {
		return Bot{}, err
	}
	if err := cfg.Summary.validate(); err != nil {
		return Bot{}, err
	}
	return cfg, nil
}

func LoadSummarizer() (Summarizer, error) {
	var cfg Summarizer
	if err := load(&cfg); err != nil {
		return Summarizer{}, err
	}
	if err := cfg.Summary.validate(); err != nil {
		return Summarizer{}, err
	}
	return cfg, nil
}

func load(cfg any) error {
	// A missing .env file is fine, the environment may already be populated.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}

func (s Summary) validate() error {
	if s.Retries <= 0 {
		return fmt.Errorf("SUMMARY_RETRIES must be positive (got %d)", s.Retries)
	}
	if s.RetryWait < 0 {
		return fmt.Errorf("SUMMARY_RETRY_WAIT must not be negative (got %s)", s.RetryWait)
	}
	if s.ChunkMaxLength <= 0 {
		return fmt.Errorf("CHUNK_MAX_LENGTH must be positive (got %d)", s.ChunkMaxLength)
	}
	return nil
}
