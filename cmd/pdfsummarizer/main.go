package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdfsummarizer/internal/bot"
	"pdfsummarizer/internal/config"
	"pdfsummarizer/internal/pipeline"
	"pdfsummarizer/internal/summarizer"
)

func main() {
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadBot()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	client, err := initSummarizer(ctx, cfg.Summarizer, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize summarizer",
			"error", err,
			"model", cfg.OpenAI.Model)

		return
	}

	p := pipeline.New(client, cfg.Summary.ChunkMaxLength, log)

	botInst, err := bot.New(cfg.Token, p, cfg.AllowedUsers, cfg.PipelineTimeout, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return
	}
	log.InfoContext(ctx, "Bot is initialized",
		"username", botInst.Username(),
		"allowedUsersCount", len(cfg.AllowedUsers),
		"pipelineTimeout", cfg.PipelineTimeout.String())

	go func() {
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started",
		"updateTimeoutSeconds", bot.BotUpdateTimeout)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}

func initSummarizer(
	ctx context.Context,
	cfg config.Summarizer,
	log *slog.Logger,
) (*summarizer.Client, error) {
	completer, err := summarizer.NewOpenAICompleter(summarizer.OpenAIConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "OpenAI summarizer is initialized",
		"provider", "openai",
		"model", completer.Model(),
		"retries", cfg.Summary.Retries,
		"retryWait", cfg.Summary.RetryWait.String(),
		"chunkMaxLength", cfg.Summary.ChunkMaxLength)

	return summarizer.NewClient(
		completer,
		summarizer.WithRetries(cfg.Summary.Retries),
		summarizer.WithRetryWait(cfg.Summary.RetryWait),
	), nil
}
