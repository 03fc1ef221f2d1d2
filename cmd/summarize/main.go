package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"pdfsummarizer/internal/config"
	"pdfsummarizer/internal/extractor"
	"pdfsummarizer/internal/pipeline"
	"pdfsummarizer/internal/summarizer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "summarize",
		Usage:     "Summarize a PDF document with an OpenAI model",
		ArgsUsage: "FILE.pdf",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   pipeline.ArtifactName,
				Usage:   "file to write the final summary to",
			},
			&cli.IntFlag{
				Name:  "max-length",
				Usage: "chunk size in characters (defaults to CHUNK_MAX_LENGTH)",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
		},
		Action: summarizeAction,
	}
}

func summarizeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one PDF file", 2)
	}
	path := c.Args().First()

	cfg, err := config.LoadSummarizer()
	if err != nil {
		return cli.Exit(fmt.Sprintf("load config: %v", err), 2)
	}

	logLevel := cfg.LogLevel
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	log := slog.New(slog.NewJSONHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: logLevel}))

	chunkMaxLength := cfg.Summary.ChunkMaxLength
	if c.IsSet("max-length") {
		chunkMaxLength = c.Int("max-length")
		if chunkMaxLength <= 0 {
			return cli.Exit("--max-length must be positive", 2)
		}
	}

	completer, err := summarizer.NewOpenAICompleter(summarizer.OpenAIConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
	if err != nil {
		return fmt.Errorf("create completer: %w", err)
	}

	client := summarizer.NewClient(
		completer,
		summarizer.WithRetries(cfg.Summary.Retries),
		summarizer.WithRetryWait(cfg.Summary.RetryWait),
	)

	return run(c.Context, path, c.String("out"), pipeline.New(client, chunkMaxLength, log),
		newConsoleObserver(c.App.Writer, c.App.ErrWriter), log)
}

func run(
	ctx context.Context,
	path string,
	out string,
	p *pipeline.Pipeline,
	obs *consoleObserver,
	log *slog.Logger,
) error {
	text, err := extractor.ExtractFile(path)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	log.InfoContext(ctx, "PDF text is extracted",
		"path", path,
		"textLen", len(text))

	if strings.TrimSpace(text) == "" {
		return cli.Exit("no text was found in the PDF", 1)
	}

	res, err := p.Run(ctx, text, obs)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	if res.FinalFailed {
		return cli.Exit("final summary failed, use the partial summaries above", 1)
	}

	if err = os.WriteFile(out, []byte(res.Final), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	log.InfoContext(ctx, "Summary is written",
		"out", out,
		"chunkCount", len(res.Chunks))

	return nil
}
