// Package pipeline turns document text into partial and combined summaries.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pdfsummarizer/internal/chunker"
	"pdfsummarizer/internal/summarizer"
)

const (
	ArtifactName = "summary.txt"
	ArtifactMIME = "text/plain"
)

// Summarizer is the subset of summarizer.Client used by the pipeline.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string, notifier summarizer.RetryNotifier) (string, error)
}

// Result holds everything produced by one run.
type Result struct {
	Chunks   []string
	Partials []string
	Final    string
	// FinalFailed is set when the combination step returned the rate limit
	// failure sentinel. Partials are still usable in that case.
	FinalFailed bool
}

type Pipeline struct {
	summarizer     Summarizer
	chunkMaxLength int
	log            *slog.Logger
}

func New(s Summarizer, chunkMaxLength int, log *slog.Logger) *Pipeline {
	if chunkMaxLength <= 0 {
		chunkMaxLength = chunker.DefaultMaxLength
	}
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		summarizer:     s,
		chunkMaxLength: chunkMaxLength,
		log:            log,
	}
}

// Run summarizes every chunk of text in order and then combines the partial
// summaries. Chunks are processed strictly sequentially.
func (p *Pipeline) Run(ctx context.Context, text string, obs Observer) (*Result, error) {
	if p.summarizer == nil {
		return nil, errors.New("summarizer is not configured")
	}
	if obs == nil {
		obs = NopObserver{}
	}

	chunks, err := chunker.Split(text, p.chunkMaxLength)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	res := &Result{
		Chunks:   chunks,
		Partials: make([]string, 0, len(chunks)),
	}

	for i, chunk := range chunks {
		part := i + 1
		obs.ChunkStarted(ctx, part, len(chunks))

		partial, summarizeErr := p.summarizer.Summarize(ctx, ChunkPrompt(chunk), obs)
		if summarizeErr != nil {
			return res, fmt.Errorf("summarize part %d of %d: %w", part, len(chunks), summarizeErr)
		}

		// TODO: decide whether failed partials should be left out of the
		// final prompt; today they are combined as if they were summaries.
		if summarizer.IsFailure(partial) {
			p.log.WarnContext(ctx, "Partial summary failed due to rate limit",
				"part", part,
				"total", len(chunks))
		}

		res.Partials = append(res.Partials, partial)
	}

	obs.PartialSummaries(ctx, res.Partials)

	final, err := p.summarizer.Summarize(ctx, FinalPrompt(res.Partials), obs)
	if err != nil {
		return res, fmt.Errorf("summarize partial summaries: %w", err)
	}
	res.Final = final

	if summarizer.IsFailure(final) {
		res.FinalFailed = true
		p.log.WarnContext(ctx, "Final summary failed due to rate limit",
			"partialCount", len(res.Partials))

		obs.FinalSummaryFailed(ctx)

		return res, nil
	}

	obs.FinalSummaryReady(ctx, final)

	return res, nil
}
