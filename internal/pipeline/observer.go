package pipeline

import (
	"context"
	"time"

	"pdfsummarizer/internal/summarizer"
)

// Observer receives progress and results while a pipeline runs. Calls are
// made synchronously from the goroutine running the pipeline.
type Observer interface {
	summarizer.RetryNotifier

	// ChunkStarted is called before chunk part of total is summarized.
	// part is 1-based.
	ChunkStarted(ctx context.Context, part, total int)
	PartialSummaries(ctx context.Context, partials []string)
	FinalSummaryReady(ctx context.Context, summary string)
	FinalSummaryFailed(ctx context.Context)
}

// NopObserver ignores every event.
type NopObserver struct{}

var _ Observer = NopObserver{}

func (NopObserver) RetryScheduled(context.Context, int, int, time.Duration) {}
func (NopObserver) ChunkStarted(context.Context, int, int)                  {}
func (NopObserver) PartialSummaries(context.Context, []string)              {}
func (NopObserver) FinalSummaryReady(context.Context, string)               {}
func (NopObserver) FinalSummaryFailed(context.Context)                      {}
