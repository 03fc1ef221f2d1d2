package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"pdfsummarizer/internal/pipeline"
)

// consoleObserver prints progress to errOut and summaries to out.
type consoleObserver struct {
	out    io.Writer
	errOut io.Writer
}

var _ pipeline.Observer = (*consoleObserver)(nil)

func newConsoleObserver(out, errOut io.Writer) *consoleObserver {
	return &consoleObserver{out: out, errOut: errOut}
}

func (o *consoleObserver) RetryScheduled(_ context.Context, attempt, retries int, wait time.Duration) {
	fmt.Fprintf(o.errOut, "Rate limit hit. Retrying in %s... (%d/%d)\n", wait, attempt, retries)
}

func (o *consoleObserver) ChunkStarted(_ context.Context, part, total int) {
	fmt.Fprintf(o.errOut, "Summarizing part %d of %d...\n", part, total)
}

func (o *consoleObserver) PartialSummaries(_ context.Context, partials []string) {
	fmt.Fprintln(o.out, "### Partial Summaries")
	for i, partial := range partials {
		fmt.Fprintf(o.out, "\n#### Part %d\n\n%s\n", i+1, partial)
	}
}

func (o *consoleObserver) FinalSummaryReady(_ context.Context, summary string) {
	fmt.Fprintf(o.out, "\n### Final Combined Summary\n\n%s\n", summary)
	fmt.Fprintln(o.errOut, "Final summary complete!")
}

func (o *consoleObserver) FinalSummaryFailed(context.Context) {
	fmt.Fprintln(o.errOut, "Final summary failed. You can use the partial summaries above.")
}
