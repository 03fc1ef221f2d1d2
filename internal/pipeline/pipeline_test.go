package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"pdfsummarizer/internal/extractor"
	"pdfsummarizer/internal/extractor/pdftest"
	"pdfsummarizer/internal/pipeline"
	"pdfsummarizer/internal/summarizer"
)

const finalMarker = "Below are partial summaries"

// scriptedSummarizer answers chunk prompts with "partial-N" and the final
// prompt with finalText unless overridden.
type scriptedSummarizer struct {
	mu        sync.Mutex
	prompts   []string
	partials  map[int]string
	finalText string
	failAt    int
}

func (s *scriptedSummarizer) Summarize(
	_ context.Context,
	prompt string,
	_ summarizer.RetryNotifier,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)
	call := len(s.prompts)

	if s.failAt == call {
		return "", errors.New("401 Unauthorized")
	}

	if strings.HasPrefix(prompt, finalMarker) {
		return s.finalText, nil
	}

	if text, ok := s.partials[call]; ok {
		return text, nil
	}

	return fmt.Sprintf("partial-%d", call), nil
}

type recordingObserver struct {
	events   []string
	partials []string
	final    string
}

func (o *recordingObserver) RetryScheduled(_ context.Context, attempt, retries int, _ time.Duration) {
	o.events = append(o.events, fmt.Sprintf("retry %d/%d", attempt, retries))
}

func (o *recordingObserver) ChunkStarted(_ context.Context, part, total int) {
	o.events = append(o.events, fmt.Sprintf("chunk %d/%d", part, total))
}

func (o *recordingObserver) PartialSummaries(_ context.Context, partials []string) {
	o.events = append(o.events, "partials")
	o.partials = slices.Clone(partials)
}

func (o *recordingObserver) FinalSummaryReady(_ context.Context, summary string) {
	o.events = append(o.events, "final")
	o.final = summary
}

func (o *recordingObserver) FinalSummaryFailed(_ context.Context) {
	o.events = append(o.events, "final failed")
}

func TestRunSplitsDocumentAndSummarizesInOrder(t *testing.T) {
	text := strings.Repeat("a", 1000) + strings.Repeat("b", 1000) + strings.Repeat("c", 500)
	s := &scriptedSummarizer{finalText: "combined"}
	obs := &recordingObserver{}

	p := pipeline.New(s, 0, slog.Default())

	res, err := p.Run(context.Background(), text, obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lengths := make([]int, 0, len(res.Chunks))
	for _, chunk := range res.Chunks {
		lengths = append(lengths, len(chunk))
	}
	if want := []int{1000, 1000, 500}; !slices.Equal(lengths, want) {
		t.Fatalf("unexpected chunk lengths: got %v want %v", lengths, want)
	}

	wantPartials := []string{"partial-1", "partial-2", "partial-3"}
	if !slices.Equal(res.Partials, wantPartials) {
		t.Fatalf("unexpected partials: got %q want %q", res.Partials, wantPartials)
	}

	if len(s.prompts) != 4 {
		t.Fatalf("expected 4 summarizer calls, got %d", len(s.prompts))
	}
	for i, marker := range []string{"aaaa", "bbbb", "cccc"} {
		if !strings.Contains(s.prompts[i], marker) {
			t.Fatalf("prompt %d does not embed its chunk", i)
		}
		if !strings.Contains(s.prompts[i], "- Questions to Consider:") {
			t.Fatalf("prompt %d misses the requested format", i)
		}
	}

	finalPrompt := s.prompts[3]
	if !strings.Contains(finalPrompt, "partial-1\n\npartial-2\n\npartial-3") {
		t.Fatalf("final prompt does not join partials with blank lines: %q", finalPrompt)
	}
	if !strings.Contains(finalPrompt, "- Key Highlights:") {
		t.Fatalf("final prompt misses the requested format")
	}

	wantEvents := []string{"chunk 1/3", "chunk 2/3", "chunk 3/3", "partials", "final"}
	if !slices.Equal(obs.events, wantEvents) {
		t.Fatalf("unexpected events: got %q want %q", obs.events, wantEvents)
	}

	if res.Final != "combined" || res.FinalFailed {
		t.Fatalf("unexpected final: %q (failed = %v)", res.Final, res.FinalFailed)
	}
	if obs.final != "combined" {
		t.Fatalf("unexpected rendered final: %q", obs.final)
	}
}

func TestRunKeepsFailedPartialAndContinues(t *testing.T) {
	text := strings.Repeat("x", 25)
	s := &scriptedSummarizer{
		partials:  map[int]string{2: summarizer.FailureSentinel},
		finalText: "combined",
	}
	obs := &recordingObserver{}

	res, err := pipeline.New(s, 10, slog.Default()).Run(context.Background(), text, obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"partial-1", summarizer.FailureSentinel, "partial-3"}
	if !slices.Equal(res.Partials, want) {
		t.Fatalf("unexpected partials: got %q want %q", res.Partials, want)
	}

	if !strings.Contains(s.prompts[len(s.prompts)-1], summarizer.FailureSentinel) {
		t.Fatalf("expected failed partial to flow into the final prompt")
	}
}

func TestRunFinalFailureKeepsPartials(t *testing.T) {
	s := &scriptedSummarizer{finalText: summarizer.FailureSentinel}
	obs := &recordingObserver{}

	res, err := pipeline.New(s, 10, slog.Default()).Run(context.Background(), "short text", obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.FinalFailed {
		t.Fatalf("expected final failure to be reported")
	}
	if !slices.Equal(res.Partials, []string{"partial-1"}) {
		t.Fatalf("unexpected partials: %q", res.Partials)
	}

	wantEvents := []string{"chunk 1/1", "partials", "final failed"}
	if !slices.Equal(obs.events, wantEvents) {
		t.Fatalf("unexpected events: got %q want %q", obs.events, wantEvents)
	}
}

func TestRunAbortsOnSummarizerError(t *testing.T) {
	s := &scriptedSummarizer{failAt: 2, finalText: "combined"}
	obs := &recordingObserver{}

	res, err := pipeline.New(s, 5, slog.Default()).Run(context.Background(), strings.Repeat("y", 15), obs)
	if err == nil {
		t.Fatalf("expected error")
	}

	if len(s.prompts) != 2 {
		t.Fatalf("expected pipeline to stop after failing call, got %d calls", len(s.prompts))
	}
	if res == nil || !slices.Equal(res.Partials, []string{"partial-1"}) {
		t.Fatalf("expected partials collected before the failure to be returned")
	}
	if slices.Contains(obs.events, "partials") {
		t.Fatalf("expected no partial rendering after an aborted run")
	}
}

func TestRunWithoutSummarizer(t *testing.T) {
	if _, err := pipeline.New(nil, 0, nil).Run(context.Background(), "text", nil); err == nil {
		t.Fatalf("expected error without summarizer")
	}
}

type echoCompleter struct {
	mu    sync.Mutex
	calls []string
}

func (c *echoCompleter) Complete(_ context.Context, prompt string) summarizer.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, prompt)
	if strings.HasPrefix(prompt, finalMarker) {
		return summarizer.Success("- Full Summary: greeting")
	}

	return summarizer.Success("- Summary: hello")
}

func TestRunEndToEndFromPDF(t *testing.T) {
	text, err := extractor.ExtractText(pdftest.Build("Hello world."))
	if err != nil {
		t.Fatalf("extract text: %v", err)
	}
	if text != "Hello world." {
		t.Fatalf("unexpected text: %q", text)
	}

	completer := &echoCompleter{}
	client := summarizer.NewClient(completer)
	obs := &recordingObserver{}

	res, err := pipeline.New(client, 0, slog.Default()).Run(context.Background(), text, obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(res.Chunks, []string{"Hello world."}) {
		t.Fatalf("unexpected chunks: %q", res.Chunks)
	}
	if len(completer.calls) != 2 {
		t.Fatalf("expected one chunk call and one final call, got %d", len(completer.calls))
	}
	if !strings.Contains(completer.calls[0], "Hello world.") {
		t.Fatalf("chunk prompt does not embed the document text")
	}
	if obs.final != "- Full Summary: greeting" || res.Final != obs.final {
		t.Fatalf("artifact content does not match final call result: %q", obs.final)
	}
}
