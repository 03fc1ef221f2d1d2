package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdfsummarizer/internal/markdown"
	"pdfsummarizer/internal/pipeline"
)

//nolint:gochecknoglobals // Rendered once, never modified.
var (
	partialSummariesHeader = "🔹 " + markdown.Bold("Partial Summaries")
	finalSummaryHeader     = "🔹 " + markdown.Bold("Final Combined Summary")
)

const (
	finalCompleteText      = "✅ Final summary complete\\!"
	finalFailedText        = "⚠️ Final summary failed\\. You can use the partial summaries above\\."
)

// chatObserver renders pipeline events into a Telegram chat. Send errors do
// not stop the pipeline; they are collected and reported after the run.
type chatObserver struct {
	bot    *Bot
	chatID int64
	errs   []error
}

var _ pipeline.Observer = (*chatObserver)(nil)

func newChatObserver(b *Bot, chatID int64) *chatObserver {
	return &chatObserver{bot: b, chatID: chatID}
}

func (o *chatObserver) Err() error {
	return errors.Join(o.errs...)
}

func (o *chatObserver) record(ctx context.Context, event string, err error) {
	if err == nil {
		return
	}

	o.bot.log.WarnContext(ctx, "Failed to render pipeline event",
		"error", err,
		"event", event,
		"chatID", o.chatID)

	o.errs = append(o.errs, fmt.Errorf("render %s: %w", event, err))
}

func (o *chatObserver) RetryScheduled(ctx context.Context, attempt, retries int, wait time.Duration) {
	text := fmt.Sprintf("⚠️ Rate limit hit\\. Retrying in %s\\.\\.\\. \\(%d/%d\\)",
		markdown.EscapeV2(wait.String()), attempt, retries)

	o.record(ctx, "retry", o.bot.sendMarkdown(ctx, o.chatID, text))
}

func (o *chatObserver) ChunkStarted(ctx context.Context, part, total int) {
	text := fmt.Sprintf("ℹ️ Summarizing part %d of %d\\.\\.\\.", part, total)

	o.record(ctx, "chunk", o.bot.sendMarkdown(ctx, o.chatID, text))
}

func (o *chatObserver) PartialSummaries(ctx context.Context, partials []string) {
	if err := o.bot.sendMarkdown(ctx, o.chatID, partialSummariesHeader); err != nil {
		o.record(ctx, "partials", err)
		return
	}

	for i, partial := range partials {
		o.record(ctx, "partials", o.bot.sendPlain(ctx, o.chatID, partialLabel(i+1)+"\n\n"+partial))
	}
}

func (o *chatObserver) FinalSummaryReady(ctx context.Context, summary string) {
	if err := o.bot.sendMarkdown(ctx, o.chatID, finalSummaryHeader); err != nil {
		o.record(ctx, "final", err)
		return
	}

	o.record(ctx, "final", o.bot.sendMarkdown(ctx, o.chatID, finalCompleteText))
	o.record(ctx, "final", o.bot.sendPlain(ctx, o.chatID, summary))
	o.record(ctx, "final", o.bot.sendDocument(
		ctx,
		o.chatID,
		pipeline.ArtifactName,
		[]byte(summary),
		documentCaptionText,
	))
}

func (o *chatObserver) FinalSummaryFailed(ctx context.Context) {
	if err := o.bot.sendMarkdown(ctx, o.chatID, finalSummaryHeader); err != nil {
		o.record(ctx, "final", err)
		return
	}

	o.record(ctx, "final", o.bot.sendMarkdown(ctx, o.chatID, finalFailedText))
}

func partialLabel(part int) string {
	return fmt.Sprintf("📄 Part %d", part)
}
