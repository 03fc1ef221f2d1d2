package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram counts message length in UTF-16 code units.
const messageLimit = 4096

func (b *Bot) sendMarkdown(ctx context.Context, chatID int64, text string) error {
	message := tgbotapi.NewMessage(chatID, b.normalizeText(ctx, chatID, text))

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2
	message.DisableWebPagePreview = true

	_, err := b.rateLimiter.Send(ctx, message)
	return err
}

// sendPlain sends model output verbatim, split across as many messages as
// needed.
func (b *Bot) sendPlain(ctx context.Context, chatID int64, text string) error {
	for i, part := range splitMessage(b.normalizeText(ctx, chatID, text), messageLimit) {
		message := tgbotapi.NewMessage(chatID, part)
		message.DisableWebPagePreview = true

		if _, err := b.rateLimiter.Send(ctx, message); err != nil {
			return fmt.Errorf("send part %d: %w", i+1, err)
		}
	}

	return nil
}

func (b *Bot) sendDocument(
	ctx context.Context,
	chatID int64,
	name string,
	content []byte,
	caption string,
) error {
	document := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  name,
		Bytes: content,
	})
	document.Caption = caption

	_, err := b.rateLimiter.Send(ctx, document)
	return err
}

func (b *Bot) normalizeText(ctx context.Context, chatID int64, text string) string {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.WarnContext(ctx, "Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	return normalizedText
}

// splitMessage cuts text into pieces of at most limit UTF-16 code units,
// preferring to cut right after a newline. Empty text yields one empty piece
// so callers still send something.
func splitMessage(text string, limit int) []string {
	if text == "" {
		return []string{""}
	}

	var parts []string

	start := 0
	units := 0
	lastNewline := -1

	for i, r := range text {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}

		if units+n > limit && i > start {
			cut := i
			if lastNewline > start && utf16Len(text[lastNewline:i])+n <= limit {
				cut = lastNewline
			}

			parts = append(parts, text[start:cut])
			start = cut
			units = utf16Len(text[start:i])
			lastNewline = -1
		}

		units += n
		if r == '\n' {
			lastNewline = i + 1
		}
	}

	return append(parts, text[start:])
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
