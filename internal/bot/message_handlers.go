package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pdfsummarizer/internal/extractor"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeText = `📄 *AI PDF Summarizer*

Upload a PDF file and get a structured summary powered by GPT\.

I will summarize the document part by part, combine the parts into one summary and send it back as a text file\.

⚠️ Uploaded files are not stored\. They're used only for summarization\.`

const (
	hintText            = "📎 Send me a PDF file as a document\\."
	notPDFText          = "✖️ Only PDF files are supported\\."
	tooLargeText        = "✖️ The file is too large\\. Bots can download files up to 20 MB\\."
	processingText      = "⏳ Processing PDF\\.\\.\\."
	downloadFailedText  = "❌ Failed to download the file\\."
	extractFailedText   = "❌ Failed to read the PDF\\. Make sure the file is a valid PDF\\."
	noTextText          = "✖️ No text was found in the PDF\\. Scanned documents are not supported\\."
	pipelineFailedText  = "❌ Summarization failed\\. Please try again later\\."
	documentCaptionText = "📥 Download Summary"
)

// failureNoticeTimeout bounds the failure notice, which is sent even when the
// upload context has already ended.
const failureNoticeTimeout = 10 * time.Second

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	if message.Document != nil {
		return b.handleDocument(ctx, chatID, message.Document)
	}

	text := strings.TrimSpace(message.Text)

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.sendMarkdown(ctx, chatID, welcomeText)
	default:
		return b.sendMarkdown(ctx, chatID, hintText)
	}
}

func (b *Bot) handleDocument(
	ctx context.Context,
	chatID int64,
	doc *tgbotapi.Document,
) error {
	if !isPDFDocument(doc) {
		return b.sendMarkdown(ctx, chatID, notPDFText)
	}

	if doc.FileSize > maxDocumentSize {
		return b.sendMarkdown(ctx, chatID, tooLargeText)
	}

	return b.withSpinner(ctx, chatID, tgbotapi.ChatTyping, func() error {
		if err := b.sendMarkdown(ctx, chatID, processingText); err != nil {
			return fmt.Errorf("send message: %w", err)
		}

		data, err := b.download(ctx, doc.FileID)
		if err != nil {
			return b.fail(ctx, chatID, downloadFailedText, fmt.Errorf("download document: %w", err))
		}

		text, err := extractor.ExtractText(data)
		if err != nil {
			return b.fail(ctx, chatID, extractFailedText, fmt.Errorf("extract text: %w", err))
		}

		b.log.InfoContext(ctx, "PDF text is extracted",
			"chatID", chatID,
			"fileSize", len(data),
			"textLen", len(text))

		if strings.TrimSpace(text) == "" {
			return b.sendMarkdown(ctx, chatID, noTextText)
		}

		obs := newChatObserver(b, chatID)

		res, err := b.pipeline.Run(ctx, text, obs)
		if err != nil {
			return b.fail(ctx, chatID, pipelineFailedText, errors.Join(fmt.Errorf("run pipeline: %w", err), obs.Err()))
		}

		b.log.InfoContext(ctx, "PDF is summarized",
			"chatID", chatID,
			"chunkCount", len(res.Chunks),
			"finalFailed", res.FinalFailed)

		return obs.Err()
	})
}

// fail tells the user that processing stopped and returns cause joined with
// any error from sending that notice.
func (b *Bot) fail(ctx context.Context, chatID int64, text string, cause error) error {
	errs := []error{cause}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureNoticeTimeout)
	defer cancel()

	if err := b.sendMarkdown(sendCtx, chatID, text); err != nil {
		errs = append(errs, fmt.Errorf("send message: %w", err))
	}

	return errors.Join(errs...)
}
