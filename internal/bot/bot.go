package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"pdfsummarizer/internal/pipeline"
	"pdfsummarizer/internal/ratelimiter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxBackoffSeconds         = 60
	initialBackoffSeconds     = 3
	backoffGrowthFactor       = 2
	resetOffsetBackoffSeconds = 30
	downloadTimeout           = 2 * time.Minute
	defaultUpdateTimeout      = 30 * time.Minute

	BotUpdateTimeout = 60
)

// Runner runs the summary pipeline over extracted text.
type Runner interface {
	Run(ctx context.Context, text string, obs pipeline.Observer) (*pipeline.Result, error)
}

type Bot struct {
	api           *tgbotapi.BotAPI
	rateLimiter   *ratelimiter.RateLimiter
	pipeline      Runner
	download      func(ctx context.Context, fileID string) ([]byte, error)
	allowedUsers  []int64
	updateTimeout time.Duration
	log           *slog.Logger
}

func New(
	token string,
	p Runner,
	allowedUsers []int64,
	updateTimeout time.Duration,
	log *slog.Logger,
) (*Bot, error) {
	token = strings.TrimSpace(token)

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	if updateTimeout <= 0 {
		updateTimeout = defaultUpdateTimeout
	}

	httpClient := &http.Client{Timeout: downloadTimeout}

	b := &Bot{
		api:           api,
		rateLimiter:   ratelimiter.New(api, log),
		pipeline:      p,
		allowedUsers:  allowedUsers,
		updateTimeout: updateTimeout,
		log:           log,
	}
	b.download = func(ctx context.Context, fileID string) ([]byte, error) {
		fileURL, urlErr := api.GetFileDirectURL(fileID)
		if urlErr != nil {
			return nil, fmt.Errorf("get file URL: %w", urlErr)
		}

		return fetchFile(ctx, httpClient, fileURL, maxDocumentSize)
	}

	return b, nil
}

// Username returns the bot's Telegram username.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = BotUpdateTimeout

	backoffSeconds := initialBackoffSeconds

	for {
		select {
		case <-ctx.Done():
			b.log.InfoContext(ctx, "Bot context is done",
				"error", ctx.Err())
			return
		default:
		}

		updates := b.api.GetUpdatesChan(updateConfig)
		updatesClosed := false

		for !updatesClosed {
			select {
			case <-ctx.Done():
				b.log.InfoContext(ctx, "Bot context is done",
					"error", ctx.Err())
				return

			case update, ok := <-updates:
				if !ok {
					updatesClosed = true
					continue
				}
				updateConfig.Offset = update.UpdateID + 1

				b.handleUpdate(ctx, &update)
			}
		}

		if ctx.Err() != nil {
			return
		}

		b.log.WarnContext(ctx, "Update channel is closed, reconnecting...",
			"offset", updateConfig.Offset,
			"backoffSeconds", backoffSeconds)

		if !waitBackoff(ctx, time.Duration(backoffSeconds)*time.Second) {
			b.log.InfoContext(ctx, "Bot context is done",
				"error", ctx.Err())
			return
		}

		backoffSeconds = updateBackoffSeconds(backoffSeconds)
		if backoffSeconds >= resetOffsetBackoffSeconds {
			updateConfig.Offset = 0
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, b.updateTimeout)
	defer cancel()

	chatID, chatType := chatContext(update.Message.Chat)

	var userID int64
	var username string
	if update.Message.From != nil {
		userID = update.Message.From.ID
		username = update.Message.From.UserName
	}

	if !b.userAllowed(userID) {
		b.log.DebugContext(updateCtx, "User is not allowed",
			"userID", userID,
			"chatID", chatID,
			"username", username,
			"chatType", chatType)

		return
	}

	if err := b.handleMessage(updateCtx, update.Message); err != nil {
		b.log.ErrorContext(updateCtx, "Failed to handle message",
			"error", err,
			"chatID", chatID,
			"userID", userID,
			"chatType", chatType,
			"messageID", update.Message.MessageID)
	}
}

func (b *Bot) Stop() {
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func chatContext(chat *tgbotapi.Chat) (int64, string) {
	if chat == nil {
		return 0, ""
	}

	return chat.ID, chat.Type
}

// waitBackoff reports whether the full wait elapsed before ctx was done.
func waitBackoff(ctx context.Context, wait time.Duration) bool {
	t := time.NewTimer(wait)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func updateBackoffSeconds(backoffSeconds int) int {
	if backoffSeconds < maxBackoffSeconds {
		backoffSeconds *= backoffGrowthFactor
		if backoffSeconds > maxBackoffSeconds {
			backoffSeconds = maxBackoffSeconds
		}
	}
	return backoffSeconds
}
