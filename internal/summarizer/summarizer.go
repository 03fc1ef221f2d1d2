package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultRetries   = 5
	DefaultRetryWait = 5 * time.Second

	// FailureSentinel is returned in place of a summary once every attempt
	// was rate limited.
	FailureSentinel = "Failed due to rate limit."
	// FailureMarker is the substring that identifies FailureSentinel inside
	// any text.
	FailureMarker = "Failed due to rate limit"
)

// FailureKind classifies a failed completion attempt.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureRateLimit
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureRateLimit:
		return "rate_limit"
	case FailureOther:
		return "other"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Result is the outcome of a single completion attempt. Text is set when
// Failure is FailureNone, Err is set otherwise.
type Result struct {
	Text    string
	Failure FailureKind
	Err     error
}

func Success(text string) Result {
	return Result{Text: text}
}

func RateLimited(err error) Result {
	return Result{Failure: FailureRateLimit, Err: err}
}

func Failed(err error) Result {
	return Result{Failure: FailureOther, Err: err}
}

// Completer sends one prompt to a remote model.
type Completer interface {
	Complete(ctx context.Context, prompt string) Result
}

// RetryNotifier is told about every retry before the client waits.
type RetryNotifier interface {
	RetryScheduled(ctx context.Context, attempt, retries int, wait time.Duration)
}

// IsFailure reports whether text carries the rate limit failure marker.
func IsFailure(text string) bool {
	return strings.Contains(text, FailureMarker)
}

// Client wraps a Completer with a bounded retry on rate limit failures.
type Client struct {
	completer Completer
	retries   int
	wait      time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

func WithRetries(retries int) Option {
	return func(c *Client) {
		if retries > 0 {
			c.retries = retries
		}
	}
}

func WithRetryWait(wait time.Duration) Option {
	return func(c *Client) {
		if wait >= 0 {
			c.wait = wait
		}
	}
}

// WithSleep replaces the wait between attempts. Intended for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

func NewClient(completer Completer, opts ...Option) *Client {
	c := &Client{
		completer: completer,
		retries:   DefaultRetries,
		wait:      DefaultRetryWait,
		sleep:     sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Retries() int {
	return c.retries
}

func (c *Client) RetryWait() time.Duration {
	return c.wait
}

// Summarize returns the model output for prompt. Rate limited attempts are
// retried up to the retry budget; when the budget runs out FailureSentinel
// is returned with a nil error. Any other failure is returned right away.
func (c *Client) Summarize(
	ctx context.Context,
	prompt string,
	notifier RetryNotifier,
) (string, error) {
	if c.completer == nil {
		return "", errors.New("completer is not configured")
	}

	for attempt := 1; attempt <= c.retries; attempt++ {
		res := c.completer.Complete(ctx, prompt)

		switch res.Failure {
		case FailureNone:
			return res.Text, nil
		case FailureRateLimit:
		default:
			return "", fmt.Errorf("complete (attempt = %d): %w", attempt, res.Err)
		}

		if attempt == c.retries {
			break
		}

		if notifier != nil {
			notifier.RetryScheduled(ctx, attempt, c.retries, c.wait)
		}

		if err := c.sleep(ctx, c.wait); err != nil {
			return "", fmt.Errorf("wait before retry: %w", err)
		}
	}

	return FailureSentinel, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
