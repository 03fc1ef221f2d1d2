package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultModel = string(openai.ChatModelGPT3_5Turbo)
	Temperature  = 0.3
)

// OpenAICompleter calls OpenAI's Chat Completions API.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAICompleter builds a completer. The SDK's own retries are turned
// off so that Client owns the retry policy.
func NewOpenAICompleter(cfg OpenAIConfig, opts ...option.RequestOption) (*OpenAICompleter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAICompleter{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}, nil
}

func (c *OpenAICompleter) Model() string {
	return c.model
}

// Complete sends prompt as a single user message.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) Result {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(Temperature),
	})
	if err != nil {
		return classify(err)
	}

	if len(resp.Choices) == 0 {
		return Failed(fmt.Errorf("response has no choices (model = %s)", resp.Model))
	}

	return Success(resp.Choices[0].Message.Content)
}

func classify(err error) Result {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return RateLimited(fmt.Errorf("do request: %w", err))
	}

	return Failed(fmt.Errorf("do request: %w", err))
}
