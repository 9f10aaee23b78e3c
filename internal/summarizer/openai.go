package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docsummarizer/internal/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1/"
	DefaultModel   = "llama-3.1-8b-instant"

	// Some OpenAI-compatible gateways reject non-browser clients.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

// OpenAICompleter calls an OpenAI-compatible Chat Completions API.
type OpenAICompleter struct {
	client *openai.Client
}

// NewOpenAICompleter builds a completer. An empty API key is accepted so the
// failure is reported per invocation rather than at startup.
func NewOpenAICompleter(cfg OpenAIConfig) *OpenAICompleter {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return &OpenAICompleter{}
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHeader("User-Agent", browserUserAgent),
		option.WithMaxRetries(0),
	)

	return &OpenAICompleter{client: &client}
}

// Complete issues a single chat completion request and returns the text of
// the first choice.
func (c *OpenAICompleter) Complete(
	ctx context.Context,
	req CompletionRequest,
) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("%w: API key is not configured", domain.ErrConfiguration)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		default:
			return "", fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: status %d: %w", domain.ErrCompletionAPI, apiErr.StatusCode, err)
		}

		return "", fmt.Errorf("%w: do request: %w", domain.ErrCompletionAPI, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices (id = %s)", domain.ErrCompletionAPI, resp.ID)
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: first choice has no content (finishReason = %s)",
			domain.ErrCompletionAPI, resp.Choices[0].FinishReason)
	}

	return content, nil
}
