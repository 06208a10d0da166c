package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = "claude-haiku-4-5"

type AnthropicBackend struct {
	client *anthropic.Client
}

func NewAnthropicBackend(apiKey string, opts ...option.RequestOption) *AnthropicBackend {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := anthropic.NewClient(opts...)
	return &AnthropicBackend{client: &client}
}

func (b *AnthropicBackend) Name() string {
	return "anthropic"
}

func (b *AnthropicBackend) DefaultModel() string {
	return DefaultAnthropicModel
}

// Complete sends temperature only; newer Claude models reject temperature
// and top_p in the same request.
func (b *AnthropicBackend) Complete(ctx context.Context, req ChatRequest) (string, error) {
	var raw *http.Response

	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   req.MaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}, option.WithResponseInto(&raw))

	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{StatusCode: apiErr.StatusCode, Message: errorMessage("", apiErr.StatusCode)}
		}
		if raw != nil {
			if raw.StatusCode >= http.StatusBadRequest {
				return "", &UpstreamError{StatusCode: raw.StatusCode, Message: http.StatusText(raw.StatusCode)}
			}
			return "", fmt.Errorf("%w: %v", ErrResponseFormat, err)
		}
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", fmt.Errorf("%w: no text content from anthropic", ErrResponseFormat)
	}

	return resp.Content[0].Text, nil
}
