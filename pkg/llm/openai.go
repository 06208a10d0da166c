package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL is the DashScope OpenAI-compatible endpoint.
const DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/"

// OpenAIBackend talks to any OpenAI-compatible chat completions endpoint.
type OpenAIBackend struct {
	client *openai.Client
}

// NewOpenAIBackend accepts either a base URL or a full .../chat/completions URL.
func NewOpenAIBackend(apiKey, endpoint string) *OpenAIBackend {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL(endpoint)),
		option.WithMaxRetries(0),
	)
	return &OpenAIBackend{client: &client}
}

func baseURL(endpoint string) string {
	if endpoint == "" {
		return DefaultBaseURL
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	endpoint = strings.TrimSuffix(endpoint, "/chat/completions")
	return endpoint + "/"
}

func (b *OpenAIBackend) Name() string {
	return "openai-compatible"
}

func (b *OpenAIBackend) Complete(ctx context.Context, req ChatRequest) (string, error) {
	var raw *http.Response

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
		TopP:        openai.Float(req.TopP),
		MaxTokens:   openai.Int(req.MaxTokens),
	}, option.WithResponseInto(&raw))

	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{StatusCode: apiErr.StatusCode, Message: errorMessage(apiErr.Message, apiErr.StatusCode)}
		}
		if raw != nil {
			if raw.StatusCode >= http.StatusBadRequest {
				return "", &UpstreamError{StatusCode: raw.StatusCode, Message: http.StatusText(raw.StatusCode)}
			}
			return "", fmt.Errorf("%w: %v", ErrResponseFormat, err)
		}
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no choices[0].message.content in response %s", ErrResponseFormat, resp.ID)
	}

	return resp.Choices[0].Message.Content, nil
}

func errorMessage(msg string, status int) string {
	if msg != "" {
		return msg
	}
	return http.StatusText(status)
}
