package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration  = errors.New("llm: api credential not configured")
	ErrRateLimited    = errors.New("llm: rate limited")
	ErrTransient      = errors.New("llm: transport failure")
	ErrResponseFormat = errors.New("llm: unexpected response format")
)

// UpstreamError is a non-2xx answer from the completion endpoint.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm: upstream status %d: %s", e.StatusCode, e.Message)
}

type ChatRequest struct {
	System      string
	User        string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int64
}

// Backend performs exactly one completion call. Implementations must not
// retry on their own and must report HTTP failures as *UpstreamError and
// undecodable 2xx bodies as ErrResponseFormat.
type Backend interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
	Name() string
}

// TextGenerator is what the broadcast pipeline depends on.
type TextGenerator interface {
	Generate(ctx context.Context, userPrompt, systemPrompt string) (string, error)
}

func cleanContent(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") && len(content) > 6 {
		content = strings.TrimPrefix(content, "```text")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
