package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	DefaultModel       = "qwen-max"
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
	DefaultMaxTokens   = 450
	DefaultTimeout     = 30 * time.Second

	maxAttempts = 3
	minLength   = 150
	maxLength   = 350
)

type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int64
	Timeout     time.Duration
}

// DefaultConfig returns the sampling settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
	}
}

// withDefaults fills only fields whose zero value cannot be meant literally.
// Temperature and TopP are passed through as given.
func (c Config) withDefaults(backend Backend) Config {
	if c.Model == "" {
		c.Model = DefaultModel
		if d, ok := backend.(interface{ DefaultModel() string }); ok {
			c.Model = d.DefaultModel()
		}
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Option func(*Generator)

// WithSleep replaces the backoff wait, mostly for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(g *Generator) {
		g.sleep = sleep
	}
}

// Generator wraps a Backend with the credential check, retry budget and
// response validation.
type Generator struct {
	backend Backend
	cfg     Config
	sleep   SleepFunc
}

func NewGenerator(backend Backend, cfg Config, opts ...Option) *Generator {
	g := &Generator{
		backend: backend,
		cfg:     cfg.withDefaults(backend),
		sleep:   contextSleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Generate(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	if g.cfg.APIKey == "" {
		return "", ErrConfiguration
	}

	req := ChatRequest{
		System:      systemPrompt,
		User:        userPrompt,
		Model:       g.cfg.Model,
		Temperature: g.cfg.Temperature,
		TopP:        g.cfg.TopP,
		MaxTokens:   g.cfg.MaxTokens,
	}

	source := g.backend.Name()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		last := attempt == maxAttempts-1

		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		content, err := g.backend.Complete(attemptCtx, req)
		cancel()

		if err == nil {
			content = cleanContent(content)
			validateLength(source, content)
			return content, nil
		}

		var upstream *UpstreamError
		switch {
		case errors.Is(err, ErrResponseFormat):
			slog.Error("malformed completion response", "source", source, "attempt", attempt+1, "error", err)
			return "", err

		case errors.As(err, &upstream) && upstream.StatusCode == http.StatusTooManyRequests:
			if last {
				return "", fmt.Errorf("%w after %d attempts: %w", ErrRateLimited, maxAttempts, upstream)
			}
			wait := time.Duration(1<<attempt+1) * time.Second
			slog.Warn("rate limited, backing off", "source", source, "attempt", attempt+1, "wait", wait)
			if err := g.sleep(ctx, wait); err != nil {
				return "", err
			}

		case errors.As(err, &upstream):
			slog.Error("completion endpoint error", "source", source, "attempt", attempt+1, "status", upstream.StatusCode, "error", upstream.Message)
			if last {
				return "", fmt.Errorf("completion failed after %d attempts: %w", maxAttempts, upstream)
			}

		default:
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			slog.Error("completion request failed", "source", source, "attempt", attempt+1, "timeout", errors.Is(err, context.DeadlineExceeded), "error", err)
			if last {
				return "", fmt.Errorf("%w: %w", ErrTransient, err)
			}
			if err := g.sleep(ctx, time.Duration(1<<attempt)*time.Second); err != nil {
				return "", err
			}
		}
	}

	// unreachable: the final attempt always returns
	return "", ErrTransient
}

func validateLength(source, content string) {
	n := utf8.RuneCountInString(content)
	if n > maxLength {
		slog.Warn("generated content longer than recommended", "source", source, "length", n, "max", maxLength)
	} else if n < minLength {
		slog.Warn("generated content shorter than recommended", "source", source, "length", n, "min", minLength)
	}
}

func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
