package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type fakeBackend struct {
	results  []fakeResult
	calls    int
	requests []ChatRequest
}

type fakeResult struct {
	content string
	err     error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(ctx context.Context, req ChatRequest) (string, error) {
	f.requests = append(f.requests, req)
	r := f.results[f.calls]
	f.calls++
	return r.content, r.err
}

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func (s *sleepRecorder) total() time.Duration {
	var sum time.Duration
	for _, w := range s.waits {
		sum += w
	}
	return sum
}

func newTestGenerator(backend Backend, rec *sleepRecorder) *Generator {
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	return NewGenerator(backend, cfg, WithSleep(rec.sleep))
}

func TestGenerate_MissingCredential(t *testing.T) {
	backend := &fakeBackend{}
	g := NewGenerator(backend, Config{})

	_, err := g.Generate(context.Background(), "prompt", "system")

	assert.Equal(t, true, errors.Is(err, ErrConfiguration))
	assert.Equal(t, 0, backend.calls)
}

func TestGenerate_RateLimitBackoff(t *testing.T) {
	content := strings.Repeat("爱", 220)
	backend := &fakeBackend{results: []fakeResult{
		{err: &UpstreamError{StatusCode: http.StatusTooManyRequests}},
		{err: &UpstreamError{StatusCode: http.StatusTooManyRequests}},
		{content: content},
	}}
	rec := &sleepRecorder{}

	got, err := newTestGenerator(backend, rec).Generate(context.Background(), "prompt", "system")

	assert.Equal(t, nil, err)
	assert.Equal(t, content, got)
	assert.Equal(t, 3, backend.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second}, rec.waits)
	assert.Equal(t, 5*time.Second, rec.total())
}

func TestGenerate_RateLimitExhausted(t *testing.T) {
	limited := fakeResult{err: &UpstreamError{StatusCode: http.StatusTooManyRequests}}
	backend := &fakeBackend{results: []fakeResult{limited, limited, limited}}
	rec := &sleepRecorder{}

	_, err := newTestGenerator(backend, rec).Generate(context.Background(), "prompt", "system")

	assert.Equal(t, true, errors.Is(err, ErrRateLimited))
	assert.Equal(t, 3, backend.calls)
	assert.Equal(t, 2, len(rec.waits))
}

func TestGenerate_UpstreamErrorRaisedOnLastAttempt(t *testing.T) {
	failed := fakeResult{err: &UpstreamError{StatusCode: http.StatusInternalServerError, Message: "boom"}}
	backend := &fakeBackend{results: []fakeResult{failed, failed, failed}}
	rec := &sleepRecorder{}

	_, err := newTestGenerator(backend, rec).Generate(context.Background(), "prompt", "system")

	var upstream *UpstreamError
	assert.Equal(t, true, errors.As(err, &upstream))
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Equal(t, 3, backend.calls)
	assert.Equal(t, 0, len(rec.waits))
}

func TestGenerate_UpstreamErrorThenSuccess(t *testing.T) {
	backend := &fakeBackend{results: []fakeResult{
		{err: &UpstreamError{StatusCode: http.StatusBadGateway}},
		{content: "ok"},
	}}
	rec := &sleepRecorder{}

	got, err := newTestGenerator(backend, rec).Generate(context.Background(), "prompt", "system")

	assert.Equal(t, nil, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, backend.calls)
}

func TestGenerate_TransportFailureBackoff(t *testing.T) {
	broken := fakeResult{err: errors.New("connection refused")}
	backend := &fakeBackend{results: []fakeResult{broken, broken, broken}}
	rec := &sleepRecorder{}

	_, err := newTestGenerator(backend, rec).Generate(context.Background(), "prompt", "system")

	assert.Equal(t, true, errors.Is(err, ErrTransient))
	assert.Equal(t, 3, backend.calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, rec.waits)
}

func TestGenerate_TimeoutIsTransient(t *testing.T) {
	backend := &fakeBackend{results: []fakeResult{
		{err: context.DeadlineExceeded},
		{content: "recovered"},
	}}
	rec := &sleepRecorder{}

	got, err := newTestGenerator(backend, rec).Generate(context.Background(), "prompt", "system")

	assert.Equal(t, nil, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, []time.Duration{1 * time.Second}, rec.waits)
}

func TestGenerate_MalformedResponseNotRetried(t *testing.T) {
	backend := &fakeBackend{results: []fakeResult{
		{err: ErrResponseFormat},
		{content: "never reached"},
	}}
	rec := &sleepRecorder{}

	_, err := newTestGenerator(backend, rec).Generate(context.Background(), "prompt", "system")

	assert.Equal(t, true, errors.Is(err, ErrResponseFormat))
	assert.Equal(t, 1, backend.calls)
}

func TestGenerate_LengthOutsideWindowStillReturned(t *testing.T) {
	long := strings.Repeat("长", 400)
	backend := &fakeBackend{results: []fakeResult{{content: long}}}

	got, err := newTestGenerator(backend, &sleepRecorder{}).Generate(context.Background(), "prompt", "system")

	assert.Equal(t, nil, err)
	assert.Equal(t, long, got)
}

func TestGenerate_RequestCarriesDefaults(t *testing.T) {
	backend := &fakeBackend{results: []fakeResult{{content: "ok"}}}

	_, err := newTestGenerator(backend, &sleepRecorder{}).Generate(context.Background(), "user prompt", "system prompt")

	assert.Equal(t, nil, err)
	req := backend.requests[0]
	assert.Equal(t, "user prompt", req.User)
	assert.Equal(t, "system prompt", req.System)
	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, DefaultTemperature, req.Temperature)
	assert.Equal(t, DefaultTopP, req.TopP)
	assert.Equal(t, int64(DefaultMaxTokens), req.MaxTokens)
}

type modelBackend struct {
	fakeBackend
}

func (m *modelBackend) DefaultModel() string { return "backend-model" }

func TestGenerate_ExplicitZeroSamplingKept(t *testing.T) {
	backend := &fakeBackend{results: []fakeResult{{content: "ok"}}}

	g := NewGenerator(backend, Config{APIKey: "test-key", Model: "qwen-plus", Temperature: 0, TopP: 0})
	_, err := g.Generate(context.Background(), "user", "system")

	assert.Equal(t, nil, err)
	req := backend.requests[0]
	assert.Equal(t, "qwen-plus", req.Model)
	assert.Equal(t, 0.0, req.Temperature)
	assert.Equal(t, 0.0, req.TopP)
	assert.Equal(t, int64(DefaultMaxTokens), req.MaxTokens)
}

func TestGenerate_EmptyModelUsesBackendDefault(t *testing.T) {
	backend := &modelBackend{fakeBackend{results: []fakeResult{{content: "ok"}}}}

	_, err := NewGenerator(backend, Config{APIKey: "test-key"}).Generate(context.Background(), "user", "system")

	assert.Equal(t, nil, err)
	assert.Equal(t, "backend-model", backend.requests[0].Model)
}

func TestAnthropicBackend_DefaultModel(t *testing.T) {
	g := NewGenerator(NewAnthropicBackend("key"), Config{APIKey: "key"})

	assert.Equal(t, DefaultAnthropicModel, g.cfg.Model)
}

func TestGenerate_CanceledContextStopsBackoff(t *testing.T) {
	backend := &fakeBackend{results: []fakeResult{
		{err: &UpstreamError{StatusCode: http.StatusTooManyRequests}},
		{content: "never reached"},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGenerator(backend, Config{APIKey: "test-key"})
	_, err := g.Generate(ctx, "prompt", "system")

	assert.Equal(t, true, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, backend.calls)
}
