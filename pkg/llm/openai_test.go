package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-playground/assert/v2"
)

func completionBody(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "qwen-max",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func TestOpenAIBackend_Success(t *testing.T) {
	var got map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody("今天也要好好爱你"))
	}))
	defer srv.Close()

	backend := NewOpenAIBackend("test-key", srv.URL+"/chat/completions")
	content, err := backend.Complete(context.Background(), ChatRequest{
		System:      "system",
		User:        "user",
		Model:       "qwen-max",
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   450,
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, "今天也要好好爱你", content)
	assert.Equal(t, "qwen-max", got["model"])
	assert.Equal(t, 0.7, got["temperature"])
	assert.Equal(t, 0.9, got["top_p"])
	assert.Equal(t, float64(450), got["max_tokens"])

	messages := got["messages"].([]interface{})
	assert.Equal(t, 2, len(messages))
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])
}

func TestOpenAIBackend_StatusErrors(t *testing.T) {
	statuses := []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusUnauthorized}

	for _, status := range statuses {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"nope","type":"server_error"}}`))
		}))

		backend := NewOpenAIBackend("test-key", srv.URL)
		_, err := backend.Complete(context.Background(), ChatRequest{Model: "qwen-max"})
		srv.Close()

		var upstream *UpstreamError
		assert.Equal(t, true, errors.As(err, &upstream))
		assert.Equal(t, status, upstream.StatusCode)
	}
}

func TestOpenAIBackend_MissingChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-2","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	backend := NewOpenAIBackend("test-key", srv.URL)
	_, err := backend.Complete(context.Background(), ChatRequest{Model: "qwen-max"})

	assert.Equal(t, true, errors.Is(err, ErrResponseFormat))
}

func TestGenerator_ThreeServerErrorsAgainstEndpoint(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"internal error"}}`))
	}))
	defer srv.Close()

	rec := &sleepRecorder{}
	g := NewGenerator(NewOpenAIBackend("test-key", srv.URL), Config{APIKey: "test-key"}, WithSleep(rec.sleep))

	_, err := g.Generate(context.Background(), "prompt", "system")

	var upstream *UpstreamError
	assert.Equal(t, true, errors.As(err, &upstream))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
