package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/gorilla/websocket"
)

func TestHub_DeliversEnvelopeToSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conns := make([]*websocket.Conn, 2)
	for i := range conns {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
		conns[i] = conn
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() < len(conns) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 2, hub.Clients())

	event := Event{ID: 3, Text: "早安", Date: "2024年2月14日", BroadcastType: "anniversary"}
	if err := hub.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}

		var env Envelope
		json.Unmarshal(data, &env)
		assert.Equal(t, EventBroadcast, env.Event)
		assert.Equal(t, event, env.Data)
	}
}

func TestHub_RejectsUnknownOrigin(t *testing.T) {
	check := originChecker([]string{"http://localhost:3000"})

	req := httptest.NewRequest("GET", "/ws", nil)
	assert.Equal(t, true, check(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.Equal(t, true, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.Equal(t, false, check(req))
}

func TestEncode_PayloadShape(t *testing.T) {
	data, err := encode(Event{ID: 1, Text: "t", Date: "2024年2月14日", BroadcastType: "historical_events"})
	assert.Equal(t, nil, err)

	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	assert.Equal(t, "love_one_day_broadcast", raw["event"])

	payload := raw["data"].(map[string]interface{})
	assert.Equal(t, float64(1), payload["id"])
	assert.Equal(t, "t", payload["text"])
	assert.Equal(t, "2024年2月14日", payload["date"])
	assert.Equal(t, "historical_events", payload["broadcastType"])
}
