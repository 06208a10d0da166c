// Package notify pushes newly created broadcasts to subscribers.
package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const EventBroadcast = "love_one_day_broadcast"

type Event struct {
	ID            int64  `json:"id"`
	Text          string `json:"text"`
	Date          string `json:"date"`
	BroadcastType string `json:"broadcastType"`
}

type Envelope struct {
	Event string `json:"event"`
	Data  Event  `json:"data"`
}

type Sink interface {
	Publish(ctx context.Context, event Event) error
}

func encode(event Event) ([]byte, error) {
	return json.Marshal(Envelope{Event: EventBroadcast, Data: event})
}

// RedisSink publishes on a pub/sub channel shared by every api replica.
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Publish(ctx context.Context, event Event) error {
	data, err := encode(event)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, data).Err()
}
