package db

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

const (
	AudioQueueKey     = "loveday:queue:audio"
	DeadLetterKey     = "loveday:queue:failed"
	BroadcastChannel  = "loveday:broadcast"
	ReportCachePrefix = "loveday:report:"
)

func ConnectRedis(ctx context.Context, redisURL string) error {
	if redisURL == "" {
		return errors.New("REDIS_URL is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(ctx).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

// Queue is a redis list used as a FIFO work queue.
type Queue struct {
	client *redis.Client
	key    string
}

func NewQueue(client *redis.Client, key string) *Queue {
	return &Queue{client: client, key: key}
}

func (q *Queue) Push(ctx context.Context, data string) error {
	return q.client.LPush(ctx, q.key, data).Err()
}

// Pop blocks up to timeout; it returns redis.Nil when nothing arrived.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		return "", err
	}
	return result[1], nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
