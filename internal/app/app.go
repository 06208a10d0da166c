// Package app builds the shared components used by the api, the audio
// worker and lovectl from one Config.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/chanxe/love-plain/db"
	"github.com/chanxe/love-plain/internal/audio"
	"github.com/chanxe/love-plain/internal/broadcast"
	"github.com/chanxe/love-plain/internal/config"
	"github.com/chanxe/love-plain/internal/repository"
	"github.com/chanxe/love-plain/pkg/artifact"
	"github.com/chanxe/love-plain/pkg/llm"
	"github.com/chanxe/love-plain/pkg/tts"

	"github.com/redis/go-redis/v9"
)

func NewGenerator(cfg config.LLM) (*llm.Generator, error) {
	switch cfg.Provider {
	case "", "openai":
		backend := llm.NewOpenAIBackend(cfg.APIKey, cfg.Endpoint)
		return llm.NewGenerator(backend, llm.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}), nil
	case "anthropic":
		backend := llm.NewAnthropicBackend(cfg.AnthropicAPIKey)
		return llm.NewGenerator(backend, llm.Config{
			APIKey:      cfg.AnthropicAPIKey,
			Model:       cfg.AnthropicModel,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
}

func NewEngine(cfg config.Audio) (tts.Engine, error) {
	switch cfg.Engine {
	case "", "edge":
		return tts.NewEdgeTTS(cfg.EdgeBinary, cfg.Voice), nil
	case "openai":
		return tts.NewOpenAISpeech(cfg.OpenAIAPIKey, cfg.OpenAIVoice), nil
	default:
		return nil, fmt.Errorf("unknown TTS_ENGINE %q", cfg.Engine)
	}
}

// NewArtifactStore uses S3 when a bucket is configured and the local audio
// directory otherwise.
func NewArtifactStore(cfg *config.Config) (artifact.Store, error) {
	if cfg.S3.Bucket != "" {
		return artifact.NewS3Store(artifact.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
			Prefix:          "reports",
		})
	}
	return artifact.NewLocalStore(cfg.Audio.Dir, cfg.Audio.BaseURL)
}

// NewReports wraps the postgres repository in the redis cache when a client
// is available.
func NewReports(conn *sql.DB, rdb *redis.Client, ttl time.Duration) repository.Reports {
	var reports repository.Reports = repository.NewReportRepository(conn)
	if rdb != nil {
		reports = repository.NewCachedReportStore(reports, rdb, ttl)
	}
	return reports
}

func NewAudioService(cfg *config.Config, reports audio.ReportAudioStore) (*audio.Service, error) {
	engine, err := NewEngine(cfg.Audio)
	if err != nil {
		return nil, err
	}
	store, err := NewArtifactStore(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("audio synthesis configured", "engine", engine.Name(), "store", store.Name())
	return audio.NewService(engine, store, reports), nil
}

func NewPipeline(cfg *config.Config, reports broadcast.ReportStore, rdb *redis.Client) (*broadcast.Pipeline, error) {
	generator, err := NewGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Broadcast.Location()
	if err != nil {
		return nil, err
	}

	opts := []broadcast.PipelineOption{
		broadcast.WithClock(broadcast.SystemClock{Location: loc}),
		broadcast.WithRandomSource(broadcast.NewRandomSource(time.Now().UnixNano())),
		broadcast.WithEpochYear(cfg.Broadcast.EpochYear),
	}
	if rdb != nil {
		opts = append(opts, broadcast.WithAudioQueue(audio.NewQueue(db.NewQueue(rdb, db.AudioQueueKey))))
	}

	return broadcast.NewPipeline(repository.NewMemoryRepository(db.DB), reports, generator, opts...), nil
}

// Connect opens postgres and, when configured, redis. The redis client is
// nil when REDIS_URL is empty.
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if err := db.Connect(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("error connecting to DB: %w", err)
	}
	if err := db.Migrate(db.DB); err != nil {
		return nil, fmt.Errorf("error migrating DB: %w", err)
	}

	if cfg.RedisURL == "" {
		slog.Warn("REDIS_URL is not set, running without cache, queue or push")
		return nil, nil
	}
	if err := db.ConnectRedis(ctx, cfg.RedisURL); err != nil {
		return nil, fmt.Errorf("error connecting to Redis: %w", err)
	}
	return db.Redis, nil
}
