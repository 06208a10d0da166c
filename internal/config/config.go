// Package config loads process configuration from the environment (and an
// optional .env file). Every field has a documented default except the
// credentials.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	FrontendURL string `env:"FRONTEND_URL"`
	LogFile     string `env:"LOG_FILE"`

	LLM       LLM
	Broadcast Broadcast
	Audio     Audio
	S3        S3

	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`
}

type LLM struct {
	Provider    string        `env:"LLM_PROVIDER" envDefault:"openai"`
	APIKey      string        `env:"BAILIAN_API_KEY"`
	Endpoint    string        `env:"BAILIAN_ENDPOINT" envDefault:"https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"`
	Model       string        `env:"BAILIAN_MODEL" envDefault:"qwen-max"`
	Temperature float64       `env:"BAILIAN_TEMPERATURE" envDefault:"0.7"`
	TopP        float64       `env:"BAILIAN_TOP_P" envDefault:"0.9"`
	MaxTokens   int64         `env:"BAILIAN_MAX_TOKENS" envDefault:"450"`
	Timeout     time.Duration `env:"BAILIAN_TIMEOUT" envDefault:"30s"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku-4-5"`
}

type Broadcast struct {
	// Time is the daily local fire time, HH:MM.
	Time      string        `env:"BROADCAST_TIME" envDefault:"08:00"`
	Tick      time.Duration `env:"BROADCAST_TICK" envDefault:"60s"`
	TimeZone  string        `env:"BROADCAST_TZ" envDefault:"Local"`
	EpochYear int           `env:"HISTORY_EPOCH_YEAR" envDefault:"2020"`
	Enabled   bool          `env:"BROADCAST_SCHEDULER" envDefault:"true"`
}

type Audio struct {
	Engine       string `env:"TTS_ENGINE" envDefault:"edge"`
	Voice        string `env:"TTS_VOICE" envDefault:"zh-CN-XiaoxiaoNeural"`
	EdgeBinary   string `env:"EDGE_TTS_BIN" envDefault:"edge-tts"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIVoice  string `env:"OPENAI_TTS_VOICE" envDefault:"nova"`
	Dir          string `env:"AUDIO_DIR" envDefault:"static/reports"`
	BaseURL      string `env:"AUDIO_BASE_URL" envDefault:"/static/reports"`
	Workers      int    `env:"AUDIO_WORKERS" envDefault:"1"`
}

type S3 struct {
	Bucket          string `env:"S3_BUCKET"`
	Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"S3_ENDPOINT"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if _, _, err := cfg.Broadcast.Clock(); err != nil {
		return nil, err
	}
	if _, err := cfg.Broadcast.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Clock parses Time into hour and minute.
func (b Broadcast) Clock() (hour, minute int, err error) {
	parts := strings.Split(b.Time, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("BROADCAST_TIME %q: want HH:MM", b.Time)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("BROADCAST_TIME %q: invalid hour", b.Time)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("BROADCAST_TIME %q: invalid minute", b.Time)
	}
	return hour, minute, nil
}

func (b Broadcast) Location() (*time.Location, error) {
	if b.TimeZone == "" || b.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(b.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("BROADCAST_TZ %q: %w", b.TimeZone, err)
	}
	return loc, nil
}
