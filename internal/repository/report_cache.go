package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/chanxe/love-plain/db"
	"github.com/chanxe/love-plain/internal/broadcast"
	"github.com/chanxe/love-plain/internal/model"

	"github.com/redis/go-redis/v9"
)

// Reports is the full report persistence contract shared by the postgres
// repository, the in-memory store and the cache decorator.
type Reports interface {
	broadcast.ReportStore
	GetByID(ctx context.Context, id int64) (*model.Report, error)
	UpdateAudioURL(ctx context.Context, id int64, url string) error
	List(ctx context.Context, limit, offset int) ([]model.Report, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// CachedReportStore is a read-through redis cache keyed by report date.
// Redis failures degrade to the underlying store.
type CachedReportStore struct {
	inner  Reports
	client *redis.Client
	ttl    time.Duration
}

func NewCachedReportStore(inner Reports, client *redis.Client, ttl time.Duration) *CachedReportStore {
	return &CachedReportStore{inner: inner, client: client, ttl: ttl}
}

type cachedReport struct {
	ID            int64     `json:"id"`
	ReportDate    string    `json:"report_date"`
	Content       string    `json:"content"`
	BroadcastType string    `json:"broadcast_type"`
	AudioURL      *string   `json:"audio_url"`
	CreatedAt     time.Time `json:"created_at"`
	IsPushed      bool      `json:"is_pushed"`
}

func cacheKey(date time.Time) string {
	return db.ReportCachePrefix + date.Format(time.DateOnly)
}

func encodeReport(r *model.Report) ([]byte, error) {
	return json.Marshal(cachedReport{
		ID:            r.ID,
		ReportDate:    r.ReportDate.Format(time.DateOnly),
		Content:       r.Content,
		BroadcastType: r.BroadcastType,
		AudioURL:      r.AudioURL,
		CreatedAt:     r.CreatedAt,
		IsPushed:      r.IsPushed,
	})
}

func decodeReport(data []byte) (*model.Report, error) {
	var c cachedReport
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	date, err := time.Parse(time.DateOnly, c.ReportDate)
	if err != nil {
		return nil, err
	}
	return &model.Report{
		ID:            c.ID,
		ReportDate:    date,
		Content:       c.Content,
		BroadcastType: c.BroadcastType,
		AudioURL:      c.AudioURL,
		CreatedAt:     c.CreatedAt,
		IsPushed:      c.IsPushed,
	}, nil
}

func (s *CachedReportStore) GetByDate(ctx context.Context, date time.Time) (*model.Report, error) {
	key := cacheKey(date)

	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		report, err := decodeReport(data)
		if err == nil {
			return report, nil
		}
		slog.Warn("dropping undecodable cached report", "key", key, "error", err)
		s.client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		slog.Warn("report cache read failed", "key", key, "error", err)
	}

	report, err := s.inner.GetByDate(ctx, date)
	if err != nil || report == nil {
		return report, err
	}

	s.put(ctx, report)
	return report, nil
}

func (s *CachedReportStore) Create(ctx context.Context, report *model.Report) error {
	if err := s.inner.Create(ctx, report); err != nil {
		return err
	}
	s.put(ctx, report)
	return nil
}

func (s *CachedReportStore) GetByID(ctx context.Context, id int64) (*model.Report, error) {
	return s.inner.GetByID(ctx, id)
}

// UpdateAudioURL refreshes the cached copy so readers see the new audio.
func (s *CachedReportStore) UpdateAudioURL(ctx context.Context, id int64, url string) error {
	if err := s.inner.UpdateAudioURL(ctx, id, url); err != nil {
		return err
	}

	report, err := s.inner.GetByID(ctx, id)
	if err != nil || report == nil {
		slog.Warn("could not refresh cached report after audio update", "report_id", id, "error", err)
		return nil
	}
	s.put(ctx, report)
	return nil
}

func (s *CachedReportStore) List(ctx context.Context, limit, offset int) ([]model.Report, error) {
	return s.inner.List(ctx, limit, offset)
}

func (s *CachedReportStore) Count(ctx context.Context) (int, error) {
	return s.inner.Count(ctx)
}

func (s *CachedReportStore) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.inner.DeleteAll(ctx)
	if err != nil {
		return n, err
	}

	iter := s.client.Scan(ctx, 0, db.ReportCachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		s.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("report cache clear failed", "error", err)
	}
	return n, nil
}

func (s *CachedReportStore) put(ctx context.Context, report *model.Report) {
	data, err := encodeReport(report)
	if err != nil {
		slog.Warn("report cache encode failed", "report_id", report.ID, "error", err)
		return
	}
	if err := s.client.Set(ctx, cacheKey(report.ReportDate), data, s.ttl).Err(); err != nil {
		slog.Warn("report cache write failed", "report_id", report.ID, "error", err)
	}
}
