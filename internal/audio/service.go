// Package audio converts stored broadcasts into audio artifacts, separately
// from text generation.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chanxe/love-plain/internal/model"
	"github.com/chanxe/love-plain/pkg/artifact"
	"github.com/chanxe/love-plain/pkg/tts"

	"github.com/google/uuid"
)

var ErrReportNotFound = errors.New("report not found")

type ReportAudioStore interface {
	GetByID(ctx context.Context, id int64) (*model.Report, error)
	UpdateAudioURL(ctx context.Context, id int64, url string) error
}

type Service struct {
	engine  tts.Engine
	store   artifact.Store
	reports ReportAudioStore
	tmpDir  string
}

func NewService(engine tts.Engine, store artifact.Store, reports ReportAudioStore) *Service {
	return &Service{engine: engine, store: store, reports: reports, tmpDir: os.TempDir()}
}

func fileName(reportID int64) string {
	if reportID > 0 {
		return fmt.Sprintf("love_one_day_%d_%s.mp3", reportID, uuid.NewString()[:8])
	}
	return fmt.Sprintf("love_one_day_%s.mp3", uuid.NewString())
}

// Synthesize renders text to audio and returns its URL. An unavailable engine
// yields "" with no error. When reportID is positive only that report's
// audio_url is updated.
func (s *Service) Synthesize(ctx context.Context, text string, reportID int64) (string, error) {
	if text == "" {
		return "", nil
	}

	name := fileName(reportID)
	tmp := filepath.Join(s.tmpDir, name)
	defer os.Remove(tmp)

	start := time.Now()

	err := s.engine.Synthesize(ctx, text, tmp)
	if errors.Is(err, tts.ErrUnavailable) {
		slog.Warn("tts unavailable, skipping audio", "engine", s.engine.Name(), "report_id", reportID, "error", err)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("synthesizing audio: %w", err)
	}

	f, err := os.Open(tmp)
	if err != nil {
		return "", err
	}
	defer f.Close()

	url, err := s.store.Put(ctx, name, f, "audio/mpeg")
	if err != nil {
		return "", fmt.Errorf("storing audio: %w", err)
	}

	if reportID > 0 {
		if err := s.reports.UpdateAudioURL(ctx, reportID, url); err != nil {
			return "", fmt.Errorf("updating audio url for report %d: %w", reportID, err)
		}
	}

	slog.Info("audio synthesized", "engine", s.engine.Name(), "store", s.store.Name(), "report_id", reportID, "url", url, "duration", time.Since(start).String())

	return url, nil
}

// SynthesizeReport loads a stored report and synthesizes its text.
func (s *Service) SynthesizeReport(ctx context.Context, reportID int64) (string, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return "", err
	}
	if report == nil {
		return "", ErrReportNotFound
	}
	return s.Synthesize(ctx, report.Content, report.ID)
}
