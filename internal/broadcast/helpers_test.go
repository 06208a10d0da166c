package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/chanxe/love-plain/internal/model"
)

type fakeRepository struct {
	anniversaries []model.Anniversary
	moments       []model.Moment
	err           error
}

func (f *fakeRepository) AnniversariesOn(ctx context.Context, month time.Month, day int) ([]model.Anniversary, error) {
	var out []model.Anniversary
	for _, a := range f.anniversaries {
		if a.Date.Month() == month && a.Date.Day() == day {
			out = append(out, a)
		}
	}
	return out, f.err
}

func (f *fakeRepository) MomentsOn(ctx context.Context, month time.Month, day int) ([]model.Moment, error) {
	var out []model.Moment
	for _, m := range f.moments {
		if m.Timestamp.Month() == month && m.Timestamp.Day() == day {
			out = append(out, m)
		}
	}
	return out, f.err
}

func (f *fakeRepository) RecentMoments(ctx context.Context, since time.Time, limit int) ([]model.Moment, error) {
	var out []model.Moment
	for i := len(f.moments) - 1; i >= 0; i-- {
		if f.moments[i].Timestamp.After(since) {
			out = append(out, f.moments[i])
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, f.err
}

type fixedRand int

func (r fixedRand) Intn(n int) int {
	return int(r) % n
}

type stubGenerator struct {
	mu     sync.Mutex
	text   string
	err    error
	calls  int
	prompt string
	delay  time.Duration
}

func (s *stubGenerator) Generate(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prompt = userPrompt
	return s.text, s.err
}

func moment(author, content string, year int, month time.Month, day, hour int) model.Moment {
	return model.Moment{
		Author:    author,
		Content:   content,
		Timestamp: time.Date(year, month, day, hour, 0, 0, 0, time.UTC),
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 9, 30, 0, 0, time.UTC)
}
