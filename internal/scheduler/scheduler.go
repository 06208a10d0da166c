// Package scheduler fires the daily broadcast at a fixed local time.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chanxe/love-plain/internal/broadcast"
	"github.com/chanxe/love-plain/internal/notify"
)

const DefaultTick = 60 * time.Second

type Runner interface {
	Run(ctx context.Context, date time.Time, trigger broadcast.Trigger) (*broadcast.Result, error)
}

// TickerFunc returns a tick channel and a function that stops it.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type Option func(*Scheduler)

func WithClock(clock broadcast.Clock) Option {
	return func(s *Scheduler) { s.clock = clock }
}

func WithTicker(ticker TickerFunc) Option {
	return func(s *Scheduler) { s.ticker = ticker }
}

func WithTick(d time.Duration) Option {
	return func(s *Scheduler) { s.tick = d }
}

func WithSink(sink notify.Sink) Option {
	return func(s *Scheduler) { s.sink = sink }
}

type Scheduler struct {
	runner Runner
	hour   int
	minute int

	clock  broadcast.Clock
	ticker TickerFunc
	tick   time.Duration
	sink   notify.Sink

	mu        sync.Mutex
	lastFired string
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(runner Runner, hour, minute int, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner: runner,
		hour:   hour,
		minute: minute,
		clock:  broadcast.SystemClock{Location: time.Local},
		ticker: realTicker,
		tick:   DefaultTick,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the loop in its own goroutine. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	ticks, stop := s.ticker(s.tick)
	go s.loop(ctx, ticks, stop, s.done)

	slog.Info("broadcast scheduler started", "hour", s.hour, "minute", s.minute, "tick", s.tick.String())
}

// Stop cancels the loop and waits for an in-flight check to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) loop(ctx context.Context, ticks <-chan time.Time, stop func(), done chan struct{}) {
	defer close(done)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("broadcast scheduler stopped")
			return
		case <-ticks:
			s.Check(ctx)
		}
	}
}

// Check fires the pipeline when the clock reads the target time and today
// has not fired yet. It reports whether it fired.
func (s *Scheduler) Check(ctx context.Context) bool {
	now := s.clock.Now()
	if now.Hour() != s.hour || now.Minute() != s.minute {
		return false
	}

	today := now.Format(time.DateOnly)

	s.mu.Lock()
	if s.lastFired == today {
		s.mu.Unlock()
		return false
	}
	s.lastFired = today
	s.mu.Unlock()

	s.fire(ctx, now)
	return true
}

func (s *Scheduler) fire(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduled broadcast panicked", "panic", r)
		}
	}()

	result, err := s.runner.Run(ctx, now, broadcast.TriggerScheduled)
	if err != nil {
		slog.Error("scheduled broadcast failed", "date", now.Format(time.DateOnly), "error", err)
		return
	}

	if !result.Created || s.sink == nil {
		return
	}

	report := result.Report
	event := notify.Event{
		ID:            report.ID,
		Text:          report.Content,
		Date:          broadcast.FormatEventDate(report.ReportDate),
		BroadcastType: report.BroadcastType,
	}

	if err := s.sink.Publish(ctx, event); err != nil {
		slog.Error("error publishing broadcast", "report_id", report.ID, "error", err)
		return
	}
	slog.Info("broadcast pushed", "report_id", report.ID)
}
