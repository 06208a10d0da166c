package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chanxe/love-plain/internal/model"
	"github.com/chanxe/love-plain/pkg/llm"

	"golang.org/x/sync/singleflight"
)

// DefaultRunTimeout covers three 30s attempts plus backoff.
const DefaultRunTimeout = 2 * time.Minute

type Trigger string

const (
	TriggerOnDemand  Trigger = "on_demand"
	TriggerScheduled Trigger = "scheduled"
)

// AudioQueue receives reports that need speech synthesis.
type AudioQueue interface {
	Enqueue(ctx context.Context, reportID int64) error
}

type Result struct {
	Report  *model.Report
	Mode    Mode
	Created bool
}

type PipelineOption func(*Pipeline)

func WithClock(clock Clock) PipelineOption {
	return func(p *Pipeline) { p.clock = clock }
}

func WithRandomSource(rng RandomSource) PipelineOption {
	return func(p *Pipeline) { p.rng = rng }
}

func WithEpochYear(year int) PipelineOption {
	return func(p *Pipeline) { p.epochYear = year }
}

func WithAudioQueue(queue AudioQueue) PipelineOption {
	return func(p *Pipeline) { p.audio = queue }
}

// WithRunTimeout bounds one generation, independent of any caller.
func WithRunTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.runTimeout = d }
}

// Pipeline produces the single daily broadcast.
type Pipeline struct {
	repo       DataRepository
	store      ReportStore
	generator  llm.TextGenerator
	clock      Clock
	rng        RandomSource
	epochYear  int
	audio      AudioQueue
	runTimeout time.Duration
	flights    singleflight.Group
}

func NewPipeline(repo DataRepository, store ReportStore, generator llm.TextGenerator, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		repo:       repo,
		store:      store,
		generator:  generator,
		clock:      SystemClock{},
		epochYear:  DefaultEpochYear,
		runTimeout: DefaultRunTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = NewRandomSource(p.clock.Now().UnixNano())
	}
	return p
}

func (p *Pipeline) Clock() Clock {
	return p.clock
}

// Run returns the report for date, generating it if needed. Callers with the
// same date and trigger in this process share one generation, which runs
// detached from the caller's cancellation so one caller leaving does not
// decide the day's report for the others.
func (p *Pipeline) Run(ctx context.Context, date time.Time, trigger Trigger) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	date = Day(date)
	key := date.Format(time.DateOnly) + "/" + string(trigger)

	ch := p.flights.DoChan(key, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.runTimeout)
		defer cancel()
		return p.run(runCtx, date, trigger)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Result), nil
	}
}

func (p *Pipeline) run(ctx context.Context, date time.Time, trigger Trigger) (*Result, error) {
	var mode Mode

	report, created, err := GetOrCreate(ctx, p.store, date, trigger == TriggerScheduled, func(ctx context.Context) (string, Mode, error) {
		text, m, err := p.produce(ctx, date)
		mode = m
		return text, m, err
	})
	if err != nil {
		return nil, err
	}

	if !created {
		slog.Info("broadcast already exists", "date", date.Format(time.DateOnly), "report_id", report.ID, "trigger", trigger)
		return &Result{Report: report, Mode: Mode(report.BroadcastType)}, nil
	}

	slog.Info("broadcast created", "date", date.Format(time.DateOnly), "report_id", report.ID, "mode", mode, "trigger", trigger)

	if p.audio != nil {
		if err := p.audio.Enqueue(ctx, report.ID); err != nil {
			slog.Error("error queueing audio synthesis", "report_id", report.ID, "error", err)
		}
	}

	return &Result{Report: report, Mode: mode, Created: true}, nil
}

// Inspect aggregates and renders the prompt for date without generating.
func (p *Pipeline) Inspect(ctx context.Context, date time.Time) (*AggregatedData, Mode, Prompt, error) {
	data, err := Aggregate(ctx, p.repo, Day(date), p.clock.Now(), p.epochYear)
	if err != nil {
		return nil, "", Prompt{}, err
	}
	mode := SelectMode(data)
	return data, mode, BuildPrompt(mode, data, p.rng), nil
}

func (p *Pipeline) produce(ctx context.Context, date time.Time) (string, Mode, error) {
	data, mode, prompt, err := p.Inspect(ctx, date)
	if err != nil {
		return "", "", err
	}

	text, err := p.generator.Generate(ctx, prompt.User, prompt.System)
	if errors.Is(err, llm.ErrConfiguration) {
		return "", "", fmt.Errorf("generating broadcast: %w", err)
	}
	if ctx.Err() != nil {
		return "", "", fmt.Errorf("generating broadcast: %w", ctx.Err())
	}
	if err != nil {
		slog.Error("generation failed, using fallback text", "date", date.Format(time.DateOnly), "mode", mode, "error", err)
		return Compose(mode, data, p.rng), mode, nil
	}

	return text, mode, nil
}
