package audio

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultMaxAttempts = 3
	popTimeout         = 5 * time.Second
	retryDelay         = 5 * time.Second
)

// JobQueue is satisfied by db.Queue.
type JobQueue interface {
	Push(ctx context.Context, data string) error
	Pop(ctx context.Context, timeout time.Duration) (string, error)
}

type job struct {
	ReportID int64  `json:"report_id"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

// Queue hands new report ids to the audio worker.
type Queue struct {
	jobs JobQueue
}

func NewQueue(jobs JobQueue) *Queue {
	return &Queue{jobs: jobs}
}

func (q *Queue) Enqueue(ctx context.Context, reportID int64) error {
	data, err := json.Marshal(job{ReportID: reportID})
	if err != nil {
		return err
	}
	return q.jobs.Push(ctx, string(data))
}

type Synthesizer interface {
	SynthesizeReport(ctx context.Context, reportID int64) (string, error)
}

type Worker struct {
	jobs        JobQueue
	dead        JobQueue
	synth       Synthesizer
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration)
}

func NewWorker(jobs, dead JobQueue, synth Synthesizer) *Worker {
	return &Worker{
		jobs:        jobs,
		dead:        dead,
		synth:       synth,
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run consumes jobs until ctx is canceled. Queue errors are logged and
// retried after a pause.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		data, err := w.jobs.Pop(ctx, popTimeout)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("error popping from audio queue, retrying", "error", err, "wait", retryDelay.String())
			w.sleep(ctx, retryDelay)
			continue
		}

		w.Process(ctx, data)
	}
}

// Process handles one queued payload. Failed jobs are requeued until they
// reach maxAttempts, then parked on the dead letter list.
func (w *Worker) Process(ctx context.Context, data string) {
	var j job
	if err := json.Unmarshal([]byte(data), &j); err != nil || j.ReportID <= 0 {
		slog.Error("invalid audio job", "payload", data, "error", err)
		return
	}

	url, err := w.synth.SynthesizeReport(ctx, j.ReportID)
	if err == nil {
		if url == "" {
			slog.Info("audio job finished without audio", "report_id", j.ReportID)
		}
		return
	}

	if errors.Is(err, ErrReportNotFound) {
		slog.Warn("audio job for missing report", "report_id", j.ReportID)
		return
	}

	j.Attempts++
	j.Error = err.Error()
	slog.Error("error synthesizing audio", "report_id", j.ReportID, "attempts", j.Attempts, "error", err)

	payload, _ := json.Marshal(j)

	if j.Attempts >= w.maxAttempts {
		slog.Warn("audio job exceeded max attempts, moving to dead letter", "report_id", j.ReportID, "attempts", j.Attempts)
		if err := w.dead.Push(ctx, string(payload)); err != nil {
			slog.Error("error pushing to dead letter queue", "report_id", j.ReportID, "error", err)
		}
		return
	}

	if err := w.jobs.Push(ctx, string(payload)); err != nil {
		slog.Error("error requeueing audio job", "report_id", j.ReportID, "error", err)
	}
	w.sleep(ctx, retryDelay)
}
