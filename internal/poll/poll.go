// Package poll tracks a job to its terminal state by re-fetching the record
// at a fixed interval.
//
// QUEUED and RUNNING schedule exactly one further fetch after the interval;
// SUCCEEDED and FAILED stop the loop. A fetch error also stops the loop and
// is reported through the ticket (the error is surfaced once, not retried).
package poll

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/solidgen/solidgen-go/internal/model"
)

// DefaultInterval is the fixed delay between status fetches.
const DefaultInterval = 2500 * time.Millisecond

// Fetcher is the single backend operation the watcher depends on.
type Fetcher interface {
	GetJob(ctx context.Context, token, jobID string) (model.Job, error)
}

// Watcher starts poll tickets against a backend.
type Watcher struct {
	api      Fetcher
	interval time.Duration
	log      *zap.Logger
}

// NewWatcher constructs a Watcher. Non-positive intervals fall back to
// DefaultInterval; a nil logger is replaced with a no-op one.
func NewWatcher(api Fetcher, interval time.Duration, log *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{api: api, interval: interval, log: log}
}

// Ticket is a running poll loop with deterministic teardown. Stop (or
// cancellation of the Start context) guarantees no further fetch is issued
// and no timer is left behind.
type Ticket struct {
	updates chan model.Job
	done    chan struct{}
	cancel  context.CancelFunc

	mu  sync.Mutex
	job model.Job
	err error
}

// Updates delivers each fetched snapshot. The channel holds only the latest
// snapshot; a slow consumer observes the freshest state, not the history.
func (t *Ticket) Updates() <-chan model.Job { return t.updates }

// Done is closed when the loop has finished for any reason.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Stop cancels the loop. Safe to call multiple times and after completion.
func (t *Ticket) Stop() { t.cancel() }

// Result returns the last snapshot and the loop outcome. A nil error means a
// terminal status was reached. Valid once Done is closed.
func (t *Ticket) Result() (model.Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job, t.err
}

// Start begins polling jobID and returns the ticket. The first fetch is
// issued immediately; subsequent fetches follow the configured interval
// while the status is non-terminal.
func (w *Watcher) Start(ctx context.Context, token, jobID string) *Ticket {
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticket{
		updates: make(chan model.Job, 1),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	go w.run(ctx, t, token, jobID)
	return t
}

func (w *Watcher) run(ctx context.Context, t *Ticket, token, jobID string) {
	defer close(t.done)
	defer close(t.updates)
	defer t.cancel()

	for {
		job, err := w.api.GetJob(ctx, token, jobID)
		if err != nil {
			w.log.Warn("job fetch failed", zap.String("job_id", jobID), zap.Error(err))
			t.finish(model.Job{}, err)
			return
		}

		t.publish(job)

		if job.Status.Terminal() {
			w.log.Info("job reached terminal state",
				zap.String("job_id", jobID),
				zap.String("status", string(job.Status)),
			)
			t.finish(job, nil)
			return
		}

		timer := time.NewTimer(w.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			t.finish(job, ctx.Err())
			return
		case <-timer.C:
		}
	}
}

// publish replaces the buffered snapshot wholesale. Single producer; the
// drain cannot race another send.
func (t *Ticket) publish(job model.Job) {
	t.mu.Lock()
	t.job = job
	t.mu.Unlock()

	select {
	case t.updates <- job:
	default:
		select {
		case <-t.updates:
		default:
		}
		t.updates <- job
	}
}

func (t *Ticket) finish(job model.Job, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job.JobID != "" {
		t.job = job
	}
	t.err = err
}

// Wait polls jobID to completion, invoking onUpdate (when non-nil) for every
// snapshot, and returns the final job. It is the blocking convenience over
// Start for callers without their own event loop.
func (w *Watcher) Wait(ctx context.Context, token, jobID string, onUpdate func(model.Job)) (model.Job, error) {
	t := w.Start(ctx, token, jobID)
	defer t.Stop()

	for {
		select {
		case job, ok := <-t.Updates():
			if !ok {
				break
			}
			if onUpdate != nil {
				onUpdate(job)
			}
			continue
		case <-t.Done():
		}
		break
	}
	return t.Result()
}
