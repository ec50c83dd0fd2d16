// Package jobrunner hosts the worker processes that pull generation jobs and
// drive them through the batch orchestrator.
package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
	"github.com/filmforge/filmforge/internal/service"
)

// defaultWakeInterval bounds how long a worker sleeps without re-checking the
// queue. Stale processing jobs from crashed workers surface through ReserveNext
// only when somebody reserves, so workers must wake periodically even without
// a notification.
const defaultWakeInterval = 30 * time.Second

// RunnerOptions configures a job runner for one job kind.
type RunnerOptions struct {
	Jobs         core.JobRepository
	Orchestrator *service.BatchOrchestrator
	Kind         model.JobKind
	Logger       *slog.Logger

	// Workers is the number of concurrent job-processing goroutines.
	Workers int
	// WakeInterval caps the wait between queue checks when no notification
	// arrives.
	WakeInterval time.Duration
}

// Runner pulls jobs of one kind and executes them to a terminal status. Job
// state lives in Postgres, so killing a runner mid-job loses nothing: the
// job's lease expires and another runner resumes it from persisted units.
type Runner struct {
	jobs         core.JobRepository
	orchestrator *service.BatchOrchestrator
	kind         model.JobKind
	workers      int
	wakeInterval time.Duration
	logger       *slog.Logger
}

// NewRunner constructs a runner for one job kind.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Jobs == nil {
		return nil, errors.New("jobs repository is required")
	}
	if opts.Orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}
	if !opts.Kind.Valid() {
		return nil, fmt.Errorf("invalid job kind %q", opts.Kind)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	wake := opts.WakeInterval
	if wake <= 0 {
		wake = defaultWakeInterval
	}
	return &Runner{
		jobs:         opts.Jobs,
		orchestrator: opts.Orchestrator,
		kind:         opts.Kind,
		workers:      workers,
		wakeInterval: wake,
		logger:       logger.With("component", "job_runner", "kind", opts.Kind),
	}, nil
}

// Run starts worker goroutines and processes jobs until the context ends.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting job runner", "workers", r.workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	for range r.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.workerLoop(ctx); err != nil && !errors.Is(err, context.Canceled) {
				// first error wins, cancels all workers
				select {
				case errCh <- err:
					cancel()
				default:
				}
			}
		}()
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return ctx.Err()
	}
}

func (r *Runner) workerLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		job, err := r.jobs.ReserveNext(ctx, r.kind)
		switch {
		case err == nil:
			r.processJob(ctx, job)
		case errors.Is(err, model.ErrNoJobsAvailable):
			r.waitForWork(ctx)
		default:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reserve next job: %w", err)
		}
	}
	return ctx.Err()
}

// waitForWork blocks until a new job notification arrives or the wake interval
// elapses. The interval also paces recovery of stale jobs, which produce no
// notification.
func (r *Runner) waitForWork(ctx context.Context) {
	waitCtx, cancel := context.WithTimeout(ctx, r.wakeInterval)
	defer cancel()

	err := r.jobs.WaitForNotification(waitCtx, r.kind)
	if err == nil || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return
	}
	r.logger.WarnContext(ctx, "job notification wait failed, falling back to polling", "error", err)
	// Brief pause so a broken listener connection cannot spin the loop.
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
	}
}

func (r *Runner) processJob(ctx context.Context, job *model.Job) {
	logger := r.logger.With("job_id", job.ID)
	logger.InfoContext(ctx, "job reserved")

	if err := r.orchestrator.Run(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.InfoContext(ctx, "job interrupted by shutdown, will be resumed")
			return
		}
		logger.ErrorContext(ctx, "job execution error", "error", err)
	}
}
