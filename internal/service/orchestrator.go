package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/filmforge/filmforge/config"
	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
	"github.com/filmforge/filmforge/internal/observability/metrics"
	"github.com/filmforge/filmforge/internal/observability/statsd"
)

// errCancelRequested signals a cooperative cancellation observed between
// batches. It never leaves the orchestrator.
var errCancelRequested = errors.New("cancellation requested")

// maxErrorDetails caps the aggregated error string stored on the job record.
const maxErrorDetails = 4000

// AssetPersister copies a provider result into durable storage and returns the
// durable URL.
type AssetPersister interface {
	Persist(ctx context.Context, projectID, kind string, result *model.GenerationResult) (string, error)
}

// BatchOrchestrator turns a job of target size N into a resumable, rate-limited
// sequence of batches. It is the only writer of job status and counters.
type BatchOrchestrator struct {
	jobs      core.JobRepository
	scenes    core.SceneRepository
	resolver  core.ProviderResolver
	text      core.TextInvoker
	media     core.MediaInvoker
	persister AssetPersister
	credits   *CreditService
	cancels   core.CancelStore
	sink      statsd.Sink
	cfg       config.EngineConfig
	logger    *slog.Logger
}

// OrchestratorOptions configures a BatchOrchestrator.
type OrchestratorOptions struct {
	Jobs      core.JobRepository
	Scenes    core.SceneRepository
	Resolver  core.ProviderResolver
	Text      core.TextInvoker
	Media     core.MediaInvoker
	Persister AssetPersister
	Credits   *CreditService
	Cancels   core.CancelStore
	Sink      statsd.Sink
	Engine    config.EngineConfig
	Logger    *slog.Logger
}

// NewBatchOrchestrator creates a batch orchestrator.
func NewBatchOrchestrator(opts OrchestratorOptions) *BatchOrchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchOrchestrator{
		jobs:      opts.Jobs,
		scenes:    opts.Scenes,
		resolver:  opts.Resolver,
		text:      opts.Text,
		media:     opts.Media,
		persister: opts.Persister,
		credits:   opts.Credits,
		cancels:   opts.Cancels,
		sink:      opts.Sink,
		cfg:       opts.Engine,
		logger:    logger.With("component", "batch_orchestrator"),
	}
}

// runResult aggregates the outcome of one job execution attempt.
type runResult struct {
	completed int
	failed    int
	unitErrs  []string
	// ownCredential is true when any batch resolved to a caller-supplied key.
	ownCredential bool
}

// Run executes one reserved job to a terminal status. It is safe to call again
// for the same job after a crash: batch skipping and idempotent persistence
// make re-execution converge on the same final unit set.
func (o *BatchOrchestrator) Run(ctx context.Context, job *model.Job) error {
	logger := o.logger.With("job_id", job.ID, "kind", job.Kind, "project_id", job.ProjectID)
	started := time.Now()

	if err := o.jobs.MarkProcessing(ctx, job.ID); err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}
	logger.InfoContext(ctx, "job started", "target_units", job.TargetUnits)

	var res runResult
	var runErr error
	switch job.Kind {
	case model.JobKindSceneBatch:
		res, runErr = o.runSceneBatches(ctx, job, logger)
	case model.JobKindImageBatch:
		res, runErr = o.runImageBatches(ctx, job, logger)
	case model.JobKindVideo:
		res, runErr = o.runVideo(ctx, job, logger)
	default:
		runErr = core.Fatal(fmt.Errorf("unknown job kind %q", job.Kind))
	}

	if runErr != nil && errors.Is(runErr, context.Canceled) {
		// Worker shutdown mid-job. Leave the record in processing; the stale
		// lease hands it to another worker, which resumes from persisted units.
		logger.InfoContext(ctx, "worker stopping mid-job, leaving job for requeue")
		return runErr
	}

	status, details := o.finalStatus(job, res, runErr)
	if err := o.jobs.Finish(ctx, core.FinishJobParams{
		JobID:        job.ID,
		Status:       status,
		ErrorDetails: details,
	}); err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	o.clearCancelFlag(ctx, job.ID, logger)

	if status == model.JobStatusCompleted || status == model.JobStatusCompletedWithErrors {
		if err := o.credits.ChargeForJob(ctx, ChargeForJobRequest{
			Job:             job,
			SuccessfulUnits: o.successfulUnitTotal(ctx, job, res, logger),
			OwnCredential:   res.ownCredential,
		}); err != nil {
			// The ledger write failed after the job finished; the charge is
			// keyed on the job id and can be replayed by an audit sweep.
			logger.ErrorContext(ctx, "credit charge failed", "error", err)
		}
	}

	o.emitLifecycle(job, status, runErr, time.Since(started))
	logger.InfoContext(ctx, "job finished",
		"status", status,
		"completed_units", res.completed,
		"failed_units", res.failed,
		"duration", time.Since(started),
	)
	return nil
}

// successfulUnitTotal returns the job's successful-unit count accumulated
// across every run. A run that crashed after persisting units never reached
// its charge step, so charging only this run's count would leave those units
// unbilled; completed_units carries them because every run checkpoints its
// inserts through UpdateProgress. The ledger's unique key still absorbs the
// case where an earlier run did charge.
func (o *BatchOrchestrator) successfulUnitTotal(
	ctx context.Context,
	job *model.Job,
	res runResult,
	logger *slog.Logger,
) int {
	fresh, err := o.jobs.GetByID(ctx, job.ID)
	if err != nil {
		logger.WarnContext(ctx, "re-reading job for charge failed", "error", err)
		return job.CompletedUnits + res.completed
	}
	return fresh.CompletedUnits
}

// finalStatus applies the termination rules: completed only when every unit
// succeeded, completed_with_errors when the job ran to the end with failures,
// failed on fatal or exhausted-batch conditions, cancelled on the cooperative
// flag.
func (o *BatchOrchestrator) finalStatus(
	job *model.Job,
	res runResult,
	runErr error,
) (model.JobStatus, string) {
	details := strings.Join(res.unitErrs, "; ")
	if len(details) > maxErrorDetails {
		details = details[:maxErrorDetails]
	}

	switch {
	case runErr == nil && res.failed == 0:
		return model.JobStatusCompleted, ""
	case runErr == nil:
		return model.JobStatusCompletedWithErrors, details
	case errors.Is(runErr, errCancelRequested):
		return model.JobStatusCancelled, details
	default:
		msg := runErr.Error()
		if details != "" {
			msg = msg + "; " + details
		}
		if len(msg) > maxErrorDetails {
			msg = msg[:maxErrorDetails]
		}
		return model.JobStatusFailed, msg
	}
}

// checkCancelled returns errCancelRequested when the cooperative flag is set.
// Flag-store failures are logged and treated as "not cancelled" so a redis
// outage cannot kill running jobs.
func (o *BatchOrchestrator) checkCancelled(ctx context.Context, jobID string, logger *slog.Logger) error {
	cancelled, err := o.cancels.IsCancelRequested(ctx, jobID)
	if err != nil {
		logger.WarnContext(ctx, "cancel flag check failed", "error", err)
		return nil
	}
	if cancelled {
		logger.InfoContext(ctx, "cancellation observed, stopping before next batch")
		return errCancelRequested
	}
	return nil
}

func (o *BatchOrchestrator) clearCancelFlag(ctx context.Context, jobID string, logger *slog.Logger) {
	if err := o.cancels.Clear(ctx, jobID); err != nil {
		logger.WarnContext(ctx, "clearing cancel flag failed", "error", err)
	}
}

// reportProgress updates the job's counters and monotonic progress after a
// batch. persistedTotal counts units that exist in target storage, including
// those found at resume time.
func (o *BatchOrchestrator) reportProgress(
	ctx context.Context,
	job *model.Job,
	persistedTotal, completedDelta, failedDelta int,
	logger *slog.Logger,
) {
	progress := 100
	if job.TargetUnits > 0 {
		progress = (persistedTotal * 100) / job.TargetUnits
	}
	if progress > 100 {
		progress = 100
	}
	err := o.jobs.UpdateProgress(ctx, core.UpdateProgressParams{
		JobID:          job.ID,
		Progress:       progress,
		CompletedDelta: completedDelta,
		FailedDelta:    failedDelta,
	})
	if err != nil {
		// Progress is a projection; the persisted units are the truth and the
		// next checkpoint re-derives it.
		logger.WarnContext(ctx, "progress update failed", "error", err)
	}
}

// sleep waits for d unless the context ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o *BatchOrchestrator) emitLifecycle(job *model.Job, status model.JobStatus, runErr error, d time.Duration) {
	var result string
	switch status {
	case model.JobStatusFailed:
		result = metrics.ResultError
	case model.JobStatusCompletedWithErrors:
		result = metrics.ResultPartial
	case model.JobStatusCancelled:
		result = metrics.ResultCancelled
	default:
		result = metrics.ResultSuccess
	}
	metrics.EmitJobLifecycle(o.sink, metrics.JobLifecycle{
		Kind:     string(job.Kind),
		Status:   string(status),
		Result:   result,
		Duration: d,
		Err:      runErr,
	})
}
