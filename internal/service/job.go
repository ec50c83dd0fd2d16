package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

var (
	// ErrInvalidJobRequest indicates the enqueue request failed validation.
	ErrInvalidJobRequest = errors.New("invalid job request")
	// ErrJobTerminal indicates an operation that needs a live job was applied
	// to one already in a terminal status.
	ErrJobTerminal = errors.New("job already in a terminal status")
)

// JobService is the caller-facing surface for enqueueing, observing, and
// cancelling generation jobs.
type JobService struct {
	jobs    core.JobRepository
	cancels core.CancelStore
	logger  *slog.Logger
}

// JobServiceOptions configures a JobService.
type JobServiceOptions struct {
	Jobs    core.JobRepository
	Cancels core.CancelStore
	Logger  *slog.Logger
}

// NewJobService creates a job service.
func NewJobService(opts JobServiceOptions) *JobService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{
		jobs:    opts.Jobs,
		cancels: opts.Cancels,
		logger:  logger.With("component", "job_service"),
	}
}

// Enqueue validates and persists a new job in pending status. Workers of the
// job's kind are notified immediately.
func (s *JobService) Enqueue(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJobRequest, err)
	}
	job, err := s.jobs.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.logger.InfoContext(ctx, "job enqueued",
		"job_id", job.ID,
		"kind", job.Kind,
		"project_id", job.ProjectID,
		"target_units", job.TargetUnits,
	)
	return job, nil
}

// Status returns the caller-facing status projection for a job.
func (s *JobService) Status(ctx context.Context, id string) (*model.JobStatusResponse, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return job.StatusResponse(), nil
}

// Stats returns queue statistics for one job kind.
func (s *JobService) Stats(ctx context.Context, kind model.JobKind) (*model.JobStats, error) {
	return s.jobs.Stats(ctx, kind)
}

// Cancel requests cooperative cancellation. A pending job is finalized
// immediately; a processing job stops before its next batch. In-flight
// provider calls are allowed to finish.
func (s *JobService) Cancel(ctx context.Context, id string) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return ErrJobTerminal
	}

	if err := s.cancels.RequestCancel(ctx, id); err != nil {
		return fmt.Errorf("set cancel flag: %w", err)
	}
	if job.Status == model.JobStatusPending {
		// Not reserved yet; finalize directly so it never starts. If a worker
		// reserved it in between, its next flag check stops it anyway.
		if err := s.jobs.Finish(ctx, core.FinishJobParams{
			JobID:  id,
			Status: model.JobStatusCancelled,
		}); err != nil {
			return fmt.Errorf("cancel pending job: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "job cancellation requested", "job_id", id, "status", job.Status)
	return nil
}
