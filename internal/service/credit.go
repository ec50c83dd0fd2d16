package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/filmforge/filmforge/config"
	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

// CreditService meters billing credits for finished jobs. A job is charged
// once, at the end, for its successful units only; the ledger's unique key
// absorbs replays after a crash between job completion and the charge.
type CreditService struct {
	ledger core.CreditLedger
	costs  config.CreditConfig
	logger *slog.Logger
}

// CreditServiceOptions configures a CreditService.
type CreditServiceOptions struct {
	Ledger core.CreditLedger
	Costs  config.CreditConfig
	Logger *slog.Logger
}

// NewCreditService creates a credit service.
func NewCreditService(opts CreditServiceOptions) *CreditService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CreditService{
		ledger: opts.Ledger,
		costs:  opts.Costs,
		logger: logger.With("component", "credit_service"),
	}
}

// ChargeForJobRequest groups parameters for CreditService.ChargeForJob.
type ChargeForJobRequest struct {
	Job             *model.Job
	SuccessfulUnits int
	// OwnCredential suppresses the charge: the provider bills the user
	// directly and the platform must not double-charge.
	OwnCredential bool
}

// ChargeForJob records the aggregate charge for a finished job. Failed units
// are never charged. Invoking it twice for the same job is a no-op.
func (s *CreditService) ChargeForJob(ctx context.Context, req ChargeForJobRequest) error {
	job := req.Job
	if job.SkipCreditCheck || req.OwnCredential {
		s.logger.InfoContext(ctx, "credit charge skipped, own credential",
			"job_id", job.ID, "user_id", job.UserID)
		return nil
	}
	if req.SuccessfulUnits <= 0 {
		return nil
	}

	amount := req.SuccessfulUnits * s.UnitCost(job.Kind)
	if amount <= 0 {
		return nil
	}

	charged, err := s.ledger.Charge(ctx, core.ChargeRequest{
		UserID:    job.UserID,
		JobID:     job.ID,
		Amount:    amount,
		Category:  chargeCategory(job.Kind),
		ProjectID: job.ProjectID,
		Description: fmt.Sprintf("%s: %d successful units",
			chargeCategory(job.Kind), req.SuccessfulUnits),
	})
	if err != nil {
		return fmt.Errorf("charge job %s: %w", job.ID, err)
	}
	if !charged {
		s.logger.InfoContext(ctx, "job already charged, skipping",
			"job_id", job.ID, "category", chargeCategory(job.Kind))
		return nil
	}

	s.logger.InfoContext(ctx, "credits charged",
		"job_id", job.ID,
		"user_id", job.UserID,
		"amount", amount,
		"units", req.SuccessfulUnits,
	)
	return nil
}

// UnitCost returns the configured per-unit credit cost for a job kind.
func (s *CreditService) UnitCost(kind model.JobKind) int {
	switch kind {
	case model.JobKindSceneBatch:
		return s.costs.SceneUnitCost
	case model.JobKindImageBatch:
		return s.costs.ImageUnitCost
	case model.JobKindVideo:
		return s.costs.VideoUnitCost
	default:
		return 0
	}
}

func chargeCategory(kind model.JobKind) string {
	switch kind {
	case model.JobKindSceneBatch:
		return "scene_generation"
	case model.JobKindImageBatch:
		return "image_generation"
	case model.JobKindVideo:
		return "video_generation"
	default:
		return "generation"
	}
}
