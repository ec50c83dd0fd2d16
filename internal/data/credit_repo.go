package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filmforge/filmforge/internal/core"
)

// CreditRepo records credit charges in a ledger table. The unique constraint
// on (job_id, category) is what makes charging exactly-once: re-running the
// charge step after a crash hits the conflict and records nothing new.
type CreditRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCreditRepo constructs a CreditRepo.
func NewCreditRepo(db *sql.DB) *CreditRepo {
	return &CreditRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Charge inserts a ledger row for the job. Returns false without error when
// the charge was already recorded for this job and category.
func (r *CreditRepo) Charge(ctx context.Context, req core.ChargeRequest) (bool, error) {
	if req.UserID == "" {
		return false, errors.New("user id is required")
	}
	if req.JobID == "" {
		return false, errors.New("job id is required")
	}
	if req.Amount < 0 {
		return false, errors.New("charge amount must be >= 0")
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO credit_transactions(user_id, job_id, amount, category, description, project_id, provider, real_cost, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (job_id, category) DO NOTHING
	`, req.UserID, req.JobID, req.Amount, req.Category, req.Description,
		req.ProjectID, req.Provider, req.RealCostOverride, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return false, nil
		}
		return false, fmt.Errorf("insert credit transaction: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("charge rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// BalanceFor sums all charges recorded against a user, for audit views.
func (r *CreditRepo) BalanceFor(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(sum(amount), 0) FROM credit_transactions WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum credit transactions: %w", err)
	}
	return total, nil
}
