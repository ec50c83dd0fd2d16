package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/data/pgxutil"
	"github.com/filmforge/filmforge/internal/domain/model"
)

// RepoConfig holds configuration options for the job repository.
type RepoConfig struct {
	// Lease is how long a reserved job stays claimed before it is considered
	// abandoned and requeued.
	Lease        time.Duration
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo provides database operations for generation job records.
type JobRepo struct {
	DB           *sql.DB
	cfg          RepoConfig
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 10 * time.Minute
	}

	return &JobRepo{
		DB:           db,
		cfg:          cfg,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const jobColumns = `
  id,
  project_id,
  user_id,
  kind,
  status,
  progress,
  completed_units,
  failed_units,
  target_units,
  payload,
  error_details,
  skip_credit_check,
  retry_count,
  max_retries,
  started_at,
  completed_at,
  created_at,
  updated_at
`

// Create enqueues a new generation job in pending status and notifies workers.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	var job *model.Job
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			rows, qerr := tx.Query(ctx, `
			  INSERT INTO jobs(project_id, user_id, kind, status, target_units, payload, skip_credit_check, max_retries)
			  VALUES ($1,$2,$3,'pending',$4,$5,$6,$7)
			  RETURNING `+jobColumns,
				req.ProjectID, req.UserID, req.Kind, req.TargetUnits, payload, req.SkipCreditCheck, maxRetries)
			if qerr != nil {
				return fmt.Errorf("insert job: %w", qerr)
			}
			j, cerr := collectJobFromRows(rows)
			rows.Close()
			if cerr != nil {
				return fmt.Errorf("collect job: %w", cerr)
			}

			channel := "job_added_" + string(req.Kind)
			if _, execErr := tx.Exec(ctx, `SELECT pg_notify($1::text, $2::text)`, channel, j.ID); execErr != nil {
				return fmt.Errorf("send job notification: %w", execErr)
			}
			job = j
			return nil
		},
	})
	if txErr != nil {
		return nil, txErr
	}
	return job, nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var job *model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+jobColumns+`
			FROM jobs
			WHERE id = $1
		`, id)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		job, qerr = collectJobFromRows(rows)
		return qerr
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// SQL used by ReserveNext to atomically claim the next pending job.
const reserveNextSQL = `
  WITH cte AS (
    SELECT id FROM jobs
    WHERE kind = $1
      AND (status = 'pending'
           OR (status = 'processing' AND updated_at < $2))
    ORDER BY created_at ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
  )
  UPDATE jobs j
  SET
    status = 'processing',
    started_at = COALESCE(j.started_at, $3),
    updated_at = $3
  FROM cte
  WHERE j.id = cte.id
  RETURNING ` + qualifiedJobColumns

const qualifiedJobColumns = `j.id, j.project_id, j.user_id, j.kind, j.status, j.progress, j.completed_units, j.failed_units, j.target_units, j.payload, j.error_details, j.skip_credit_check, j.retry_count, j.max_retries, j.started_at, j.completed_at, j.created_at, j.updated_at`

// ReserveNext atomically claims the next pending job of the given kind. A
// processing job whose worker stopped heartbeating (updated_at older than the
// lease) is eligible again, which is what makes a crashed job resumable.
func (r *JobRepo) ReserveNext(ctx context.Context, kind model.JobKind) (*model.Job, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid job kind: %s", kind)
	}

	var job *model.Job
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		Fn: func(tx pgx.Tx) error {
			now := r.timeProvider.Now().UTC()
			staleBefore := now.Add(-r.cfg.Lease)

			rows, qerr := tx.Query(ctx, reserveNextSQL, kind, staleBefore, now)
			if qerr != nil {
				return fmt.Errorf("reserve job: %w", qerr)
			}
			defer rows.Close()

			j, cerr := collectJobFromRows(rows)
			if errors.Is(cerr, pgx.ErrNoRows) {
				return model.ErrNoJobsAvailable
			}
			if cerr != nil {
				return fmt.Errorf("reserve job: %w", cerr)
			}
			job = j
			return nil
		},
	})
	if err != nil {
		if errors.Is(err, model.ErrNoJobsAvailable) {
			return nil, model.ErrNoJobsAvailable
		}
		return nil, err
	}
	return job, nil
}

// WaitForNotification waits for a PostgreSQL notification indicating new jobs
// of the given kind are available.
func (r *JobRepo) WaitForNotification(ctx context.Context, kind model.JobKind) error {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			_ = cerr
		}
	}()

	channel := "job_added_" + string(kind)
	quoted := pgx.Identifier{channel}.Sanitize()

	if _, execErr := conn.ExecContext(ctx, "LISTEN "+quoted); execErr != nil {
		return fmt.Errorf("listen %s: %w", channel, execErr)
	}
	defer func() {
		if _, execErr := conn.ExecContext(context.Background(), "UNLISTEN "+quoted); execErr != nil {
			_ = execErr
		}
	}()

	return conn.Raw(func(dc any) error {
		sc, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		_, notifyErr := sc.Conn().WaitForNotification(ctx)
		return notifyErr
	})
}

// MarkProcessing transitions a pending job to processing. Re-applying the
// transition to a job already processing is a safe no-op.
func (r *JobRepo) MarkProcessing(ctx context.Context, id string) error {
	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET status = 'processing',
		    started_at = COALESCE(started_at, $2),
		    updated_at = $2
		WHERE id = $1 AND status IN ('pending', 'processing')
	`, id, now)
	if err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark processing rows affected: %w", err)
	}
	if rowsAffected == 0 {
		job, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if job.Status.Terminal() {
			return nil
		}
		return fmt.Errorf("mark job processing: job %s in unexpected status %s", id, job.Status)
	}
	return nil
}

// UpdateProgress applies atomic counter increments plus a monotonic progress
// value. Counters are incremented, never overwritten, so concurrent unit
// completions cannot lose updates; GREATEST keeps progress non-decreasing.
func (r *JobRepo) UpdateProgress(ctx context.Context, params core.UpdateProgressParams) error {
	if params.Progress < 0 || params.Progress > 100 {
		return fmt.Errorf("progress out of range: %d", params.Progress)
	}
	now := r.timeProvider.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET progress = GREATEST(progress, $2),
		    completed_units = completed_units + $3,
		    failed_units = failed_units + $4,
		    updated_at = $5
		WHERE id = $1
	`, params.JobID, params.Progress, params.CompletedDelta, params.FailedDelta, now)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	return nil
}

// Finish transitions a job to a terminal status. Finishing an already-terminal
// job is a no-op so that re-running a crashed finish step is safe. Progress is
// forced to 100 at every terminal status so pollers always observe a finished
// bar, whatever the outcome.
func (r *JobRepo) Finish(ctx context.Context, params core.FinishJobParams) error {
	if !params.Status.Terminal() {
		return fmt.Errorf("finish requires a terminal status, got %s", params.Status)
	}
	now := r.timeProvider.Now().UTC()

	var errDetails *string
	if params.ErrorDetails != "" {
		errDetails = &params.ErrorDetails
	}

	_, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2,
		    error_details = COALESCE($3, error_details),
		    progress = 100,
		    completed_at = COALESCE(completed_at, $4),
		    updated_at = $4
		WHERE id = $1
		  AND status NOT IN ('completed', 'completed_with_errors', 'failed', 'cancelled')
	`, params.JobID, params.Status, errDetails, now)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// Stats returns statistics about jobs of the given kind in different states.
func (r *JobRepo) Stats(ctx context.Context, kind model.JobKind) (*model.JobStats, error) {
	var s model.JobStats
	err := r.DB.QueryRowContext(ctx, `
  SELECT
    count(*) FILTER (WHERE status = 'pending')    AS pending,
    count(*) FILTER (WHERE status = 'processing') AS processing,
    count(*) FILTER (WHERE status IN ('completed', 'completed_with_errors')) AS completed,
    count(*) FILTER (WHERE status = 'failed')     AS failed,
    count(*) FILTER (WHERE status = 'cancelled')  AS cancelled
  FROM jobs
  WHERE kind = $1
  `, kind).Scan(
		&s.Pending,
		&s.Processing,
		&s.Completed,
		&s.Failed,
		&s.Cancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("get job stats: %w", err)
	}
	return &s, nil
}

// collectJobFromRows collects a single job from pgx rows.
func collectJobFromRows(rows pgx.Rows) (*model.Job, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	job, err := scanJobFromRow(rows)
	if err != nil {
		return nil, err
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, rowsErr
	}
	return job, nil
}

type jobRowScanner interface {
	Scan(dest ...any) error
}

type jobRowData struct {
	payload                []byte
	errorDetails           sql.NullString
	startedAt, completedAt sql.NullTime
}

func (d *jobRowData) scanInto(scanner jobRowScanner, job *model.Job) error {
	return scanner.Scan(
		&job.ID,
		&job.ProjectID,
		&job.UserID,
		&job.Kind,
		&job.Status,
		&job.Progress,
		&job.CompletedUnits,
		&job.FailedUnits,
		&job.TargetUnits,
		&d.payload,
		&d.errorDetails,
		&job.SkipCreditCheck,
		&job.RetryCount,
		&job.MaxRetries,
		&d.startedAt,
		&d.completedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
}

func (d *jobRowData) apply(job *model.Job) {
	job.Payload = cloneJSON(d.payload)
	job.ErrorDetails = cloneNullableString(d.errorDetails)
	job.StartedAt = cloneNullableTime(d.startedAt)
	job.CompletedAt = cloneNullableTime(d.completedAt)
}

func scanJobFromRow(scanner jobRowScanner) (*model.Job, error) {
	job := &model.Job{}
	var data jobRowData
	if err := data.scanInto(scanner, job); err != nil {
		return nil, err
	}
	data.apply(job)
	return job, nil
}

func cloneJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return append(json.RawMessage(nil), raw...)
}

func cloneNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
