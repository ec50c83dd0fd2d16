package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
	"github.com/filmforge/filmforge/internal/testutil"
)

func sceneBatchRequest() *model.CreateJobRequest {
	return &model.CreateJobRequest{
		Kind:        model.JobKindSceneBatch,
		ProjectID:   "proj-1",
		UserID:      "user-1",
		TargetUnits: 12,
		Payload:     json.RawMessage(`{"story_outline": "a heist on the moon"}`),
	}
}

func TestJobRepo_Create(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	tests := []struct {
		name    string
		req     *model.CreateJobRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid scene batch",
			req:     sceneBatchRequest(),
			wantErr: false,
		},
		{
			name: "valid video job with options",
			req: &model.CreateJobRequest{
				Kind:            model.JobKindVideo,
				ProjectID:       "proj-1",
				UserID:          "user-1",
				TargetUnits:     1,
				Payload:         json.RawMessage(`{"scene_number": 3, "duration_sec": 5}`),
				SkipCreditCheck: true,
				MaxRetries:      4,
			},
			wantErr: false,
		},
		{
			name: "invalid kind",
			req: &model.CreateJobRequest{
				Kind:        "sandwich",
				ProjectID:   "proj-1",
				UserID:      "user-1",
				TargetUnits: 1,
				Payload:     json.RawMessage(`{}`),
			},
			wantErr: true,
			errMsg:  "invalid job kind",
		},
		{
			name: "zero target units",
			req: &model.CreateJobRequest{
				Kind:      model.JobKindSceneBatch,
				ProjectID: "proj-1",
				UserID:    "user-1",
				Payload:   json.RawMessage(`{}`),
			},
			wantErr: true,
			errMsg:  "target units must be positive",
		},
		{
			name: "video job with multiple units",
			req: &model.CreateJobRequest{
				Kind:        model.JobKindVideo,
				ProjectID:   "proj-1",
				UserID:      "user-1",
				TargetUnits: 3,
				Payload:     json.RawMessage(`{"scene_number": 1}`),
			},
			wantErr: true,
			errMsg:  "video jobs target exactly one unit",
		},
		{
			name: "empty payload",
			req: &model.CreateJobRequest{
				Kind:        model.JobKindSceneBatch,
				ProjectID:   "proj-1",
				UserID:      "user-1",
				TargetUnits: 5,
			},
			wantErr: true,
			errMsg:  "payload is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.WithTestDB(t, func(db *sql.DB) {
				repo := NewJobRepo(db, RepoConfig{})

				job, err := repo.Create(context.Background(), tt.req)

				if tt.wantErr {
					require.Error(t, err)
					assert.Contains(t, err.Error(), tt.errMsg)
					assert.Nil(t, job)
					return
				}

				require.NoError(t, err)
				require.NotNil(t, job)

				assert.NotEmpty(t, job.ID)
				assert.Equal(t, tt.req.Kind, job.Kind)
				assert.Equal(t, tt.req.ProjectID, job.ProjectID)
				assert.Equal(t, tt.req.UserID, job.UserID)
				assert.Equal(t, model.JobStatusPending, job.Status)
				assert.Equal(t, 0, job.Progress)
				assert.Equal(t, 0, job.CompletedUnits)
				assert.Equal(t, 0, job.FailedUnits)
				assert.Equal(t, tt.req.TargetUnits, job.TargetUnits)
				assert.JSONEq(t, string(tt.req.Payload), string(job.Payload))
				assert.Equal(t, tt.req.SkipCreditCheck, job.SkipCreditCheck)
				assert.Nil(t, job.StartedAt)
				assert.Nil(t, job.CompletedAt)
				assert.NotZero(t, job.CreatedAt)
				assert.NotZero(t, job.UpdatedAt)

				if tt.req.MaxRetries > 0 {
					assert.Equal(t, tt.req.MaxRetries, job.MaxRetries)
				} else {
					assert.Equal(t, 2, job.MaxRetries) // default
				}

				// The record must be readable back by ID.
				fetched, err := repo.GetByID(context.Background(), job.ID)
				require.NoError(t, err)
				assert.Equal(t, job.ID, fetched.ID)
				assert.Equal(t, job.Status, fetched.Status)
			})
		})
	}
}

func TestJobRepo_GetByID_NotFound(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		job, err := repo.GetByID(context.Background(), uuid.NewString())
		require.Error(t, err)
		require.ErrorIs(t, err, ErrJobNotFound)
		assert.Nil(t, job)
	})
}

func TestJobRepo_ReserveNext(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	t.Run("claims pending jobs until drained", func(t *testing.T) {
		testutil.WithTestDB(t, func(db *sql.DB) {
			repo := NewJobRepo(db, RepoConfig{})
			ctx := context.Background()

			first, err := repo.Create(ctx, sceneBatchRequest())
			require.NoError(t, err)
			second, err := repo.Create(ctx, sceneBatchRequest())
			require.NoError(t, err)

			reservedA, err := repo.ReserveNext(ctx, model.JobKindSceneBatch)
			require.NoError(t, err)
			reservedB, err := repo.ReserveNext(ctx, model.JobKindSceneBatch)
			require.NoError(t, err)

			assert.ElementsMatch(t,
				[]string{first.ID, second.ID},
				[]string{reservedA.ID, reservedB.ID},
			)
			assert.Equal(t, model.JobStatusProcessing, reservedA.Status)
			assert.Equal(t, model.JobStatusProcessing, reservedB.Status)
			assert.NotNil(t, reservedA.StartedAt)

			_, err = repo.ReserveNext(ctx, model.JobKindSceneBatch)
			require.ErrorIs(t, err, model.ErrNoJobsAvailable)
		})
	})

	t.Run("kinds are isolated", func(t *testing.T) {
		testutil.WithTestDB(t, func(db *sql.DB) {
			repo := NewJobRepo(db, RepoConfig{})
			ctx := context.Background()

			_, err := repo.Create(ctx, sceneBatchRequest())
			require.NoError(t, err)

			_, err = repo.ReserveNext(ctx, model.JobKindImageBatch)
			require.ErrorIs(t, err, model.ErrNoJobsAvailable)
		})
	})

	t.Run("invalid kind", func(t *testing.T) {
		testutil.WithTestDB(t, func(db *sql.DB) {
			repo := NewJobRepo(db, RepoConfig{})

			_, err := repo.ReserveNext(context.Background(), "invalid")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid job kind")
		})
	})
}

func TestJobRepo_ReserveNext_StaleLeaseRequeue(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		timeProvider := NewFixedTimeProvider(time.Now())
		repo := NewJobRepo(db, RepoConfig{
			Lease:        time.Minute,
			TimeProvider: timeProvider,
		})
		ctx := context.Background()

		job, err := repo.Create(ctx, sceneBatchRequest())
		require.NoError(t, err)

		reserved, err := repo.ReserveNext(ctx, model.JobKindSceneBatch)
		require.NoError(t, err)
		require.Equal(t, job.ID, reserved.ID)

		// The lease is still fresh, so the job is invisible to other workers.
		_, err = repo.ReserveNext(ctx, model.JobKindSceneBatch)
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)

		// Once the lease expires the job becomes claimable again without any
		// status reset, which is what lets a crashed job resume.
		timeProvider.AddTime(2 * time.Minute)

		requeued, err := repo.ReserveNext(ctx, model.JobKindSceneBatch)
		require.NoError(t, err)
		assert.Equal(t, job.ID, requeued.ID)
		assert.Equal(t, model.JobStatusProcessing, requeued.Status)
		require.NotNil(t, requeued.StartedAt)
		require.NotNil(t, reserved.StartedAt)
		assert.WithinDuration(t, *reserved.StartedAt, *requeued.StartedAt, time.Second)
	})
}

func TestJobRepo_MarkProcessing(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		job, err := repo.Create(ctx, sceneBatchRequest())
		require.NoError(t, err)

		require.NoError(t, repo.MarkProcessing(ctx, job.ID))

		processing, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusProcessing, processing.Status)
		assert.NotNil(t, processing.StartedAt)

		// Re-applying the transition is a safe no-op.
		require.NoError(t, repo.MarkProcessing(ctx, job.ID))

		// Terminal jobs are left alone.
		require.NoError(t, repo.Finish(ctx, core.FinishJobParams{
			JobID:  job.ID,
			Status: model.JobStatusFailed,
		}))
		require.NoError(t, repo.MarkProcessing(ctx, job.ID))

		finished, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusFailed, finished.Status)

		// Unknown jobs surface as not found.
		err = repo.MarkProcessing(ctx, uuid.NewString())
		require.ErrorIs(t, err, ErrJobNotFound)
	})
}

func TestJobRepo_UpdateProgress(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		job, err := repo.Create(ctx, sceneBatchRequest())
		require.NoError(t, err)

		require.NoError(t, repo.UpdateProgress(ctx, core.UpdateProgressParams{
			JobID:          job.ID,
			Progress:       40,
			CompletedDelta: 2,
			FailedDelta:    1,
		}))

		updated, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 40, updated.Progress)
		assert.Equal(t, 2, updated.CompletedUnits)
		assert.Equal(t, 1, updated.FailedUnits)

		// A lower progress value never moves the bar backwards, but counters
		// still accumulate.
		require.NoError(t, repo.UpdateProgress(ctx, core.UpdateProgressParams{
			JobID:          job.ID,
			Progress:       20,
			CompletedDelta: 1,
		}))

		updated, err = repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 40, updated.Progress)
		assert.Equal(t, 3, updated.CompletedUnits)
		assert.Equal(t, 1, updated.FailedUnits)

		err = repo.UpdateProgress(ctx, core.UpdateProgressParams{JobID: job.ID, Progress: 101})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "progress out of range")
	})
}

func TestJobRepo_Finish(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	t.Run("completed sets progress and timestamp", func(t *testing.T) {
		testutil.WithTestDB(t, func(db *sql.DB) {
			repo := NewJobRepo(db, RepoConfig{})
			ctx := context.Background()

			job, err := repo.Create(ctx, sceneBatchRequest())
			require.NoError(t, err)

			require.NoError(t, repo.Finish(ctx, core.FinishJobParams{
				JobID:  job.ID,
				Status: model.JobStatusCompleted,
			}))

			finished, err := repo.GetByID(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, model.JobStatusCompleted, finished.Status)
			assert.Equal(t, 100, finished.Progress)
			assert.NotNil(t, finished.CompletedAt)
			assert.Nil(t, finished.ErrorDetails)
		})
	})

	t.Run("failed records details and finishes the progress bar", func(t *testing.T) {
		testutil.WithTestDB(t, func(db *sql.DB) {
			repo := NewJobRepo(db, RepoConfig{})
			ctx := context.Background()

			job, err := repo.Create(ctx, sceneBatchRequest())
			require.NoError(t, err)
			require.NoError(t, repo.UpdateProgress(ctx, core.UpdateProgressParams{
				JobID:    job.ID,
				Progress: 40,
			}))

			require.NoError(t, repo.Finish(ctx, core.FinishJobParams{
				JobID:        job.ID,
				Status:       model.JobStatusFailed,
				ErrorDetails: "provider rejected the credential",
			}))

			finished, err := repo.GetByID(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, model.JobStatusFailed, finished.Status)
			assert.Equal(t, 100, finished.Progress)
			require.NotNil(t, finished.ErrorDetails)
			assert.Equal(t, "provider rejected the credential", *finished.ErrorDetails)
		})
	})

	t.Run("finishing a terminal job is a no-op", func(t *testing.T) {
		testutil.WithTestDB(t, func(db *sql.DB) {
			repo := NewJobRepo(db, RepoConfig{})
			ctx := context.Background()

			job, err := repo.Create(ctx, sceneBatchRequest())
			require.NoError(t, err)

			require.NoError(t, repo.Finish(ctx, core.FinishJobParams{
				JobID:  job.ID,
				Status: model.JobStatusCancelled,
			}))
			require.NoError(t, repo.Finish(ctx, core.FinishJobParams{
				JobID:  job.ID,
				Status: model.JobStatusCompleted,
			}))

			finished, err := repo.GetByID(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, model.JobStatusCancelled, finished.Status)
		})
	})

	t.Run("rejects non-terminal status", func(t *testing.T) {
		testutil.WithTestDB(t, func(db *sql.DB) {
			repo := NewJobRepo(db, RepoConfig{})

			err := repo.Finish(context.Background(), core.FinishJobParams{
				JobID:  uuid.NewString(),
				Status: model.JobStatusProcessing,
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "terminal status")
		})
	})
}

func TestJobRepo_Stats(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		var jobs []*model.Job
		for i := 0; i < 6; i++ {
			job, err := repo.Create(ctx, sceneBatchRequest())
			require.NoError(t, err)
			jobs = append(jobs, job)
		}

		finish := func(id string, status model.JobStatus) {
			require.NoError(t, repo.Finish(ctx, core.FinishJobParams{JobID: id, Status: status}))
		}
		finish(jobs[1].ID, model.JobStatusCompleted)
		finish(jobs[2].ID, model.JobStatusCompletedWithErrors)
		finish(jobs[3].ID, model.JobStatusFailed)
		finish(jobs[4].ID, model.JobStatusCancelled)

		// Claim one of the two remaining pending jobs into processing.
		_, err := repo.ReserveNext(ctx, model.JobKindSceneBatch)
		require.NoError(t, err)

		// A job of another kind must not leak into the counts.
		_, err = repo.Create(ctx, &model.CreateJobRequest{
			Kind:        model.JobKindImageBatch,
			ProjectID:   "proj-1",
			UserID:      "user-1",
			TargetUnits: 3,
			Payload:     json.RawMessage(`{"aspect_ratio": "16:9"}`),
		})
		require.NoError(t, err)

		stats, err := repo.Stats(ctx, model.JobKindSceneBatch)
		require.NoError(t, err)
		require.NotNil(t, stats)

		assert.Equal(t, 1, stats.Pending)
		assert.Equal(t, 1, stats.Processing)
		assert.Equal(t, 2, stats.Completed)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, 1, stats.Cancelled)
	})
}
