// Package model defines the core data types used throughout the filmforge generation engine.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobKind represents the kind of generation job to be executed.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobKind string

// JobStatus represents the current status of a generation job.
type JobStatus string

const (
	// JobKindSceneBatch generates a set of scene descriptions from a story outline.
	JobKindSceneBatch JobKind = "scene_batch"
	// JobKindImageBatch generates images for a set of existing scenes.
	JobKindImageBatch JobKind = "image_batch"
	// JobKindVideo generates a video clip for a single scene.
	JobKindVideo JobKind = "video"

	// JobStatusPending indicates a job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing indicates a job is currently being processed.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates every unit of the job succeeded.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusCompletedWithErrors indicates the job ran to the end but some units failed.
	JobStatusCompletedWithErrors JobStatus = "completed_with_errors"
	// JobStatusFailed indicates a fatal condition aborted the job.
	JobStatusFailed JobStatus = "failed"
	// JobStatusCancelled indicates the job was cancelled before finishing.
	JobStatusCancelled JobStatus = "cancelled"
)

// ErrNoJobsAvailable is returned when no jobs are available for reservation.
var ErrNoJobsAvailable = errors.New("no jobs available")

// UnmarshalText implements encoding.TextUnmarshaler for JobKind to allow env parsing.
func (k *JobKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	jk := JobKind(v)
	if jk.Valid() {
		*k = jk
		return nil
	}
	return fmt.Errorf("invalid JobKind: %q", v)
}

// Valid returns true if the JobKind is valid.
func (k JobKind) Valid() bool {
	return k == JobKindSceneBatch || k == JobKindImageBatch || k == JobKindVideo
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted,
		JobStatusCompletedWithErrors, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true if the JobStatus is a terminal state.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCompletedWithErrors, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// Job is the durable state for one batch-generation request.
//
// The Job record is a status/audit projection: generated units are written to
// their own permanent storage and resume logic counts those rows, never the
// counters here.
type Job struct {
	ID              string          `json:"id"                     db:"id"`
	ProjectID       string          `json:"project_id"             db:"project_id"`
	UserID          string          `json:"user_id"                db:"user_id"`
	Kind            JobKind         `json:"kind"                   db:"kind"`
	Status          JobStatus       `json:"status"                 db:"status"`
	Progress        int             `json:"progress"               db:"progress"`
	CompletedUnits  int             `json:"completed_units"        db:"completed_units"`
	FailedUnits     int             `json:"failed_units"           db:"failed_units"`
	TargetUnits     int             `json:"target_units"           db:"target_units"`
	Payload         json.RawMessage `json:"payload"                db:"payload"`
	ErrorDetails    *string         `json:"error_details,omitempty" db:"error_details"`
	SkipCreditCheck bool            `json:"skip_credit_check"      db:"skip_credit_check"`
	RetryCount      int             `json:"retry_count"            db:"retry_count"`
	MaxRetries      int             `json:"max_retries"            db:"max_retries"`
	StartedAt       *time.Time      `json:"started_at,omitempty"   db:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt       time.Time       `json:"created_at"             db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"             db:"updated_at"`
}

// CreateJobRequest represents a request to enqueue a new generation job.
type CreateJobRequest struct {
	Kind            JobKind         `json:"kind"`
	ProjectID       string          `json:"project_id"`
	UserID          string          `json:"user_id"`
	TargetUnits     int             `json:"target_units"`
	Payload         json.RawMessage `json:"payload"`
	SkipCreditCheck bool            `json:"skip_credit_check,omitempty"`
	MaxRetries      int             `json:"max_retries,omitempty"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if !r.Kind.Valid() {
		return errors.New("invalid job kind")
	}
	if strings.TrimSpace(r.ProjectID) == "" {
		return errors.New("project id is required")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	if r.TargetUnits <= 0 {
		return errors.New("target units must be positive")
	}
	if r.Kind == JobKindVideo && r.TargetUnits != 1 {
		return errors.New("video jobs target exactly one unit")
	}
	if len(r.Payload) == 0 {
		return errors.New("payload is required")
	}
	if r.MaxRetries < 0 {
		return errors.New("max retries must be >= 0")
	}
	return nil
}

// JobStatusResponse is the caller-facing status projection, polled until terminal.
type JobStatusResponse struct {
	ID             string     `json:"id"`
	Status         JobStatus  `json:"status"`
	Progress       int        `json:"progress"`
	CompletedUnits int        `json:"completed_units"`
	FailedUnits    int        `json:"failed_units"`
	TargetUnits    int        `json:"target_units"`
	ErrorDetails   *string    `json:"error_details,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// StatusResponse projects a Job into its caller-facing status view.
func (j *Job) StatusResponse() *JobStatusResponse {
	return &JobStatusResponse{
		ID:             j.ID,
		Status:         j.Status,
		Progress:       j.Progress,
		CompletedUnits: j.CompletedUnits,
		FailedUnits:    j.FailedUnits,
		TargetUnits:    j.TargetUnits,
		ErrorDetails:   j.ErrorDetails,
		CompletedAt:    j.CompletedAt,
	}
}

// SceneBatchPayload is the work descriptor for scene_batch jobs.
type SceneBatchPayload struct {
	StoryOutline string   `json:"story_outline"`
	Characters   []string `json:"characters,omitempty"`
	Style        string   `json:"style,omitempty"`
	// OnlyUnits restricts generation to the listed scene numbers. Used to
	// resubmit a job scoped to previously failed units.
	OnlyUnits []int `json:"only_units,omitempty"`
}

// ImageBatchPayload is the work descriptor for image_batch jobs.
type ImageBatchPayload struct {
	AspectRatio string `json:"aspect_ratio,omitempty"`
	// ReferenceAssetURLs carry prior character images for visual consistency.
	ReferenceAssetURLs []string `json:"reference_asset_urls,omitempty"`
	OnlyUnits          []int    `json:"only_units,omitempty"`
}

// VideoPayload is the work descriptor for video jobs.
type VideoPayload struct {
	SceneNumber int    `json:"scene_number"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	DurationSec int    `json:"duration_sec,omitempty"`
}

// JobStats represents statistics about jobs in different states.
type JobStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Cancelled  int `json:"cancelled"`
}
