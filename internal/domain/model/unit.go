package model

import (
	"errors"
	"strings"
	"time"
)

// Scene is one persisted work unit: a generated scene description, optionally
// carrying the image and video produced for it by later jobs. The
// (project_id, scene_number) pair is the stable ordinal that resume and
// duplicate checks key off.
type Scene struct {
	ID          string     `json:"id"                    db:"id"`
	ProjectID   string     `json:"project_id"            db:"project_id"`
	SceneNumber int        `json:"scene_number"          db:"scene_number"`
	Title       string     `json:"title"                 db:"title"`
	Description string     `json:"description"           db:"description"`
	ImagePrompt string     `json:"image_prompt"          db:"image_prompt"`
	ImageURL    *string    `json:"image_url,omitempty"   db:"image_url"`
	VideoURL    *string    `json:"video_url,omitempty"   db:"video_url"`
	CreatedAt   time.Time  `json:"created_at"            db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"            db:"updated_at"`
	ImageAt     *time.Time `json:"image_at,omitempty"    db:"image_at"`
}

// SceneDraft is one scene description parsed out of an LLM batch response,
// before persistence assigns it an id.
type SceneDraft struct {
	SceneNumber int    `json:"scene_number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImagePrompt string `json:"image_prompt"`
}

// Validate checks that a parsed draft carries enough to be persisted. The
// scene number is assigned by the orchestrator from the batch offset, so a
// missing number in the raw LLM output is not an error here.
func (d *SceneDraft) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return errors.New("scene description is required")
	}
	return nil
}

// UnitOutcome records the result of one work unit attempt inside a batch.
type UnitOutcome struct {
	UnitNumber int
	Err        error
}

// GenerationResult is the outcome of invoking a provider for one request:
// either a payload (text, image reference, video URL) or a failure. It is
// produced by the invoker and consumed by the parser and orchestrator.
type GenerationResult struct {
	// Text holds the raw LLM output for text generation.
	Text string
	// URL holds the durable location of a generated image or video.
	URL string
	// Provider is the provider identifier that produced the result.
	Provider string
	// RawTaskState is the provider-declared terminal state for async tasks.
	RawTaskState string
}
