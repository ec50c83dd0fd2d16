package core

import (
	"context"
	"time"

	"github.com/filmforge/filmforge/internal/domain/model"
)

// This file contains repository and port interface definitions. Service
// implementations depend on these interfaces, not concrete implementations.

// JobRepository defines the interface for durable job record operations.
// All writes are immediately visible to status-polling callers.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// ReserveNext atomically claims the next pending job of the given kind.
	// Returns model.ErrNoJobsAvailable when the queue is empty.
	ReserveNext(ctx context.Context, kind model.JobKind) (*model.Job, error)
	// WaitForNotification blocks until a new job of the given kind is enqueued.
	WaitForNotification(ctx context.Context, kind model.JobKind) error
	// MarkProcessing transitions a pending job to processing. Idempotent: a
	// job already processing is left untouched and reported as ok.
	MarkProcessing(ctx context.Context, id string) error
	// UpdateProgress applies atomic counter increments and a monotonic
	// progress value. Re-applying the same update after a crash never moves
	// progress backwards.
	UpdateProgress(ctx context.Context, params UpdateProgressParams) error
	// Finish transitions a job to a terminal status with optional error
	// details. Finishing an already-terminal job is a no-op.
	Finish(ctx context.Context, params FinishJobParams) error
	Stats(ctx context.Context, kind model.JobKind) (*model.JobStats, error)
}

// UpdateProgressParams groups parameters for JobRepository.UpdateProgress.
type UpdateProgressParams struct {
	JobID          string
	Progress       int
	CompletedDelta int
	FailedDelta    int
}

// FinishJobParams groups parameters for JobRepository.Finish.
type FinishJobParams struct {
	JobID        string
	Status       model.JobStatus
	ErrorDetails string
}

// SceneRepository is the permanent unit store for generated scenes. Resume
// correctness depends on CountForProject counting persisted rows, not job
// counters.
type SceneRepository interface {
	// InsertIfAbsent persists a scene draft keyed by (projectID, scene
	// number). Returns false without error when the ordinal already exists.
	InsertIfAbsent(ctx context.Context, projectID string, draft *model.SceneDraft) (bool, error)
	// CountForProject returns how many scenes already exist for a project.
	CountForProject(ctx context.Context, projectID string) (int, error)
	GetByNumber(ctx context.Context, projectID string, sceneNumber int) (*model.Scene, error)
	ListForProject(ctx context.Context, projectID string) ([]*model.Scene, error)
	// ListMissingImages returns scenes in the project without an image yet.
	ListMissingImages(ctx context.Context, projectID string) ([]*model.Scene, error)
	SetImageURL(ctx context.Context, params SetSceneAssetParams) (bool, error)
	SetVideoURL(ctx context.Context, params SetSceneAssetParams) (bool, error)
}

// SetSceneAssetParams groups parameters for attaching an asset URL to a scene.
type SetSceneAssetParams struct {
	ProjectID   string
	SceneNumber int
	URL         string
}

// ProviderSettingsRepository reads stored provider configuration.
type ProviderSettingsRepository interface {
	// GetProjectSettings returns nil without error when the project has no
	// stored overrides.
	GetProjectSettings(ctx context.Context, projectID string) (*model.ProjectSettings, error)
	// GetUserCredential returns nil without error when the user has no stored
	// key for the provider.
	GetUserCredential(ctx context.Context, userID, provider string) (*model.UserCredential, error)
	// ListUserCredentials returns all stored credentials for a user.
	ListUserCredentials(ctx context.Context, userID string) ([]*model.UserCredential, error)
}

// ProviderResolver picks provider, model and credential for a generation type.
type ProviderResolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (model.ProviderConfig, error)
}

// ResolveRequest groups parameters for ProviderResolver.Resolve.
type ResolveRequest struct {
	UserID    string
	ProjectID string
	Type      model.GenerationType
}

// ChargeRequest groups parameters for CreditLedger.Charge.
type ChargeRequest struct {
	UserID string
	JobID  string
	// Amount is in credits; computed from successful units only.
	Amount int
	// Category tags the charge, e.g. "scene_generation".
	Category    string
	Description string
	ProjectID   string
	Provider    string
	// RealCostOverride optionally records actual provider cost for audit.
	RealCostOverride *float64
}

// CreditLedger meters billing credits. Charge is exactly-once per
// (job, category): re-invoking after a crash must not double-charge.
type CreditLedger interface {
	// Charge records the transaction. Returns false without error when the
	// charge was already recorded for this job and category.
	Charge(ctx context.Context, req ChargeRequest) (bool, error)
}

// CancelStore tracks cooperative cancellation flags for running jobs.
type CancelStore interface {
	RequestCancel(ctx context.Context, jobID string) error
	IsCancelRequested(ctx context.Context, jobID string) (bool, error)
	Clear(ctx context.Context, jobID string) error
}

// AssetStore persists binary payloads durably so a provider's ephemeral URL is
// never the only reference saved.
type AssetStore interface {
	// Save stores the bytes and returns a durable URL for them.
	Save(ctx context.Context, params SaveAssetParams) (string, error)
	Get(ctx context.Context, id string) (*Asset, error)
}

// SaveAssetParams groups parameters for AssetStore.Save.
type SaveAssetParams struct {
	ProjectID   string
	Kind        string // "image" or "video"
	ContentType string
	Data        []byte
	// SourceURL records where the bytes came from, for audit.
	SourceURL string
}

// Asset is a durably stored binary payload.
type Asset struct {
	ID          string
	ProjectID   string
	Kind        string
	ContentType string
	Data        []byte
	SourceURL   string
	CreatedAt   time.Time
}

// TextInvoker performs synchronous LLM text generation.
type TextInvoker interface {
	GenerateText(ctx context.Context, cfg model.ProviderConfig, req TextRequest) (*model.GenerationResult, error)
}

// TextRequest is an OpenAI-compatible chat request.
type TextRequest struct {
	Messages  []ChatMessage
	MaxTokens int
}

// ChatMessage is one chat turn.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MediaInvoker performs image/video generation, either via one synchronous
// round-trip or via create-then-poll, depending on the provider protocol.
type MediaInvoker interface {
	GenerateMedia(ctx context.Context, cfg model.ProviderConfig, req MediaRequest) (*model.GenerationResult, error)
}

// MediaRequest describes one image or video generation.
type MediaRequest struct {
	Prompt      string
	AspectRatio string
	DurationSec int
	// ReferenceImageURLs carry prior assets for visual consistency.
	ReferenceImageURLs []string
	// ModelParams are provider-specific input fields passed through verbatim.
	ModelParams map[string]any
}
