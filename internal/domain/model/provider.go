package model

import (
	"fmt"
	"strings"
)

// GenerationType selects which provider family a request targets.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type GenerationType string

const (
	// GenerationTypeText is LLM text generation (scene descriptions).
	GenerationTypeText GenerationType = "text"
	// GenerationTypeImage is still-image generation.
	GenerationTypeImage GenerationType = "image"
	// GenerationTypeVideo is video clip generation.
	GenerationTypeVideo GenerationType = "video"
)

// Valid returns true if the GenerationType is valid.
func (t GenerationType) Valid() bool {
	return t == GenerationTypeText || t == GenerationTypeImage || t == GenerationTypeVideo
}

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (t *GenerationType) UnmarshalText(text []byte) error {
	v := GenerationType(strings.ToLower(strings.TrimSpace(string(text))))
	if v.Valid() {
		*t = v
		return nil
	}
	return fmt.Errorf("invalid GenerationType: %q", string(text))
}

// GenerationFor maps a job kind to the provider family it invokes.
func GenerationFor(kind JobKind) GenerationType {
	switch kind {
	case JobKindSceneBatch:
		return GenerationTypeText
	case JobKindImageBatch:
		return GenerationTypeImage
	case JobKindVideo:
		return GenerationTypeVideo
	default:
		return GenerationTypeText
	}
}

// ProviderProtocol distinguishes the two provider call shapes.
type ProviderProtocol string

const (
	// ProtocolSync is a single HTTP round-trip returning the final payload.
	ProtocolSync ProviderProtocol = "sync"
	// ProtocolCreatePoll creates a task and polls it to a terminal state.
	ProtocolCreatePoll ProviderProtocol = "create_poll"
)

// ProviderConfig is the resolved, immutable-for-the-call description of how to
// reach a generation backend. Downstream code depends only on this value and
// never re-reads settings.
type ProviderConfig struct {
	// Provider is the backend identifier, e.g. "openai", "kling", "modal".
	Provider string
	// Model is the selected model name.
	Model string
	// APIKey is the credential; empty when the backend needs none.
	APIKey string
	// Endpoint overrides the provider base URL (self-hosted backends).
	Endpoint string
	// Protocol selects sync vs create-then-poll invocation.
	Protocol ProviderProtocol
	// OwnCredential is true when the caller supplied their own key, which
	// suppresses platform credit charging for the job.
	OwnCredential bool
}

// ProjectSettings holds the per-project generation overrides stored by the UI.
type ProjectSettings struct {
	ProjectID     string  `json:"project_id"     db:"project_id"`
	TextProvider  *string `json:"text_provider"  db:"text_provider"`
	TextModel     *string `json:"text_model"     db:"text_model"`
	ImageProvider *string `json:"image_provider" db:"image_provider"`
	ImageModel    *string `json:"image_model"    db:"image_model"`
	VideoProvider *string `json:"video_provider" db:"video_provider"`
	VideoModel    *string `json:"video_model"    db:"video_model"`
}

// UserCredential is a user-stored API key for a provider.
type UserCredential struct {
	UserID   string `json:"user_id"  db:"user_id"`
	Provider string `json:"provider" db:"provider"`
	APIKey   string `json:"-"        db:"api_key"`
	Endpoint string `json:"endpoint" db:"endpoint"`
}
