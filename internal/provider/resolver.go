// Package provider resolves generation backends and invokes them.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/filmforge/filmforge/config"
	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

// allowedTextModels is the fixed allow-list cross-checked against project
// settings. An unrecognized model falls back to the type default rather than
// being rejected, to tolerate stale configuration.
var allowedTextModels = map[string]bool{
	"gpt-4o":            true,
	"gpt-4o-mini":       true,
	"gpt-4.1":           true,
	"claude-sonnet-4-5": true,
	"deepseek-chat":     true,
	"qwen-max":          true,
}

// knownProtocols maps provider identifiers to their call shape. Unknown
// providers with an endpoint are assumed self-hosted synchronous.
var knownProtocols = map[string]model.ProviderProtocol{
	"openai":    model.ProtocolSync,
	"anthropic": model.ProtocolSync,
	"deepseek":  model.ProtocolSync,
	"modal":     model.ProtocolSync,
	"kling":     model.ProtocolCreatePoll,
	"runway":    model.ProtocolCreatePoll,
	"minimax":   model.ProtocolCreatePoll,
}

// Resolver picks provider, model and credential for a generation type.
// Resolution order: project-level override, user-stored credential, platform
// default. The returned ProviderConfig is immutable for the call; downstream
// code never re-reads settings.
type Resolver struct {
	settings core.ProviderSettingsRepository
	defaults config.ProvidersConfig
	logger   *slog.Logger
}

// ResolverOptions groups dependencies for the Resolver.
type ResolverOptions struct {
	Settings core.ProviderSettingsRepository
	Defaults config.ProvidersConfig
	Logger   *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		settings: opts.Settings,
		defaults: opts.Defaults,
		logger:   logger.With("component", "provider_resolver"),
	}
}

// Resolve returns the ProviderConfig for a generation request.
// core.ErrNoProviderConfigured is fatal for the whole job.
func (r *Resolver) Resolve(ctx context.Context, req core.ResolveRequest) (model.ProviderConfig, error) {
	if !req.Type.Valid() {
		return model.ProviderConfig{}, fmt.Errorf("invalid generation type: %s", req.Type)
	}

	override, overrideModel, err := r.projectOverride(ctx, req)
	if err != nil {
		return model.ProviderConfig{}, err
	}

	def := r.defaultFor(req.Type)

	providerName := def.Provider
	modelName := def.Model
	if override != "" {
		providerName = override
		if overrideModel != "" {
			modelName = overrideModel
		}
	}
	modelName = r.checkModelAllowList(ctx, req.Type, modelName, def.Model)

	if providerName == "" {
		return model.ProviderConfig{}, core.ErrNoProviderConfigured
	}

	// A user-stored key for the chosen provider takes precedence over the
	// platform credential and marks the call as own-credential mode.
	if r.settings != nil {
		cred, credErr := r.settings.GetUserCredential(ctx, req.UserID, providerName)
		if credErr != nil {
			return model.ProviderConfig{}, fmt.Errorf("lookup user credential: %w", credErr)
		}
		if cred != nil && cred.APIKey != "" {
			return model.ProviderConfig{
				Provider:      providerName,
				Model:         modelName,
				APIKey:        cred.APIKey,
				Endpoint:      firstNonEmpty(cred.Endpoint, def.Endpoint),
				Protocol:      protocolFor(providerName, firstNonEmpty(cred.Endpoint, def.Endpoint)),
				OwnCredential: true,
			}, nil
		}
	}

	// Without a user key, the platform credential only applies when the
	// chosen provider is the platform default. A project override naming a
	// provider nobody holds a key for is a fatal misconfiguration.
	if providerName != def.Provider || !def.Configured() {
		return model.ProviderConfig{}, core.ErrNoProviderConfigured
	}

	return model.ProviderConfig{
		Provider: providerName,
		Model:    modelName,
		APIKey:   def.APIKey,
		Endpoint: def.Endpoint,
		Protocol: protocolFor(providerName, def.Endpoint),
	}, nil
}

func (r *Resolver) projectOverride(
	ctx context.Context,
	req core.ResolveRequest,
) (providerName, modelName string, err error) {
	if r.settings == nil {
		return "", "", nil
	}
	settings, err := r.settings.GetProjectSettings(ctx, req.ProjectID)
	if err != nil {
		return "", "", fmt.Errorf("lookup project settings: %w", err)
	}
	if settings == nil {
		return "", "", nil
	}

	switch req.Type {
	case model.GenerationTypeText:
		return deref(settings.TextProvider), deref(settings.TextModel), nil
	case model.GenerationTypeImage:
		return deref(settings.ImageProvider), deref(settings.ImageModel), nil
	case model.GenerationTypeVideo:
		return deref(settings.VideoProvider), deref(settings.VideoModel), nil
	default:
		return "", "", nil
	}
}

// checkModelAllowList falls back to the type default when a stored text model
// is not recognized. Image/video model names are provider-specific and pass
// through unchecked.
func (r *Resolver) checkModelAllowList(
	ctx context.Context,
	genType model.GenerationType,
	modelName, defaultModel string,
) string {
	if genType != model.GenerationTypeText || modelName == "" {
		return modelName
	}
	if allowedTextModels[modelName] {
		return modelName
	}
	r.logger.WarnContext(ctx, "unrecognized text model, falling back to default",
		"model", modelName,
		"default", defaultModel,
	)
	return defaultModel
}

func (r *Resolver) defaultFor(genType model.GenerationType) config.ProviderDefault {
	switch genType {
	case model.GenerationTypeText:
		return r.defaults.Text
	case model.GenerationTypeImage:
		return r.defaults.Image
	case model.GenerationTypeVideo:
		return r.defaults.Video
	default:
		return config.ProviderDefault{}
	}
}

func protocolFor(providerName, endpoint string) model.ProviderProtocol {
	if p, ok := knownProtocols[providerName]; ok {
		return p
	}
	if endpoint != "" {
		return model.ProtocolSync
	}
	return model.ProtocolCreatePoll
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
