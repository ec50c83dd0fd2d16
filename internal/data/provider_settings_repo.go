package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/filmforge/filmforge/internal/domain/model"
)

// ProviderSettingsRepo reads stored provider configuration: per-project
// overrides and user-stored API keys. The resolver is the only consumer; all
// downstream code sees a resolved ProviderConfig value, never these rows.
type ProviderSettingsRepo struct {
	DB *sql.DB
}

// NewProviderSettingsRepo constructs a ProviderSettingsRepo.
func NewProviderSettingsRepo(db *sql.DB) *ProviderSettingsRepo {
	return &ProviderSettingsRepo{DB: db}
}

// GetProjectSettings returns the project's generation overrides, or nil when
// the project has none stored.
func (r *ProviderSettingsRepo) GetProjectSettings(
	ctx context.Context,
	projectID string,
) (*model.ProjectSettings, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT project_id, text_provider, text_model, image_provider, image_model, video_provider, video_model
		FROM project_settings
		WHERE project_id = $1
	`, projectID)

	s := &model.ProjectSettings{}
	var textProvider, textModel, imageProvider, imageModel, videoProvider, videoModel sql.NullString
	err := row.Scan(
		&s.ProjectID,
		&textProvider,
		&textModel,
		&imageProvider,
		&imageModel,
		&videoProvider,
		&videoModel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project settings: %w", err)
	}

	s.TextProvider = cloneNullableString(textProvider)
	s.TextModel = cloneNullableString(textModel)
	s.ImageProvider = cloneNullableString(imageProvider)
	s.ImageModel = cloneNullableString(imageModel)
	s.VideoProvider = cloneNullableString(videoProvider)
	s.VideoModel = cloneNullableString(videoModel)
	return s, nil
}

// GetUserCredential returns the user's stored key for a provider, or nil when
// none is stored.
func (r *ProviderSettingsRepo) GetUserCredential(
	ctx context.Context,
	userID, provider string,
) (*model.UserCredential, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, provider, api_key, COALESCE(endpoint, '')
		FROM user_provider_credentials
		WHERE user_id = $1 AND provider = $2
	`, userID, provider)

	cred := &model.UserCredential{}
	err := row.Scan(&cred.UserID, &cred.Provider, &cred.APIKey, &cred.Endpoint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user credential: %w", err)
	}
	return cred, nil
}

// ListUserCredentials returns all stored credentials for a user.
func (r *ProviderSettingsRepo) ListUserCredentials(
	ctx context.Context,
	userID string,
) ([]*model.UserCredential, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, provider, api_key, COALESCE(endpoint, '')
		FROM user_provider_credentials
		WHERE user_id = $1
		ORDER BY provider ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user credentials: %w", err)
	}
	defer rows.Close()

	var creds []*model.UserCredential
	for rows.Next() {
		cred := &model.UserCredential{}
		if scanErr := rows.Scan(&cred.UserID, &cred.Provider, &cred.APIKey, &cred.Endpoint); scanErr != nil {
			return nil, fmt.Errorf("scan user credential: %w", scanErr)
		}
		creds = append(creds, cred)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("list user credentials: %w", rowsErr)
	}
	return creds, nil
}
