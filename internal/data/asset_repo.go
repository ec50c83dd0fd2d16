package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/filmforge/filmforge/internal/core"
)

// AssetRepo stores binary payloads durably so a provider's ephemeral URL is
// never the only reference saved. Assets are addressed as /assets/{id}.
type AssetRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAssetRepo constructs an AssetRepo.
func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Save stores the bytes and returns the durable URL for them.
func (r *AssetRepo) Save(ctx context.Context, params core.SaveAssetParams) (string, error) {
	if r == nil || r.DB == nil {
		return "", ErrAssetsNotConfigured
	}
	if len(params.Data) == 0 {
		return "", errors.New("asset data is required")
	}

	id := uuid.NewString()
	now := r.timeProvider.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO assets(id, project_id, kind, content_type, data, source_url, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, id, params.ProjectID, params.Kind, params.ContentType, params.Data, params.SourceURL, now)
	if err != nil {
		return "", fmt.Errorf("insert asset: %w", err)
	}
	return "/assets/" + id, nil
}

// Get retrieves an asset by id.
func (r *AssetRepo) Get(ctx context.Context, id string) (*core.Asset, error) {
	if r == nil || r.DB == nil {
		return nil, ErrAssetsNotConfigured
	}

	row := r.DB.QueryRowContext(ctx, `
		SELECT id, project_id, kind, content_type, data, source_url, created_at
		FROM assets
		WHERE id = $1
	`, id)

	asset := &core.Asset{}
	err := row.Scan(
		&asset.ID,
		&asset.ProjectID,
		&asset.Kind,
		&asset.ContentType,
		&asset.Data,
		&asset.SourceURL,
		&asset.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return asset, nil
}
