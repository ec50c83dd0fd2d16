package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

// SceneRepo is the permanent unit store for generated scenes. The engine's
// resume algorithm counts rows here rather than trusting job counters, so an
// insert must be idempotent on (project_id, scene_number).
type SceneRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSceneRepo constructs a SceneRepo.
func NewSceneRepo(db *sql.DB) *SceneRepo {
	return &SceneRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const sceneColumns = `
  id,
  project_id,
  scene_number,
  title,
  description,
  image_prompt,
  image_url,
  video_url,
  created_at,
  updated_at,
  image_at
`

// InsertIfAbsent persists a scene draft keyed by (projectID, scene number).
// Returns false without error when the ordinal already exists, so a resumed
// batch can replay earlier scenes without duplicating rows.
func (r *SceneRepo) InsertIfAbsent(
	ctx context.Context,
	projectID string,
	draft *model.SceneDraft,
) (bool, error) {
	if draft == nil {
		return false, errors.New("scene draft is required")
	}
	if err := draft.Validate(); err != nil {
		return false, err
	}
	if draft.SceneNumber <= 0 {
		return false, errors.New("scene number must be positive")
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO scenes(project_id, scene_number, title, description, image_prompt, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$6)
		ON CONFLICT (project_id, scene_number) DO NOTHING
	`, projectID, draft.SceneNumber, draft.Title, draft.Description, draft.ImagePrompt, now)
	if err != nil {
		// ON CONFLICT already absorbs duplicates; a unique violation can
		// still surface from a concurrent insert racing the arbiter index.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return false, nil
		}
		return false, fmt.Errorf("insert scene: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert scene rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// CountForProject returns how many scenes already exist for a project.
func (r *SceneRepo) CountForProject(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM scenes WHERE project_id = $1`, projectID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count scenes: %w", err)
	}
	return count, nil
}

// GetByNumber retrieves a scene by its ordinal within a project.
func (r *SceneRepo) GetByNumber(
	ctx context.Context,
	projectID string,
	sceneNumber int,
) (*model.Scene, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+sceneColumns+`
		FROM scenes
		WHERE project_id = $1 AND scene_number = $2
	`, projectID, sceneNumber)

	scene, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSceneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scene: %w", err)
	}
	return scene, nil
}

// ListForProject returns all scenes for a project ordered by scene number.
func (r *SceneRepo) ListForProject(ctx context.Context, projectID string) ([]*model.Scene, error) {
	return r.list(ctx, `
		SELECT `+sceneColumns+`
		FROM scenes
		WHERE project_id = $1
		ORDER BY scene_number ASC
	`, projectID)
}

// ListMissingImages returns scenes in the project without a generated image,
// ordered by scene number.
func (r *SceneRepo) ListMissingImages(ctx context.Context, projectID string) ([]*model.Scene, error) {
	return r.list(ctx, `
		SELECT `+sceneColumns+`
		FROM scenes
		WHERE project_id = $1 AND image_url IS NULL
		ORDER BY scene_number ASC
	`, projectID)
}

func (r *SceneRepo) list(ctx context.Context, query string, args ...any) ([]*model.Scene, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var scenes []*model.Scene
	for rows.Next() {
		scene, scanErr := scanScene(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan scene: %w", scanErr)
		}
		scenes = append(scenes, scene)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("list scenes: %w", rowsErr)
	}
	return scenes, nil
}

// SetImageURL attaches a durable image URL to a scene. Returns false when the
// scene does not exist.
func (r *SceneRepo) SetImageURL(ctx context.Context, params core.SetSceneAssetParams) (bool, error) {
	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE scenes
		SET image_url = $3,
		    image_at = $4,
		    updated_at = $4
		WHERE project_id = $1 AND scene_number = $2
	`, params.ProjectID, params.SceneNumber, params.URL, now)
	if err != nil {
		return false, fmt.Errorf("set scene image url: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set scene image rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// SetVideoURL attaches a durable video URL to a scene. Returns false when the
// scene does not exist.
func (r *SceneRepo) SetVideoURL(ctx context.Context, params core.SetSceneAssetParams) (bool, error) {
	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE scenes
		SET video_url = $3,
		    updated_at = $4
		WHERE project_id = $1 AND scene_number = $2
	`, params.ProjectID, params.SceneNumber, params.URL, now)
	if err != nil {
		return false, fmt.Errorf("set scene video url: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set scene video rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

type sceneRowScanner interface {
	Scan(dest ...any) error
}

func scanScene(scanner sceneRowScanner) (*model.Scene, error) {
	scene := &model.Scene{}
	var imageURL, videoURL sql.NullString
	var imageAt sql.NullTime
	err := scanner.Scan(
		&scene.ID,
		&scene.ProjectID,
		&scene.SceneNumber,
		&scene.Title,
		&scene.Description,
		&scene.ImagePrompt,
		&imageURL,
		&videoURL,
		&scene.CreatedAt,
		&scene.UpdatedAt,
		&imageAt,
	)
	if err != nil {
		return nil, err
	}
	scene.ImageURL = cloneNullableString(imageURL)
	scene.VideoURL = cloneNullableString(videoURL)
	scene.ImageAt = cloneNullableTime(imageAt)
	return scene, nil
}
