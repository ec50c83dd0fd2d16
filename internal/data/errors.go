package data

import "errors"

var (
	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = errors.New("job not found")
	// ErrSceneNotFound is returned when a scene is not found.
	ErrSceneNotFound = errors.New("scene not found")
	// ErrAssetNotFound is returned when an asset is not found.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrAssetsNotConfigured is returned when the asset store has no database.
	ErrAssetsNotConfigured = errors.New("asset store not configured")
)
