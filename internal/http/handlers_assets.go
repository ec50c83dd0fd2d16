package httpx

import (
	"errors"
	"net/http"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/data"
)

// AssetHandlers serves durably stored generation outputs.
type AssetHandlers struct {
	Store core.AssetStore
}

// GetAsset streams one stored asset.
func (h *AssetHandlers) GetAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{
			Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("asset id is required"),
		})
		return
	}

	asset, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrAssetNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "asset_failed", Err: err})
		return
	}

	contentType := asset.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Data)
}
