package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

// qualitySuffix is appended to every image prompt sent to the self-hosted
// diffusion endpoint.
const qualitySuffix = ", Ultra HD, 4K, cinematic composition."

// imageDimensions maps aspect ratios to the diffusion model's native sizes.
// Unknown ratios fall back to square.
var imageDimensions = map[string][2]int{
	"1:1":  {1328, 1328},
	"16:9": {1664, 928},
	"9:16": {928, 1664},
	"4:3":  {1472, 1140},
	"3:4":  {1140, 1472},
	"3:2":  {1584, 1056},
	"2:3":  {1056, 1584},
}

// DimensionsFor returns the render size for an aspect ratio.
func DimensionsFor(aspectRatio string) (width, height int) {
	if dims, ok := imageDimensions[aspectRatio]; ok {
		return dims[0], dims[1]
	}
	return 1328, 1328
}

// SyncImageClientOptions configures a SyncImageClient.
type SyncImageClientOptions struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// SyncImageClient talks to the self-hosted synchronous diffusion endpoint.
// One POST blocks until generation finishes and returns the image inline as a
// base64 data URL, so there is no task handle to poll.
type SyncImageClient struct {
	http   *http.Client
	logger *slog.Logger
}

// NewSyncImageClient constructs a SyncImageClient. Generation on a cold GPU
// container can take minutes, so the default timeout is generous.
func NewSyncImageClient(opts SyncImageClientOptions) *SyncImageClient {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Minute}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncImageClient{
		http:   hc,
		logger: logger.With("component", "sync_image_client"),
	}
}

type syncImageRequest struct {
	Prompt          string   `json:"prompt"`
	AspectRatio     string   `json:"aspect_ratio"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	ReferenceImages []string `json:"reference_images,omitempty"`
}

type syncImageResponse struct {
	// Image is a data URL: "data:image/png;base64,...".
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// GenerateMedia renders one image. The returned URL is a base64 data URL; the
// caller is responsible for persisting it to durable storage.
func (c *SyncImageClient) GenerateMedia(
	ctx context.Context,
	cfg model.ProviderConfig,
	req core.MediaRequest,
) (*model.GenerationResult, error) {
	if cfg.Endpoint == "" {
		return nil, core.Fatal(fmt.Errorf("provider %s has no endpoint configured", cfg.Provider))
	}

	width, height := DimensionsFor(req.AspectRatio)
	payload := syncImageRequest{
		Prompt:          req.Prompt + qualitySuffix,
		AspectRatio:     req.AspectRatio,
		Width:           width,
		Height:          height,
		ReferenceImages: req.ReferenceImageURLs,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal image request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, strings.TrimSuffix(cfg.Endpoint, "/"), bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	c.logger.DebugContext(ctx, "image generation request",
		"provider", cfg.Provider, "width", width, "height", height)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &core.UnitError{Err: fmt.Errorf("image generation request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, core.ErrInvalidCredential
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &core.UnitError{
			Err: fmt.Errorf("image generation status %d: %s", resp.StatusCode, readSnippet(resp.Body)),
		}
	}

	var parsed syncImageResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil {
		return nil, &core.UnitError{Err: fmt.Errorf("decode image response: %w", decodeErr)}
	}
	if parsed.Image == "" {
		return nil, &core.UnitError{ProviderReason: "generation returned an empty image"}
	}

	return &model.GenerationResult{
		URL:      parsed.Image,
		Provider: cfg.Provider,
	}, nil
}
