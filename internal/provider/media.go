package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

// MediaDispatcher routes media generation to the protocol-appropriate client.
// Self-hosted diffusion endpoints answer a single blocking POST; commercial
// video vendors hand back a task id that must be polled.
type MediaDispatcher struct {
	sync     core.MediaInvoker
	taskPoll core.MediaInvoker
}

// NewMediaDispatcher constructs a dispatcher over the two protocol clients.
func NewMediaDispatcher(sync, taskPoll core.MediaInvoker) *MediaDispatcher {
	return &MediaDispatcher{sync: sync, taskPoll: taskPoll}
}

// GenerateMedia dispatches on the resolved provider's protocol.
func (d *MediaDispatcher) GenerateMedia(
	ctx context.Context,
	cfg model.ProviderConfig,
	req core.MediaRequest,
) (*model.GenerationResult, error) {
	switch cfg.Protocol {
	case model.ProtocolSync:
		return d.sync.GenerateMedia(ctx, cfg, req)
	case model.ProtocolCreatePoll:
		return d.taskPoll.GenerateMedia(ctx, cfg, req)
	default:
		return nil, core.Fatal(fmt.Errorf("provider %s: unknown protocol %q", cfg.Provider, cfg.Protocol))
	}
}

// maxAssetBytes bounds a single downloaded payload. Video clips from
// commercial vendors run tens of megabytes; anything past this is suspect.
const maxAssetBytes = 256 << 20

// ResultPersisterOptions configures a ResultPersister.
type ResultPersisterOptions struct {
	Store      core.AssetStore
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// ResultPersister copies a generation result into durable storage. Provider
// URLs expire and data URLs are too large to keep in scene rows, so the
// durable asset URL replaces the provider payload before anything is saved.
type ResultPersister struct {
	store  core.AssetStore
	http   *http.Client
	logger *slog.Logger
}

// NewResultPersister constructs a ResultPersister.
func NewResultPersister(opts ResultPersisterOptions) *ResultPersister {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Minute}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultPersister{
		store:  opts.Store,
		http:   hc,
		logger: logger.With("component", "result_persister"),
	}
}

// Persist stores the result payload and returns the durable URL. Results that
// carry no URL (text generations) are returned unchanged.
func (p *ResultPersister) Persist(
	ctx context.Context,
	projectID, kind string,
	result *model.GenerationResult,
) (string, error) {
	if result.URL == "" {
		return "", fmt.Errorf("result has no payload to persist")
	}

	var (
		data        []byte
		contentType string
		err         error
	)
	if strings.HasPrefix(result.URL, "data:") {
		data, contentType, err = decodeDataURL(result.URL)
	} else {
		data, contentType, err = p.download(ctx, result.URL)
	}
	if err != nil {
		return "", &core.UnitError{Err: fmt.Errorf("persist %s result: %w", kind, err)}
	}

	sourceURL := result.URL
	if strings.HasPrefix(sourceURL, "data:") {
		// Inline payloads have no meaningful origin to record.
		sourceURL = ""
	}
	url, err := p.store.Save(ctx, core.SaveAssetParams{
		ProjectID:   projectID,
		Kind:        kind,
		ContentType: contentType,
		Data:        data,
		SourceURL:   sourceURL,
	})
	if err != nil {
		return "", fmt.Errorf("save %s asset: %w", kind, err)
	}
	p.logger.DebugContext(ctx, "asset persisted",
		"project_id", projectID, "kind", kind, "bytes", len(data))
	return url, nil
}

func (p *ResultPersister) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download asset: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download asset status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read asset body: %w", err)
	}
	if len(data) > maxAssetBytes {
		return nil, "", fmt.Errorf("asset exceeds %d byte limit", maxAssetBytes)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// decodeDataURL splits a "data:<type>;base64,<payload>" URL into bytes and a
// content type.
func decodeDataURL(url string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URL")
	}
	contentType, encoding, _ := strings.Cut(meta, ";")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if encoding != "base64" {
		return nil, "", fmt.Errorf("unsupported data URL encoding %q", encoding)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URL payload: %w", err)
	}
	return data, contentType, nil
}
