package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

// Task states reported by create-then-poll providers.
const (
	TaskStateWaiting    = "waiting"
	TaskStateQueuing    = "queuing"
	TaskStateGenerating = "generating"
	TaskStateSuccess    = "success"
	TaskStateFail       = "fail"
)

// ErrPollTimeout indicates the poll loop exhausted its attempt budget without
// the task reaching a terminal state. It is unit-retryable, not fatal.
var ErrPollTimeout = errors.New("polling timed out waiting for task completion")

// TaskClientOptions configures a TaskClient.
type TaskClientOptions struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	// PollInterval is the fixed wait between status checks.
	PollInterval time.Duration
	// PollMaxAttempts bounds the poll loop.
	PollMaxAttempts int
}

// TaskClient drives asynchronous create-then-poll providers: one create call
// returns a task handle, then status is polled on a fixed interval until a
// terminal state or the attempt budget runs out.
type TaskClient struct {
	http            *http.Client
	logger          *slog.Logger
	pollInterval    time.Duration
	pollMaxAttempts int
}

// NewTaskClient constructs a TaskClient.
func NewTaskClient(opts TaskClientOptions) *TaskClient {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	attempts := opts.PollMaxAttempts
	if attempts <= 0 {
		attempts = 60
	}
	return &TaskClient{
		http:            hc,
		logger:          logger.With("component", "task_client"),
		pollInterval:    interval,
		pollMaxAttempts: attempts,
	}
}

type createTaskRequest struct {
	Model string         `json:"model"`
	Input map[string]any `json:"input"`
}

type createTaskResponse struct {
	TaskID string `json:"taskId"`
	// Some vendors nest the handle.
	Data struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
	Message string `json:"message"`
}

type taskStatusResponse struct {
	State string `json:"state"`
	Data  struct {
		State string `json:"state"`
	} `json:"data"`
}

// GenerateMedia creates a generation task and polls it to completion. The
// returned URL is the provider's (still ephemeral) payload location.
func (c *TaskClient) GenerateMedia(
	ctx context.Context,
	cfg model.ProviderConfig,
	req core.MediaRequest,
) (*model.GenerationResult, error) {
	taskID, err := c.createTask(ctx, cfg, req)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "task created", "provider", cfg.Provider, "task_id", taskID)
	return c.pollTask(ctx, cfg, taskID)
}

func (c *TaskClient) createTask(
	ctx context.Context,
	cfg model.ProviderConfig,
	req core.MediaRequest,
) (string, error) {
	input := map[string]any{
		"prompt": req.Prompt,
	}
	if req.AspectRatio != "" {
		input["aspectRatio"] = req.AspectRatio
	}
	if req.DurationSec > 0 {
		input["duration"] = req.DurationSec
	}
	if len(req.ReferenceImageURLs) > 0 {
		input["referenceImages"] = req.ReferenceImageURLs
	}
	for k, v := range req.ModelParams {
		input[k] = v
	}

	body, err := json.Marshal(createTaskRequest{Model: cfg.Model, Input: input})
	if err != nil {
		return "", fmt.Errorf("marshal create task request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL(cfg)+"/tasks", bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("build create task request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", core.BatchWrap("create task", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", core.ErrInvalidCredential
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", core.Batchf("create task status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}

	var parsed createTaskResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil {
		return "", core.BatchWrap("decode create task response", decodeErr)
	}
	taskID := firstNonEmpty(parsed.TaskID, parsed.Data.TaskID)
	if taskID == "" {
		return "", core.Batchf("create task returned no task id: %s", parsed.Message)
	}
	return taskID, nil
}

// pollTask queries task status every pollInterval until success, failure, or
// the attempt budget is exhausted. Polling blocks only this unit's
// generation; sibling units fan out independently.
func (c *TaskClient) pollTask(
	ctx context.Context,
	cfg model.ProviderConfig,
	taskID string,
) (*model.GenerationResult, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= c.pollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		raw, state, err := c.fetchTaskStatus(ctx, cfg, taskID)
		if err != nil {
			// Transient status-check failures don't burn the task; keep
			// polling until the attempt budget runs out.
			c.logger.DebugContext(ctx, "task status check failed",
				"task_id", taskID, "attempt", attempt, "error", err)
			continue
		}

		switch state {
		case TaskStateSuccess:
			return c.resultFromSuccess(ctx, cfg, taskID, raw)
		case TaskStateFail:
			reason := ExtractFailReason(raw)
			if reason == "" {
				reason = "task failed without a reported reason"
			}
			return nil, &core.UnitError{ProviderReason: reason}
		case TaskStateWaiting, TaskStateQueuing, TaskStateGenerating:
			// Not terminal yet.
		default:
			c.logger.DebugContext(ctx, "unknown task state", "task_id", taskID, "state", state)
		}
	}

	return nil, fmt.Errorf("%w: task %s after %d attempts", ErrPollTimeout, taskID, c.pollMaxAttempts)
}

// resultFromSuccess extracts the payload from the success response.
// A success state with no extractable payload is a failure.
func (c *TaskClient) resultFromSuccess(
	ctx context.Context,
	cfg model.ProviderConfig,
	taskID string,
	raw json.RawMessage,
) (*model.GenerationResult, error) {
	url, strategy, err := ExtractResultURL(raw)
	if err != nil {
		return nil, fmt.Errorf("extract task result: %w", err)
	}
	if url == "" {
		return nil, &core.UnitError{
			ProviderReason: fmt.Sprintf("task %s succeeded but returned no usable output", taskID),
		}
	}
	c.logger.DebugContext(ctx, "task result extracted",
		"task_id", taskID, "strategy", strategy)
	return &model.GenerationResult{
		URL:          url,
		Provider:     cfg.Provider,
		RawTaskState: TaskStateSuccess,
	}, nil
}

func (c *TaskClient) fetchTaskStatus(
	ctx context.Context,
	cfg model.ProviderConfig,
	taskID string,
) (json.RawMessage, string, error) {
	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL(cfg)+"/tasks/"+taskID, nil,
	)
	if err != nil {
		return nil, "", fmt.Errorf("build task status request: %w", err)
	}
	if cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("task status request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("task status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if decodeErr := json.NewDecoder(resp.Body).Decode(&raw); decodeErr != nil {
		return nil, "", fmt.Errorf("decode task status: %w", decodeErr)
	}

	var parsed taskStatusResponse
	if unmarshalErr := json.Unmarshal(raw, &parsed); unmarshalErr != nil {
		return nil, "", fmt.Errorf("parse task state: %w", unmarshalErr)
	}
	state := strings.ToLower(firstNonEmpty(parsed.Data.State, parsed.State))
	return raw, state, nil
}

// taskBaseURLs are public API roots for known create-then-poll providers.
var taskBaseURLs = map[string]string{
	"kling":   "https://api.klingai.com/v1",
	"runway":  "https://api.dev.runwayml.com/v1",
	"minimax": "https://api.minimax.io/v1",
}

func (c *TaskClient) baseURL(cfg model.ProviderConfig) string {
	if cfg.Endpoint != "" {
		return strings.TrimSuffix(cfg.Endpoint, "/")
	}
	return taskBaseURLs[cfg.Provider]
}
