package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

const (
	defaultLLMTimeout    = 120 * time.Second
	maxErrorBodyBytes    = 4 * 1024
	openAIChatCompletion = "/chat/completions"
)

// providerBaseURLs are the public API roots for known LLM providers. A
// ProviderConfig endpoint overrides these for self-hosted backends.
var providerBaseURLs = map[string]string{
	"openai":   "https://api.openai.com/v1",
	"deepseek": "https://api.deepseek.com/v1",
	"qwen":     "https://dashscope.aliyuncs.com/compatible-mode/v1",
}

// LLMClient performs synchronous text generation against OpenAI-compatible
// chat completion endpoints.
type LLMClient struct {
	http   *http.Client
	logger *slog.Logger
}

// LLMClientOptions groups dependencies for LLMClient.
type LLMClientOptions struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewLLMClient constructs an LLMClient.
func NewLLMClient(opts LLMClientOptions) *LLMClient {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultLLMTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMClient{http: hc, logger: logger.With("component", "llm_client")}
}

type chatCompletionRequest struct {
	Model     string             `json:"model"`
	Messages  []core.ChatMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerateText sends one chat completion round-trip and returns the raw text.
func (c *LLMClient) GenerateText(
	ctx context.Context,
	cfg model.ProviderConfig,
	req core.TextRequest,
) (*model.GenerationResult, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("at least one message is required")
	}

	base := cfg.Endpoint
	if base == "" {
		base = providerBaseURLs[cfg.Provider]
	}
	if base == "" {
		return nil, fmt.Errorf("no endpoint known for provider %s", cfg.Provider)
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:     cfg.Model,
		Messages:  req.Messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		strings.TrimSuffix(base, "/")+openAIChatCompletion,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, core.BatchWrap("llm request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, core.ErrInvalidCredential
	}
	if resp.StatusCode != http.StatusOK {
		snippet := readSnippet(resp.Body)
		return nil, core.Batchf("llm status %d: %s", resp.StatusCode, snippet)
	}

	var parsed chatCompletionResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil {
		return nil, core.BatchWrap("decode llm response", decodeErr)
	}
	if parsed.Error != nil {
		return nil, core.Batchf("llm error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, core.Batchf("llm returned no choices")
	}

	return &model.GenerationResult{
		Text:     parsed.Choices[0].Message.Content,
		Provider: cfg.Provider,
	}, nil
}

func readSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
