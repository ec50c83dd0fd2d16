package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

func chatReq() core.TextRequest {
	return core.TextRequest{
		Messages: []core.ChatMessage{
			{Role: "system", Content: "You write scenes."},
			{Role: "user", Content: "Write scene 1."},
		},
		MaxTokens: 4000,
	}
}

func TestLLMClient_GenerateText_Success(t *testing.T) {
	var gotAuth string
	var gotBody chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "[{\"scene_number\":1}]"}}]}`))
	}))
	defer srv.Close()

	c := NewLLMClient(LLMClientOptions{HTTPClient: srv.Client()})
	cfg := model.ProviderConfig{Provider: "openai", Model: "gpt-4o", APIKey: "sk-test", Endpoint: srv.URL}

	res, err := c.GenerateText(context.Background(), cfg, chatReq())
	require.NoError(t, err)
	assert.Equal(t, `[{"scene_number":1}]`, res.Text)
	assert.Equal(t, "openai", res.Provider)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o", gotBody.Model)
	assert.Len(t, gotBody.Messages, 2)
	assert.Equal(t, 4000, gotBody.MaxTokens)
}

func TestLLMClient_GenerateText_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewLLMClient(LLMClientOptions{HTTPClient: srv.Client()})
	cfg := model.ProviderConfig{Provider: "openai", Endpoint: srv.URL}

	_, err := c.GenerateText(context.Background(), cfg, chatReq())
	assert.ErrorIs(t, err, core.ErrInvalidCredential)
	assert.True(t, core.IsFatal(err))
}

func TestLLMClient_GenerateText_ServerErrorIsBatchRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewLLMClient(LLMClientOptions{HTTPClient: srv.Client()})
	cfg := model.ProviderConfig{Provider: "openai", Endpoint: srv.URL}

	_, err := c.GenerateText(context.Background(), cfg, chatReq())
	require.Error(t, err)
	assert.True(t, core.IsBatchRetryable(err))
	assert.Contains(t, err.Error(), "503")
}

func TestLLMClient_GenerateText_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"message": "model not found", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewLLMClient(LLMClientOptions{HTTPClient: srv.Client()})
	cfg := model.ProviderConfig{Provider: "openai", Endpoint: srv.URL}

	_, err := c.GenerateText(context.Background(), cfg, chatReq())
	require.Error(t, err)
	assert.True(t, core.IsBatchRetryable(err))
	assert.Contains(t, err.Error(), "model not found")
}

func TestLLMClient_GenerateText_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewLLMClient(LLMClientOptions{HTTPClient: srv.Client()})
	cfg := model.ProviderConfig{Provider: "openai", Endpoint: srv.URL}

	_, err := c.GenerateText(context.Background(), cfg, chatReq())
	require.Error(t, err)
	assert.True(t, core.IsBatchRetryable(err))
}

func TestLLMClient_GenerateText_NoMessages(t *testing.T) {
	c := NewLLMClient(LLMClientOptions{})
	_, err := c.GenerateText(context.Background(), model.ProviderConfig{Provider: "openai"}, core.TextRequest{})
	require.Error(t, err)
}

func TestLLMClient_GenerateText_UnknownProviderNoEndpoint(t *testing.T) {
	c := NewLLMClient(LLMClientOptions{})
	_, err := c.GenerateText(context.Background(), model.ProviderConfig{Provider: "mystery"}, chatReq())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no endpoint known")
}
