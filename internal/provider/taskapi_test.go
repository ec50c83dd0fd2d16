package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

func fastTaskClient(srv *httptest.Server, maxAttempts int) (*TaskClient, model.ProviderConfig) {
	c := NewTaskClient(TaskClientOptions{
		HTTPClient:      srv.Client(),
		PollInterval:    time.Millisecond,
		PollMaxAttempts: maxAttempts,
	})
	cfg := model.ProviderConfig{
		Provider: "kling",
		Model:    "kling-v1",
		APIKey:   "k-key",
		Endpoint: srv.URL,
		Protocol: model.ProtocolCreatePoll,
	}
	return c, cfg
}

func TestTaskClient_GenerateMedia_PollsToSuccess(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/tasks":
			var req createTaskRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "kling-v1", req.Model)
			assert.Equal(t, "a ship lands", req.Input["prompt"])
			_, _ = w.Write([]byte(`{"taskId": "task-42"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/tasks/task-42":
			if polls.Add(1) < 3 {
				_, _ = w.Write([]byte(`{"data": {"state": "generating"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"data": {"state": "success", "resultJson": {"videoUrl": "https://cdn.example/out.mp4"}}}`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c, cfg := fastTaskClient(srv, 30)
	res, err := c.GenerateMedia(context.Background(), cfg, core.MediaRequest{Prompt: "a ship lands"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/out.mp4", res.URL)
	assert.Equal(t, TaskStateSuccess, res.RawTaskState)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestTaskClient_GenerateMedia_ProviderFailReasonVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"data": {"taskId": "task-7"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": {"state": "fail", "failReason": "prompt rejected by safety filter"}}`))
	}))
	defer srv.Close()

	c, cfg := fastTaskClient(srv, 5)
	_, err := c.GenerateMedia(context.Background(), cfg, core.MediaRequest{Prompt: "p"})
	require.Error(t, err)

	var ue *core.UnitError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "prompt rejected by safety filter", ue.ProviderReason)
	assert.False(t, core.IsFatal(err))
}

func TestTaskClient_GenerateMedia_FailWithoutReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"taskId": "t1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"state": "fail"}`))
	}))
	defer srv.Close()

	c, cfg := fastTaskClient(srv, 5)
	_, err := c.GenerateMedia(context.Background(), cfg, core.MediaRequest{Prompt: "p"})

	var ue *core.UnitError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "task failed without a reported reason", ue.ProviderReason)
}

func TestTaskClient_GenerateMedia_PollTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"taskId": "slow"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": {"state": "queuing"}}`))
	}))
	defer srv.Close()

	c, cfg := fastTaskClient(srv, 4)
	_, err := c.GenerateMedia(context.Background(), cfg, core.MediaRequest{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.False(t, core.IsFatal(err))
	assert.False(t, core.IsBatchRetryable(err))
}

func TestTaskClient_GenerateMedia_SuccessWithoutPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"taskId": "t9"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": {"state": "success"}}`))
	}))
	defer srv.Close()

	c, cfg := fastTaskClient(srv, 5)
	_, err := c.GenerateMedia(context.Background(), cfg, core.MediaRequest{Prompt: "p"})

	var ue *core.UnitError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.ProviderReason, "no usable output")
}

func TestTaskClient_GenerateMedia_TransientStatusErrorsTolerated(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"taskId": "flaky"}`))
			return
		}
		if polls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"state": "success", "url": "https://cdn.example/r.png"}`))
	}))
	defer srv.Close()

	c, cfg := fastTaskClient(srv, 10)
	res, err := c.GenerateMedia(context.Background(), cfg, core.MediaRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/r.png", res.URL)
}

func TestTaskClient_CreateTask_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c, cfg := fastTaskClient(srv, 5)
	_, err := c.GenerateMedia(context.Background(), cfg, core.MediaRequest{Prompt: "p"})
	assert.ErrorIs(t, err, core.ErrInvalidCredential)
}

func TestTaskClient_CreateTask_NoTaskID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer srv.Close()

	c, cfg := fastTaskClient(srv, 5)
	_, err := c.GenerateMedia(context.Background(), cfg, core.MediaRequest{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, core.IsBatchRetryable(err))
	assert.Contains(t, err.Error(), "rate limited")
}

func TestTaskClient_GenerateMedia_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"taskId": "t1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"state": "waiting"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, cfg := fastTaskClient(srv, 100)
	_, err := c.GenerateMedia(ctx, cfg, core.MediaRequest{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), fmt.Sprintf("got %v", err))
}
