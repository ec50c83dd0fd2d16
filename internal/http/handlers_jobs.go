package httpx

import (
	"errors"
	"net/http"

	"github.com/filmforge/filmforge/internal/data"
	"github.com/filmforge/filmforge/internal/domain/model"
	"github.com/filmforge/filmforge/internal/service"
)

// JobHandlers provides HTTP handlers for job operations.
type JobHandlers struct {
	Svc *service.JobService
}

// CreateJob enqueues a new generation job.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.Enqueue(r.Context(), &req)
	if err != nil {
		code := http.StatusInternalServerError
		errCode := "create_failed"
		if errors.Is(err, service.ErrInvalidJobRequest) {
			code = http.StatusBadRequest
			errCode = "invalid_request"
		}
		WriteError(w, ErrorParams{Code: code, ErrCode: errCode, Err: err})
		return
	}

	WriteJSON(w, http.StatusAccepted, job.StatusResponse())
}

// GetJob returns the status projection for one job. Callers poll this until
// the status is terminal.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{
			Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required"),
		})
		return
	}

	status, err := h.Svc.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrJobNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "status_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, status)
}

// CancelJob requests cooperative cancellation of a job.
func (h *JobHandlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{
			Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required"),
		})
		return
	}

	err := h.Svc.Cancel(r.Context(), id)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, map[string]string{"status": "cancellation_requested"})
	case errors.Is(err, data.ErrJobNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
	case errors.Is(err, service.ErrJobTerminal):
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "job_terminal", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "cancel_failed", Err: err})
	}
}

// GetStats returns queue statistics for one job kind.
func (h *JobHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	var kind model.JobKind
	if err := kind.UnmarshalText([]byte(r.PathValue("kind"))); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_kind", Err: err})
		return
	}

	stats, err := h.Svc.Stats(r.Context(), kind)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "stats_failed", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
