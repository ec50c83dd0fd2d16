package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/service"
)

// RouterServices holds the services the HTTP router exposes.
type RouterServices struct {
	Jobs   *service.JobService
	Assets core.AssetStore
	Logger *slog.Logger
}

// NewRouter creates the JSON API router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	jobHandlers := &JobHandlers{Svc: services.Jobs}
	mux.HandleFunc("POST /api/jobs", jobHandlers.CreateJob)
	mux.HandleFunc("GET /api/jobs/{id}", jobHandlers.GetJob)
	mux.HandleFunc("POST /api/jobs/{id}/cancel", jobHandlers.CancelJob)
	mux.HandleFunc("GET /api/jobs/stats/{kind}", jobHandlers.GetStats)

	assetHandlers := &AssetHandlers{Store: services.Assets}
	mux.HandleFunc("GET /assets/{id}", assetHandlers.GetAsset)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Logging(logger)(mux)
}

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		return
	}
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
