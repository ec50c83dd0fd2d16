package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/filmforge/filmforge/config"
	httpx "github.com/filmforge/filmforge/internal/http"
)

// shutdownGrace is how long the HTTP server gets to drain on shutdown.
const shutdownGrace = 10 * time.Second

// RunOptions groups dependencies for RunServices.
type RunOptions struct {
	Cfg    config.AppConfig
	Engine *Engine
	Logger *slog.Logger
}

// RunServices starts the enabled service modes and blocks until a termination
// signal or the first service failure. Workers stop between batches; a job
// interrupted mid-batch is resumed by the next worker from persisted units.
func RunServices(ctx context.Context, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	modes, err := opts.Cfg.GetEnabledServices()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	for mode := range modes {
		switch mode {
		case config.ServiceModeAPI:
			g.Go(func() error {
				return runAPIServer(ctx, opts, logger)
			})
		case config.ServiceModeSceneWorker, config.ServiceModeImageWorker, config.ServiceModeVideoWorker:
			runner, rerr := opts.Engine.BuildRunner(mode, logger)
			if rerr != nil {
				return rerr
			}
			g.Go(func() error {
				return runner.Run(ctx)
			})
		}
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.InfoContext(context.Background(), "all services stopped")
	return nil
}

func runAPIServer(ctx context.Context, opts RunOptions, logger *slog.Logger) error {
	handler := httpx.NewRouter(httpx.RouterServices{
		Jobs:   opts.Engine.Jobs,
		Assets: opts.Engine.AssetStore,
		Logger: logger,
	})
	srv := &http.Server{
		Addr:              opts.Cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "http api listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
