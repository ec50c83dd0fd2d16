package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/filmforge/filmforge/config"
	"github.com/filmforge/filmforge/internal/adapters/jobrunner"
	redisadapter "github.com/filmforge/filmforge/internal/adapters/redis"
	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/data"
	"github.com/filmforge/filmforge/internal/domain/model"
	"github.com/filmforge/filmforge/internal/observability/statsd"
	"github.com/filmforge/filmforge/internal/provider"
	"github.com/filmforge/filmforge/internal/service"
)

// Engine bundles the wired services a process mode picks from.
type Engine struct {
	Jobs         *service.JobService
	Orchestrator *service.BatchOrchestrator
	JobRepo      core.JobRepository
	AssetStore   core.AssetStore
	Sink         statsd.Sink
}

// EngineOptions groups dependencies for BuildEngine.
type EngineOptions struct {
	Cfg    config.AppConfig
	DB     *sql.DB
	Redis  goredis.UniversalClient
	Logger *slog.Logger
}

// BuildEngine wires repositories, provider clients, and services into the
// generation engine.
func BuildEngine(opts EngineOptions) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sink, err := statsd.NewClient(statsd.Config{
		Enabled:    opts.Cfg.Metrics.Enabled,
		Address:    opts.Cfg.Metrics.Address,
		Prefix:     opts.Cfg.Metrics.Prefix,
		Logger:     logger,
		GlobalTags: map[string]string{"service": "filmforge"},
	})
	if err != nil {
		return nil, fmt.Errorf("init metrics sink: %w", err)
	}

	jobRepo := data.NewJobRepo(opts.DB, data.RepoConfig{
		Lease:  opts.Cfg.Engine.WorkerLease,
		Logger: logger,
	})
	sceneRepo := data.NewSceneRepo(opts.DB)
	settingsRepo := data.NewProviderSettingsRepo(opts.DB)
	creditRepo := data.NewCreditRepo(opts.DB)
	assetRepo := data.NewAssetRepo(opts.DB)

	cancels := redisadapter.NewCancelStore(opts.Redis)

	resolver := provider.NewResolver(provider.ResolverOptions{
		Settings: settingsRepo,
		Defaults: opts.Cfg.Providers,
		Logger:   logger,
	})
	llm := provider.NewLLMClient(provider.LLMClientOptions{Logger: logger})
	taskClient := provider.NewTaskClient(provider.TaskClientOptions{
		Logger:          logger,
		PollInterval:    opts.Cfg.Engine.PollInterval,
		PollMaxAttempts: opts.Cfg.Engine.PollMaxAttempts,
	})
	syncImage := provider.NewSyncImageClient(provider.SyncImageClientOptions{Logger: logger})
	media := provider.NewMediaDispatcher(syncImage, taskClient)
	persister := provider.NewResultPersister(provider.ResultPersisterOptions{
		Store:  assetRepo,
		Logger: logger,
	})

	credits := service.NewCreditService(service.CreditServiceOptions{
		Ledger: creditRepo,
		Costs:  opts.Cfg.Credits,
		Logger: logger,
	})
	orchestrator := service.NewBatchOrchestrator(service.OrchestratorOptions{
		Jobs:      jobRepo,
		Scenes:    sceneRepo,
		Resolver:  resolver,
		Text:      llm,
		Media:     media,
		Persister: persister,
		Credits:   credits,
		Cancels:   cancels,
		Sink:      sink,
		Engine:    opts.Cfg.Engine,
		Logger:    logger,
	})
	jobs := service.NewJobService(service.JobServiceOptions{
		Jobs:    jobRepo,
		Cancels: cancels,
		Logger:  logger,
	})

	return &Engine{
		Jobs:         jobs,
		Orchestrator: orchestrator,
		JobRepo:      jobRepo,
		AssetStore:   assetRepo,
		Sink:         sink,
	}, nil
}

// workerKinds maps service modes to the job kind their runner processes.
var workerKinds = map[config.ServiceMode]model.JobKind{
	config.ServiceModeSceneWorker: model.JobKindSceneBatch,
	config.ServiceModeImageWorker: model.JobKindImageBatch,
	config.ServiceModeVideoWorker: model.JobKindVideo,
}

// BuildRunner constructs the job runner for a worker service mode.
func (e *Engine) BuildRunner(mode config.ServiceMode, logger *slog.Logger) (*jobrunner.Runner, error) {
	kind, ok := workerKinds[mode]
	if !ok {
		return nil, fmt.Errorf("service mode %q is not a worker", mode)
	}
	return jobrunner.NewRunner(jobrunner.RunnerOptions{
		Jobs:         e.JobRepo,
		Orchestrator: e.Orchestrator,
		Kind:         kind,
		Logger:       logger,
	})
}
