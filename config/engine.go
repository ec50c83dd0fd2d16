package config

import "time"

// EngineConfig tunes the batch orchestrator and provider polling.
type EngineConfig struct {
	// SceneBatchSize is the number of scenes requested per LLM batch call.
	SceneBatchSize int `env:"SCENE_BATCH_SIZE" envDefault:"30"`
	// MediaBatchSize is the number of image/video units per parallel wave.
	MediaBatchSize int `env:"MEDIA_BATCH_SIZE" envDefault:"5"`
	// MediaConcurrency bounds concurrent unit generations within a batch.
	MediaConcurrency int `env:"MEDIA_CONCURRENCY" envDefault:"5"`
	// BatchRetries is the retry budget for batch-retryable failures.
	BatchRetries int `env:"BATCH_RETRIES" envDefault:"2"`
	// InterBatchDelay spaces sequential text batches to respect rate limits.
	InterBatchDelay time.Duration `env:"INTER_BATCH_DELAY" envDefault:"2s"`
	// InterUnitDelay spaces unit launches within a media wave.
	InterUnitDelay time.Duration `env:"INTER_UNIT_DELAY" envDefault:"500ms"`
	// PollInterval is the fixed interval between async task status checks.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"3s"`
	// PollMaxAttempts bounds the poll loop; interval x attempts sets the
	// multi-minute ceiling for one unit.
	PollMaxAttempts int `env:"POLL_MAX_ATTEMPTS" envDefault:"60"`
	// MaxTokens caps LLM completion size per batch call.
	MaxTokens int `env:"MAX_TOKENS" envDefault:"8192"`
	// WorkerLease is how long a reserved job stays claimed before a crashed
	// worker's job is requeued.
	WorkerLease time.Duration `env:"WORKER_LEASE" envDefault:"10m"`
}

// Sanitize clamps engine settings to safe values.
func (c *EngineConfig) Sanitize() {
	if c.SceneBatchSize <= 0 {
		c.SceneBatchSize = 30
	}
	if c.MediaBatchSize <= 0 {
		c.MediaBatchSize = 5
	}
	if c.MediaConcurrency <= 0 {
		c.MediaConcurrency = 5
	}
	if c.MediaConcurrency > c.MediaBatchSize {
		c.MediaConcurrency = c.MediaBatchSize
	}
	if c.BatchRetries < 0 {
		c.BatchRetries = 2
	}
	if c.PollInterval < time.Second {
		c.PollInterval = time.Second
	}
	if c.PollMaxAttempts <= 0 {
		c.PollMaxAttempts = 60
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 8192
	}
	if c.WorkerLease < time.Minute {
		c.WorkerLease = 10 * time.Minute
	}
}

// CreditConfig sets per-unit credit costs by job kind.
type CreditConfig struct {
	SceneUnitCost int `env:"SCENE_UNIT_COST" envDefault:"1"`
	ImageUnitCost int `env:"IMAGE_UNIT_COST" envDefault:"5"`
	VideoUnitCost int `env:"VIDEO_UNIT_COST" envDefault:"20"`
}

// Sanitize clamps credit costs to non-negative values.
func (c *CreditConfig) Sanitize() {
	if c.SceneUnitCost < 0 {
		c.SceneUnitCost = 0
	}
	if c.ImageUnitCost < 0 {
		c.ImageUnitCost = 0
	}
	if c.VideoUnitCost < 0 {
		c.VideoUnitCost = 0
	}
}

// MetricsConfig configures the StatsD metrics sink.
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Address string `env:"ADDRESS" envDefault:""`
	Prefix  string `env:"PREFIX"  envDefault:"filmforge"`
}
