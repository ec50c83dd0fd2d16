// Package metrics defines the standardised metric shapes the engine emits.
package metrics

import (
	"time"

	obserrors "github.com/filmforge/filmforge/internal/observability/errors"
	"github.com/filmforge/filmforge/internal/observability/statsd"
)

// Result values for lifecycle tagging.
const (
	ResultSuccess   = "success"
	ResultPartial   = "partial"
	ResultCancelled = "cancelled"
	ResultError     = "error"
)

// JobLifecycle captures one job reaching a terminal status.
type JobLifecycle struct {
	Kind     string
	Status   string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitJobLifecycle emits the finished-job counter and duration. Failed jobs
// additionally carry an error class tag.
func EmitJobLifecycle(sink statsd.Sink, in JobLifecycle) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"kind":   in.Kind,
		"status": in.Status,
		"result": in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("jobs.finished", 1, tags)

	if in.Duration > 0 {
		sink.Timing("jobs.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags copies a tag map so a sink cannot observe later mutations.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
