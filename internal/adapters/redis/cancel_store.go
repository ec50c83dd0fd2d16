// Package redis provides Redis-based adapters for the filmforge engine.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultCancelTTL bounds how long a cancel flag outlives its job. Any job
// runs well under this; the TTL only keeps flags for vanished jobs from
// accumulating.
const defaultCancelTTL = 24 * time.Hour

// CancelStore tracks cooperative cancellation flags in Redis. The
// orchestrator checks the flag between batches; setting it never interrupts
// an in-flight provider call.
type CancelStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewCancelStore creates a Redis-backed cancel store.
func NewCancelStore(client redis.UniversalClient) *CancelStore {
	return &CancelStore{
		client: client,
		prefix: "job:cancel:",
		ttl:    defaultCancelTTL,
	}
}

// NewCancelStoreWithPrefix creates a cancel store with a custom key prefix.
func NewCancelStoreWithPrefix(client redis.UniversalClient, prefix string) *CancelStore {
	return &CancelStore{
		client: client,
		prefix: prefix,
		ttl:    defaultCancelTTL,
	}
}

// RequestCancel sets the cancellation flag for a job.
func (s *CancelStore) RequestCancel(ctx context.Context, jobID string) error {
	if jobID == "" {
		return errors.New("job ID cannot be empty")
	}
	if err := s.client.Set(ctx, s.prefix+jobID, "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cancel flag: %w", err)
	}
	return nil
}

// IsCancelRequested reports whether cancellation was requested for a job.
func (s *CancelStore) IsCancelRequested(ctx context.Context, jobID string) (bool, error) {
	if jobID == "" {
		return false, nil
	}
	_, err := s.client.Get(ctx, s.prefix+jobID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get cancel flag: %w", err)
	}
	return true, nil
}

// Clear removes the cancellation flag once a job reaches a terminal status.
func (s *CancelStore) Clear(ctx context.Context, jobID string) error {
	if jobID == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+jobID).Err(); err != nil {
		return fmt.Errorf("redis delete cancel flag: %w", err)
	}
	return nil
}
