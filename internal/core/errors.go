package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for fatal, non-retryable conditions. The orchestrator aborts
// the whole job when it sees one of these.
var (
	// ErrNoProviderConfigured indicates no provider could be resolved for a
	// generation type at any level (project, user, platform).
	ErrNoProviderConfigured = errors.New("no provider configured")
	// ErrInvalidCredential indicates the provider rejected the credential.
	ErrInvalidCredential = errors.New("invalid or expired provider credential")
	// ErrTargetNotFound indicates the project or target entity does not exist.
	ErrTargetNotFound = errors.New("generation target not found")
)

// FatalError wraps a non-retryable condition that aborts the whole job.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "fatal: " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// Fatal marks err as fatal. The sentinel errors above are treated as fatal
// even without wrapping.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// BatchError wraps a batch-retryable condition: parse failure, under-delivered
// batch, transient network error on the create call. Retried up to the job's
// retry budget before the batch, and thus the job, fails.
type BatchError struct {
	Reason string
	Err    error
}

func (e *BatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("batch %s: %v", e.Reason, e.Err)
	}
	return "batch " + e.Reason
}

func (e *BatchError) Unwrap() error { return e.Err }

// Batchf builds a BatchError with a formatted reason.
func Batchf(format string, args ...any) error {
	return &BatchError{Reason: fmt.Sprintf(format, args...)}
}

// BatchWrap wraps err as batch-retryable.
func BatchWrap(reason string, err error) error {
	return &BatchError{Reason: reason, Err: err}
}

// UnitError wraps a single unit's failure. It is recorded against the unit and
// does not abort the job; siblings continue.
type UnitError struct {
	UnitNumber int
	// ProviderReason carries a provider-declared failure verbatim, if any.
	ProviderReason string
	Err            error
}

func (e *UnitError) Error() string {
	if e.ProviderReason != "" {
		return fmt.Sprintf("unit %d: provider reported: %s", e.UnitNumber, e.ProviderReason)
	}
	return fmt.Sprintf("unit %d: %v", e.UnitNumber, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// IsFatal reports whether err should abort the whole job immediately.
func IsFatal(err error) bool {
	var fe *FatalError
	if errors.As(err, &fe) {
		return true
	}
	return errors.Is(err, ErrNoProviderConfigured) ||
		errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrTargetNotFound)
}

// IsBatchRetryable reports whether err is worth retrying at the batch level.
func IsBatchRetryable(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}
