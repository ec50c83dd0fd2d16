// Package errors derives stable class names from the engine's error taxonomy
// for use as metric and log tags.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	"github.com/filmforge/filmforge/internal/core"
)

// Classify maps err to a low-cardinality class name. Taxonomy errors get fixed
// names; anything else falls back to the innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case goerrors.Is(err, core.ErrInvalidCredential):
		return "invalid_credential"
	case goerrors.Is(err, core.ErrNoProviderConfigured):
		return "no_provider_configured"
	case goerrors.Is(err, core.ErrTargetNotFound):
		return "target_not_found"
	case goerrors.Is(err, context.Canceled):
		return "cancelled"
	case goerrors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	}

	var unitErr *core.UnitError
	if goerrors.As(err, &unitErr) {
		return "unit_failure"
	}
	var batchErr *core.BatchError
	if goerrors.As(err, &batchErr) {
		return "batch_exhausted"
	}
	var fatalErr *core.FatalError
	if goerrors.As(err, &fatalErr) {
		return "fatal"
	}

	return typeName(err)
}

// typeName unwraps to the innermost error and snake-cases its concrete type.
func typeName(err error) string {
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
