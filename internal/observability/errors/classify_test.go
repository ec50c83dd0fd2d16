package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/filmforge/filmforge/internal/core"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"invalid credential", core.ErrInvalidCredential, "invalid_credential"},
		{
			"wrapped sentinel wins over fatal wrapper",
			core.Fatal(fmt.Errorf("resolve: %w", core.ErrNoProviderConfigured)),
			"no_provider_configured",
		},
		{"target not found", fmt.Errorf("scene 3: %w", core.ErrTargetNotFound), "target_not_found"},
		{"context cancelled", context.Canceled, "cancelled"},
		{"deadline", fmt.Errorf("poll: %w", context.DeadlineExceeded), "deadline_exceeded"},
		{"unit failure", &core.UnitError{UnitNumber: 2, ProviderReason: "rejected"}, "unit_failure"},
		{"batch exhausted", core.Batchf("under-delivered"), "batch_exhausted"},
		{"fatal wrapper", core.Fatal(goerrors.New("unknown kind")), "fatal"},
		{"plain error falls back to type", goerrors.New("boom"), "errors_errorstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
