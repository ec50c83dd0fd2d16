// Package mocks provides mock implementations for testing the filmforge engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository and port interfaces in internal/core. To regenerate after an
// interface change, run:
//
//	go generate ./internal/mocks
package mocks

// Mock for the durable job record store.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/filmforge/filmforge/internal/core JobRepository

// Mock for the permanent scene/unit store.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=scene_repository_mock.go github.com/filmforge/filmforge/internal/core SceneRepository

// Mocks for provider resolution and invocation.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=provider_mocks.go github.com/filmforge/filmforge/internal/core ProviderSettingsRepository,ProviderResolver,TextInvoker,MediaInvoker

// Mocks for billing, cancellation, and asset storage.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=support_mocks.go github.com/filmforge/filmforge/internal/core CreditLedger,CancelStore,AssetStore
