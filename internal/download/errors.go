// Package download dispatches download requests to download providers and
// tracks the resulting tasks.
package download

import "errors"

// Sentinel errors for the download package.
var (
	// ErrNotFound is returned when a download task is not found in the database.
	ErrNotFound = errors.New("download task not found")

	// ErrInvalidTransition is returned for a status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoSuitableProvider is returned when no enabled provider handles the locator.
	ErrNoSuitableProvider = errors.New("no suitable download provider")

	// ErrProviderDisabled is returned when the requested provider is disabled.
	ErrProviderDisabled = errors.New("download provider disabled")

	// ErrDownloadRejected is returned when the provider refuses the task.
	ErrDownloadRejected = errors.New("download rejected by provider")

	// ErrProviderPanic indicates a download provider panicked during a call.
	ErrProviderPanic = errors.New("download provider panicked")

	// ErrInvalidRequest is returned for a request without a URL.
	ErrInvalidRequest = errors.New("invalid download request")
)
