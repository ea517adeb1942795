package plugin

import "errors"

// Sentinel errors for the plugin package.
var (
	// ErrNotFound is returned when no provider is registered under a name.
	ErrNotFound = errors.New("provider not found")

	// ErrUnknownType is returned for a capability type outside search, download, parser.
	ErrUnknownType = errors.New("unknown capability type")

	// ErrNoProvider is returned when a code unit exposes no provider for the requested type.
	ErrNoProvider = errors.New("no provider implementation")

	// ErrAmbiguousProvider is returned when more than one implementation matches.
	ErrAmbiguousProvider = errors.New("ambiguous provider implementation")

	// ErrTypeMismatch is returned when a provider does not satisfy the requested type.
	ErrTypeMismatch = errors.New("provider does not implement capability")

	// ErrLoadFailed wraps any failure of a hot load.
	ErrLoadFailed = errors.New("provider load failed")
)
