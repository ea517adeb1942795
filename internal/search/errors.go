// Package search fans a keyword out to every enabled search provider and
// merges what comes back.
package search

import "errors"

var (
	// ErrEmptyKeyword indicates the keyword is blank after normalization.
	ErrEmptyKeyword = errors.New("keyword is required")

	// ErrNoSearchers is returned when no search provider is enabled or named.
	ErrNoSearchers = errors.New("no search providers enabled")

	// ErrProviderPanic indicates a provider panicked while searching.
	ErrProviderPanic = errors.New("search provider panicked")
)
