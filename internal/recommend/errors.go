// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package recommend

import (
	"errors"
	"fmt"
)

// Error kinds returned by the engine. Callers classify failures with
// errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrNotFound indicates an identifier that does not resolve to a catalog
	// song. Store implementations must return an error matching this for
	// missing rows so the engine can tell "absent" from "broken".
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates an underlying store query failed. The
	// engine propagates these rather than silently substituting fallback
	// output; empty history is not a store failure.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidInput indicates a request rejected before any store query:
	// non-positive limits or malformed queue entries.
	ErrInvalidInput = errors.New("invalid input")
)

// storeFailure wraps a store error with the operation that issued it.
// ErrNotFound passes through untouched; everything else becomes an
// ErrStoreUnavailable wrap so callers never see raw driver errors.
func storeFailure(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// invalidInput builds an ErrInvalidInput wrap with a reason.
func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
