package ports

import "errors"

// Error kinds surfaced to the caller. All are returned wrapped with %w so
// callers can classify with errors.Is and decide fatal-vs-recoverable
// handling themselves; none are retried automatically.
var (
	// ErrIndexUnavailable means the on-disk passage index is missing or
	// corrupt. Fatal for the chat page: retrieval cannot be constructed, and
	// there is no silent empty-result fallback.
	ErrIndexUnavailable = errors.New("passage index unavailable")

	// ErrGeneration covers transport, authentication, and provider-side
	// failures of the generation endpoint. Per-turn: the turn fails, the
	// session survives.
	ErrGeneration = errors.New("generation failed")

	// ErrMissingCredential means a required provider credential was not set
	// in the environment. Fatal at startup for the page that needs it.
	ErrMissingCredential = errors.New("missing credential")
)
