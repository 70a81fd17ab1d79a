package history

import "errors"

// History-specific errors
var (
	// ErrNameCollision is returned when two distinct table paths normalize to
	// the same display name, which would corrupt the selection index
	ErrNameCollision = errors.New("display name collision")
	// ErrVersionCollision is returned when a merge encounters a duplicate
	// (table path, version) pair, which indicates a provider error
	ErrVersionCollision = errors.New("duplicate table version")
	// ErrProviderUnavailable is returned when the history provider fails
	ErrProviderUnavailable = errors.New("history provider unavailable")
)
