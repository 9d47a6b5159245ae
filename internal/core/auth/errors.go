package auth

import "errors"

// Sentinel errors for API key handling.
var (
	// ErrInvalidKeyFormat indicates an API key that does not match
	// fg-v1-<secret_id>-<random_data>.
	ErrInvalidKeyFormat = errors.New("invalid API key format")

	// ErrUnknownKey indicates the key's secret_id has no configured secret.
	ErrUnknownKey = errors.New("unknown API key")
)
