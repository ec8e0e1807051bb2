package model

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// statuses with errors.Is; anything unmatched is treated as a storage
// failure and surfaced as a generic 500.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("access denied")
	ErrNotFound       = errors.New("not found")
)
