package manifold

import "errors"

// Sentinel errors for the Manifold client. Request construction fails fast
// with one of the first three before any network activity; ErrTransport only
// wraps failures of the HTTP round trip itself. Non-2xx API responses are
// returned to the caller as-is and never converted to errors.
var (
	ErrInvalidEnumValue  = errors.New("invalid enum value")
	ErrValidation        = errors.New("invalid request parameters")
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrTransport         = errors.New("transport failure")
)
