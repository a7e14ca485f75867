package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidCredentials indicates the identity provider rejected the
	// signup or login (wrong password, unknown account, email already
	// registered, weak password). The wrapped *identity.ProviderError
	// carries the provider's detail payload.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExternalService indicates the identity provider could not be
	// reached or returned an unusable response. The API layer maps this
	// to HTTP 502.
	ErrExternalService = errors.New("identity provider unavailable")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")
)
