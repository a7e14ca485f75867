package identity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Common identity errors
var (
	// ErrInvalidToken indicates the ID token is malformed, has a bad
	// signature, the wrong issuer/audience, or is missing required claims.
	ErrInvalidToken = errors.New("invalid identity token")

	// ErrExpiredToken indicates the ID token has expired.
	ErrExpiredToken = errors.New("identity token has expired")

	// ErrProviderUnavailable indicates the identity provider could not be
	// reached or returned a response of unexpected shape.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// ProviderError is a non-success response from the identity provider,
// e.g. a rejected signup or wrong password. Detail carries the provider's
// JSON payload verbatim so the API surface can pass it through to clients,
// as the provider's error bodies are already client-safe.
type ProviderError struct {
	StatusCode int
	Detail     json.RawMessage
}

// Error implements the error interface for ProviderError.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider returned status %d", e.StatusCode)
}
