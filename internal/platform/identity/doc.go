// Package identity integrates with the external identity provider.
//
// It contains two pieces: a verifier for bearer ID tokens presented by
// clients, and a REST client for the provider's account endpoints
// (signup, password sign-in, profile update). Credential storage and
// password verification live entirely at the provider; this package never
// sees or stores password hashes.
package identity
