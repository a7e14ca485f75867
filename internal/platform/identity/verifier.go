package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified claim set extracted from a valid ID token.
// SubjectID is always non-empty; Email and DisplayName are present only
// when the provider included the corresponding claims.
type Claims struct {
	SubjectID   string
	Email       string
	DisplayName string
}

// TokenVerifier validates bearer ID tokens and extracts their claims.
type TokenVerifier interface {
	// Verify validates the raw token string. Returns ErrExpiredToken for
	// expired tokens and ErrInvalidToken (wrapped with a reason) for every
	// other failure; it never distinguishes internal causes to callers.
	Verify(ctx context.Context, raw string) (*Claims, error)
}

// idTokenClaims is the claim structure of provider-issued ID tokens.
type idTokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier validates RS256 ID tokens against the provider's published
// signing certificates. The expected issuer and audience are derived from
// the provider project ID at construction time.
type Verifier struct {
	projectID string
	issuer    string
	keys      KeySource
	timeFunc  func() time.Time // Injectable for testing
	clockSkew time.Duration
}

// Ensure Verifier implements TokenVerifier interface
var _ TokenVerifier = (*Verifier)(nil)

// NewVerifier creates a Verifier for tokens issued to the given provider
// project, using keys to resolve signing certificates.
func NewVerifier(projectID string, keys KeySource) (*Verifier, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project ID cannot be empty")
	}
	if keys == nil {
		return nil, fmt.Errorf("key source cannot be nil")
	}

	return &Verifier{
		projectID: projectID,
		issuer:    "https://securetoken.google.com/" + projectID,
		keys:      keys,
		timeFunc:  time.Now,
		clockSkew: 2 * time.Minute, // tolerate minor clock drift between provider and server
	}, nil
}

// Verify implements TokenVerifier.Verify.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	keys, err := v.keys.Keys(ctx)
	if err != nil {
		// A key-fetch failure still surfaces as an authentication failure;
		// the underlying cause is wrapped for logs, never for clients.
		return nil, fmt.Errorf("%w: could not resolve signing keys: %v", ErrInvalidToken, err)
	}

	now := v.timeFunc()

	token, err := jwt.ParseWithClaims(
		raw,
		&idTokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			kid, _ := token.Header["kid"].(string)
			key, ok := keys[kid]
			if !ok {
				return nil, fmt.Errorf("unknown signing key ID %q", kid)
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*idTokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token missing subject claim", ErrInvalidToken)
	}

	return &Claims{
		SubjectID:   claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}
