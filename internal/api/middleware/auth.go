package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/identity"
	"github.com/taskhub/taskhub-api/internal/redact"
)

// UserResolver resolves a verified subject ID to the local user row,
// creating it on first sight.
type UserResolver interface {
	Resolve(ctx context.Context, subjectID, emailHint string, displayNameHint *string) (*domain.User, error)
}

// AuthMiddleware authenticates requests against the identity provider's
// ID tokens and attaches the resolved local user to the request context.
type AuthMiddleware struct {
	verifier identity.TokenVerifier
	users    UserResolver
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(verifier identity.TokenVerifier, users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		users:    users,
	}
}

// Authenticate validates bearer tokens from the Authorization header,
// resolves the local user (provisioning one on first sight), and adds it
// to the request context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		// Check Bearer prefix
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		token := parts[1]

		claims, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, identity.ErrInvalidToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to verify token", "error", redact.Error(err))
				shared.RespondWithError(
					w,
					r,
					http.StatusInternalServerError,
					"Authentication error",
				)
			}
			return
		}

		var displayName *string
		if claims.DisplayName != "" {
			displayName = &claims.DisplayName
		}

		user, err := m.users.Resolve(r.Context(), claims.SubjectID, claims.Email, displayName)
		if err != nil {
			slog.Error("failed to resolve user",
				"subject_id", claims.SubjectID,
				"error", redact.Error(err))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		// Add the resolved user to context
		ctx := context.WithValue(r.Context(), shared.UserContextKey, user)

		// Continue with the authenticated request
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser extracts the authenticated user from the request context.
// Returns the user and a boolean indicating if it was found.
func GetUser(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(shared.UserContextKey).(*domain.User)
	return user, ok && user != nil
}
