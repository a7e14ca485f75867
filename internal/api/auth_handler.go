package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/taskhub/taskhub-api/internal/api/middleware"
	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/platform/identity"
	"github.com/taskhub/taskhub-api/internal/service/auth"
)

// AuthGateway is the subset of the auth gateway the handler depends on.
type AuthGateway interface {
	SignUp(ctx context.Context, email, password string, displayName *string) (*auth.Result, error)
	LogIn(ctx context.Context, email, password string) (*auth.Result, error)
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	gateway AuthGateway
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(gateway AuthGateway) *AuthHandler {
	return &AuthHandler{
		gateway: gateway,
	}
}

// Signup handles the POST /auth/signup endpoint.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest

	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := ValidateRequest(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.gateway.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, newAuthResponse(result))
}

// Login handles the POST /auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := ValidateRequest(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.gateway.LogIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, newAuthResponse(result))
}

// Me handles the GET /auth/me endpoint. It requires the auth middleware,
// which resolves the token to a local user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// respondAuthError maps gateway failures to responses. A provider
// rejection passes the provider's detail payload through so clients see
// the original reason (e.g. EMAIL_EXISTS, INVALID_PASSWORD).
func (h *AuthHandler) respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	opts := []shared.ResponseOption{shared.WithElevatedLogLevel()}

	var provErr *identity.ProviderError
	if errors.As(err, &provErr) && len(provErr.Detail) > 0 {
		opts = append(opts, shared.WithDetail(provErr.Detail))
	}

	RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

func newAuthResponse(result *auth.Result) AuthResponse {
	return AuthResponse{
		UserID:       result.User.ID,
		Email:        result.User.Email,
		IDToken:      result.Session.IDToken,
		RefreshToken: result.Session.RefreshToken,
		ExpiresIn:    result.Session.ExpiresIn,
	}
}
