// Package auth orchestrates authentication against the external identity
// provider. All credential verification is delegated to the provider; the
// gateway's job is relaying credentials, mirroring provider accounts into
// the local user directory, and normalizing provider failures.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/identity"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
)

// ProviderClient is the subset of the identity provider client the
// gateway depends on.
type ProviderClient interface {
	SignUp(ctx context.Context, email, password string) (*identity.Session, error)
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
	UpdateDisplayName(ctx context.Context, idToken, displayName string) error
}

// UserResolver resolves provider subjects to local user rows, creating
// them on first sight.
type UserResolver interface {
	Resolve(ctx context.Context, subjectID, emailHint string, displayNameHint *string) (*domain.User, error)
}

// Result is a successful signup or login: the provider's session tokens
// plus the local user they resolve to.
type Result struct {
	User    *domain.User
	Session *identity.Session
}

// ProviderMetrics records outbound identity provider call outcomes.
type ProviderMetrics interface {
	RecordProviderCall(outcome string)
}

// Gateway implements signup and login against the identity provider.
type Gateway struct {
	provider ProviderClient
	users    UserResolver
	logger   *slog.Logger
	metrics  ProviderMetrics
}

// NewGateway creates a Gateway.
// It returns an error if any required dependency is nil.
func NewGateway(provider ProviderClient, users UserResolver, log *slog.Logger) (*Gateway, error) {
	if provider == nil {
		return nil, domain.NewValidationError("provider", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Gateway{
		provider: provider,
		users:    users,
		logger:   log.With(slog.String("component", "auth_gateway")),
	}, nil
}

// SetMetrics attaches a metrics recorder for provider call outcomes.
// A nil-safe no-op when never called.
func (g *Gateway) SetMetrics(m ProviderMetrics) {
	g.metrics = m
}

func (g *Gateway) recordProviderCall(err error) {
	if g.metrics == nil {
		return
	}

	switch {
	case err == nil:
		g.metrics.RecordProviderCall("ok")
	case isProviderRejection(err):
		g.metrics.RecordProviderCall("rejected")
	default:
		g.metrics.RecordProviderCall("unavailable")
	}
}

func isProviderRejection(err error) bool {
	var provErr *identity.ProviderError
	return errors.As(err, &provErr)
}

// SignUp creates an account at the identity provider and mirrors it into
// the local user directory. The optional display name is set on the
// provider account best-effort: a failure there is logged but does not
// fail the signup, since the account already exists by then.
func (g *Gateway) SignUp(ctx context.Context, email, password string, displayName *string) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	session, err := g.provider.SignUp(ctx, email, password)
	g.recordProviderCall(err)
	if err != nil {
		return nil, mapProviderError(err)
	}

	if displayName != nil && *displayName != "" {
		if err := g.provider.UpdateDisplayName(ctx, session.IDToken, *displayName); err != nil {
			log.Warn("failed to set display name on provider account",
				slog.String("subject_id", session.SubjectID),
				slog.String("error", err.Error()))
		}
	}

	user, err := g.users.Resolve(ctx, session.SubjectID, session.Email, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to provision user after signup: %w", err)
	}

	log.Info("user signed up",
		slog.String("user_id", user.ID.String()),
		slog.String("subject_id", user.SubjectID))

	return &Result{User: user, Session: session}, nil
}

// LogIn verifies the credentials at the identity provider and resolves
// the local user, provisioning one if this account has never been seen
// before (e.g. it was created outside this API).
func (g *Gateway) LogIn(ctx context.Context, email, password string) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	session, err := g.provider.SignIn(ctx, email, password)
	g.recordProviderCall(err)
	if err != nil {
		return nil, mapProviderError(err)
	}

	user, err := g.users.Resolve(ctx, session.SubjectID, session.Email, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user after login: %w", err)
	}

	log.Info("user logged in",
		slog.String("user_id", user.ID.String()),
		slog.String("subject_id", user.SubjectID))

	return &Result{User: user, Session: session}, nil
}

// mapProviderError normalizes identity-provider failures into the
// gateway's sentinels. A provider rejection keeps the *ProviderError in
// the chain so the API layer can pass its detail payload through.
func mapProviderError(err error) error {
	var provErr *identity.ProviderError
	if errors.As(err, &provErr) {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return fmt.Errorf("%w: %w", ErrExternalService, err)
}
