package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/identity"
)

type fakeVerifier struct {
	claims *identity.Claims
	err    error

	gotToken string
}

func (f *fakeVerifier) Verify(ctx context.Context, rawToken string) (*identity.Claims, error) {
	f.gotToken = rawToken
	return f.claims, f.err
}

type fakeResolver struct {
	user *domain.User
	err  error

	gotSubject string
	gotEmail   string
	gotName    *string
}

func (f *fakeResolver) Resolve(ctx context.Context, subjectID, emailHint string, displayNameHint *string) (*domain.User, error) {
	f.gotSubject = subjectID
	f.gotEmail = emailHint
	f.gotName = displayNameHint
	return f.user, f.err
}

func authTestUser(t *testing.T) *domain.User {
	t.Helper()

	user, err := domain.NewUser("subject-1", "jordan@example.com", nil)
	require.NoError(t, err)
	return user
}

func runAuthenticated(m *AuthMiddleware, header string) (*httptest.ResponseRecorder, *domain.User) {
	var seen *domain.User
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthMiddleware_Success(t *testing.T) {
	user := authTestUser(t)
	verifier := &fakeVerifier{claims: &identity.Claims{
		SubjectID:   "subject-1",
		Email:       "jordan@example.com",
		DisplayName: "Jordan",
	}}
	resolver := &fakeResolver{user: user}

	m := NewAuthMiddleware(verifier, resolver)
	rec, seen := runAuthenticated(m, "Bearer valid-token")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "valid-token", verifier.gotToken)
	assert.Equal(t, "subject-1", resolver.gotSubject)
	assert.Equal(t, "jordan@example.com", resolver.gotEmail)
	require.NotNil(t, resolver.gotName)
	assert.Equal(t, "Jordan", *resolver.gotName)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestAuthMiddleware_NoDisplayNameClaim(t *testing.T) {
	verifier := &fakeVerifier{claims: &identity.Claims{SubjectID: "subject-1"}}
	resolver := &fakeResolver{user: authTestUser(t)}

	m := NewAuthMiddleware(verifier, resolver)
	rec, _ := runAuthenticated(m, "Bearer t")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, resolver.gotName)
}

func TestAuthMiddleware_HeaderFailures(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "no bearer prefix", header: "token-without-scheme"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "too many parts", header: "Bearer a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(&fakeVerifier{}, &fakeResolver{})
			rec, _ := runAuthenticated(m, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthMiddleware_TokenFailures(t *testing.T) {
	tests := []struct {
		name       string
		verifyErr  error
		wantStatus int
		wantBody   string
	}{
		{name: "expired", verifyErr: identity.ErrExpiredToken, wantStatus: http.StatusUnauthorized, wantBody: "Token expired"},
		{name: "invalid", verifyErr: identity.ErrInvalidToken, wantStatus: http.StatusUnauthorized, wantBody: "Invalid token"},
		{name: "unexpected", verifyErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantBody: "Authentication error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(&fakeVerifier{err: tt.verifyErr}, &fakeResolver{})
			rec, _ := runAuthenticated(m, "Bearer t")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestAuthMiddleware_ResolveFailure(t *testing.T) {
	verifier := &fakeVerifier{claims: &identity.Claims{SubjectID: "subject-1"}}
	resolver := &fakeResolver{err: errors.New("db down")}

	m := NewAuthMiddleware(verifier, resolver)
	rec, _ := runAuthenticated(m, "Bearer t")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetUser_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	user, ok := GetUser(req)
	assert.False(t, ok)
	assert.Nil(t, user)
}
