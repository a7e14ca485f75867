package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	}, nil)
	require.NoError(t, err)
	return client
}

func TestClient_SignUp_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId":      "uid-1",
			"email":        "new@example.com",
			"idToken":      "id-token-1",
			"refreshToken": "refresh-token-1",
			"expiresIn":    "3600",
		})
	})

	session, err := client.SignUp(context.Background(), "new@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, "/accounts:signUp", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "new@example.com", gotBody["email"])
	assert.Equal(t, true, gotBody["returnSecureToken"])

	assert.Equal(t, "uid-1", session.SubjectID)
	assert.Equal(t, "id-token-1", session.IDToken)
	assert.Equal(t, "refresh-token-1", session.RefreshToken)
	assert.Equal(t, "3600", session.ExpiresIn)
}

func TestClient_SignIn_PathAndPayload(t *testing.T) {
	var gotPath string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId": "uid-2",
			"idToken": "id-token-2",
		})
	})

	session, err := client.SignIn(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "/accounts:signInWithPassword", gotPath)
	assert.Equal(t, "uid-2", session.SubjectID)
}

func TestClient_ProviderRejection_PassesDetailThrough(t *testing.T) {
	detail := `{"error":{"code":400,"message":"EMAIL_EXISTS"}}`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(detail))
	})

	session, err := client.SignUp(context.Background(), "dup@example.com", "pw")
	assert.Nil(t, session)

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
	assert.JSONEq(t, detail, string(provErr.Detail))
}

func TestClient_ProviderRejection_NonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := client.SignIn(context.Background(), "a@b.com", "pw")

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusBadGateway, provErr.StatusCode)

	// Non-JSON bodies are wrapped as JSON strings so Detail stays valid JSON.
	var asString string
	require.NoError(t, json.Unmarshal(provErr.Detail, &asString))
	assert.Equal(t, "upstream exploded", asString)
}

func TestClient_MissingSessionToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"email": "a@b.com"})
	})

	session, err := client.SignUp(context.Background(), "a@b.com", "pw")
	assert.Nil(t, session)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // shut down immediately so the client dials a dead address

	client, err := NewClient(ClientConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = client.SignIn(context.Background(), "a@b.com", "pw")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestClient_UpdateDisplayName(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{}`))
	})

	err := client.UpdateDisplayName(context.Background(), "id-token-1", "Jordan")
	require.NoError(t, err)
	assert.Equal(t, "/accounts:update", gotPath)
	assert.Equal(t, "id-token-1", gotBody["idToken"])
	assert.Equal(t, "Jordan", gotBody["displayName"])
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(ClientConfig{}, nil)
	assert.Error(t, err)
}
