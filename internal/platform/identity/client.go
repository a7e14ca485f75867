package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the identity provider's account-management endpoint.
const DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// ClientConfig configures the identity provider client.
// BaseURL is overridable so tests can point the client at a local server.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the identity provider's REST account endpoints. All
// credential handling happens at the provider; the client only relays
// email/password pairs and receives session tokens.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client from the given configuration.
// Returns an error if the API key is missing.
func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("identity API key cannot be empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		logger:     logger.With(slog.String("component", "identity_client")),
	}, nil
}

// Session is a successful authentication result from the provider.
type Session struct {
	SubjectID    string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// SignUp creates a new account at the provider and returns its session.
// A rejected signup (weak password, email already registered) surfaces as
// a *ProviderError carrying the provider's detail payload.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "accounts:signUp", email, password)
}

// SignIn verifies an email/password pair at the provider and returns its
// session. Wrong credentials surface as a *ProviderError.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "accounts:signInWithPassword", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*Session, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	var session Session
	if err := c.post(ctx, path, payload, &session); err != nil {
		return nil, err
	}

	if session.IDToken == "" || session.SubjectID == "" {
		return nil, fmt.Errorf("%w: response missing session token", ErrProviderUnavailable)
	}

	return &session, nil
}

// UpdateDisplayName sets the display name on the account the session
// token belongs to. Callers treat failures as non-fatal.
func (c *Client) UpdateDisplayName(ctx context.Context, idToken, displayName string) error {
	payload := map[string]any{
		"idToken":           idToken,
		"displayName":       displayName,
		"returnSecureToken": false,
	}
	return c.post(ctx, "accounts:update", payload, &struct{}{})
}

// post sends a JSON request to the provider and decodes the response into
// out. Non-2xx responses become *ProviderError with the body passed
// through; transport failures become ErrProviderUnavailable.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, path, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrProviderUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Detail:     providerDetail(respBody),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: parsing response: %v", ErrProviderUnavailable, err)
	}

	return nil
}

// providerDetail normalizes an error body to JSON: bodies that already are
// JSON pass through verbatim, anything else is wrapped as a JSON string.
func providerDetail(body []byte) json.RawMessage {
	if json.Valid(body) && len(bytes.TrimSpace(body)) > 0 {
		return json.RawMessage(body)
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return json.RawMessage(`"identity provider error"`)
	}
	return json.RawMessage(quoted)
}
