package identity

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// DefaultCertsURL is the endpoint publishing the x509 certificates the
// provider signs ID tokens with, keyed by key ID.
const DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// fallbackCacheTTL is used when the certs response carries no usable
// Cache-Control max-age.
const fallbackCacheTTL = 5 * time.Minute

// KeySource resolves the provider's current token-signing public keys,
// keyed by key ID.
type KeySource interface {
	Keys(ctx context.Context) (map[string]*rsa.PublicKey, error)
}

// CertSource fetches signing certificates from the provider's metadata
// endpoint and caches them for the duration advertised in the response's
// Cache-Control header. It is safe for concurrent use; construct one at
// startup and share it.
type CertSource struct {
	url        string
	httpClient *http.Client
	now        func() time.Time // Injectable for testing

	mu     sync.Mutex
	cached map[string]*rsa.PublicKey
	expiry time.Time
}

// Ensure CertSource implements KeySource interface
var _ KeySource = (*CertSource)(nil)

// NewCertSource creates a CertSource for the given URL. An empty URL falls
// back to DefaultCertsURL; a nil client falls back to a client with a
// 10-second timeout.
func NewCertSource(url string, httpClient *http.Client) *CertSource {
	if url == "" {
		url = DefaultCertsURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &CertSource{
		url:        url,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Keys implements KeySource.Keys, serving from cache while fresh.
func (s *CertSource) Keys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Before(s.expiry) {
		return s.cached, nil
	}

	keys, ttl, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.cached = keys
	s.expiry = s.now().Add(ttl)
	return keys, nil
}

var maxAgeRegex = regexp.MustCompile(`max-age=(\d+)`)

func (s *CertSource) fetch(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create certs request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("certs request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("certs endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read certs response: %w", err)
	}

	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return nil, 0, fmt.Errorf("failed to parse certs response: %w", err)
	}
	if len(certs) == 0 {
		return nil, 0, fmt.Errorf("certs response contained no certificates")
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := parseCertPublicKey(certPEM)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse certificate %q: %w", kid, err)
		}
		keys[kid] = key
	}

	return keys, cacheTTL(resp.Header.Get("Cache-Control")), nil
}

// cacheTTL extracts the max-age from a Cache-Control header value,
// falling back to fallbackCacheTTL.
func cacheTTL(cacheControl string) time.Duration {
	m := maxAgeRegex.FindStringSubmatch(cacheControl)
	if m == nil {
		return fallbackCacheTTL
	}
	seconds, err := strconv.Atoi(m[1])
	if err != nil || seconds <= 0 {
		return fallbackCacheTTL
	}
	return time.Duration(seconds) * time.Second
}

func parseCertPublicKey(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}

	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate does not carry an RSA public key")
	}
	return key, nil
}

// StaticKeySource serves a fixed key set. It exists for tests and for
// deployments that pin signing keys out of band.
type StaticKeySource map[string]*rsa.PublicKey

// Keys implements KeySource.Keys.
func (s StaticKeySource) Keys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	return s, nil
}
