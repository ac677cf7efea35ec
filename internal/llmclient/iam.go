package llmclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultIAMEndpoint = "https://iam.cloud.ibm.com/identity/token"
	iamGrantType       = "urn:ibm:params:oauth:grant-type:apikey"

	// Refresh this long before the token actually expires.
	tokenRefreshMargin = 60 * time.Second

	// IAM tokens expire in 3600s unless the response says otherwise.
	defaultExpiresIn = 3600
)

// IAMTokenSource exchanges an API key for a bearer token and caches it until
// shortly before expiry. Safe for concurrent use; two callers that miss the
// cache simultaneously both run the exchange and the later write wins, which
// is harmless because tokens are idempotently replaceable.
type IAMTokenSource struct {
	apiKey   string
	endpoint string
	http     *http.Client
	now      func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewIAMTokenSource creates a token source. endpoint and client are optional.
func NewIAMTokenSource(apiKey, endpoint string, client *http.Client) *IAMTokenSource {
	if endpoint == "" {
		endpoint = defaultIAMEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &IAMTokenSource{
		apiKey:   apiKey,
		endpoint: endpoint,
		http:     client,
		now:      time.Now,
	}
}

// SetClock replaces the time source. Tests only.
func (s *IAMTokenSource) SetClock(now func() time.Time) { s.now = now }

// Token returns a bearer token with at least tokenRefreshMargin of validity,
// exchanging the API key when the cached one is missing or near expiry.
func (s *IAMTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.token != "" && s.expiresAt.Sub(s.now()) > tokenRefreshMargin {
		tok := s.token
		s.mu.Unlock()
		return tok, nil
	}
	s.mu.Unlock()

	if s.apiKey == "" {
		return "", &AuthError{Body: "api key is not set"}
	}

	form := url.Values{}
	form.Set("grant_type", iamGrantType)
	form.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", &AuthError{Status: resp.StatusCode, Body: truncateBody(body)}
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &AuthError{Status: resp.StatusCode, Body: "unparseable token response: " + err.Error()}
	}
	if out.AccessToken == "" {
		return "", &AuthError{Status: resp.StatusCode, Body: "token response missing access_token"}
	}
	expiresIn := out.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}

	s.mu.Lock()
	s.token = out.AccessToken
	s.expiresAt = s.now().Add(time.Duration(expiresIn) * time.Second)
	s.mu.Unlock()

	return out.AccessToken, nil
}
