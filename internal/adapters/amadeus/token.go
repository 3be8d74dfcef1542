package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"hotel_search/internal/adapters/observability"
	"hotel_search/internal/domain"
	"hotel_search/internal/retry"
)

// defaultExpiresIn mirrors the upstream default when the token response
// omits expires_in.
const defaultExpiresIn = 1800

// expiryBuffer keeps us from serving a token that expires mid-flight.
const expiryBuffer = 60 * time.Second

// TokenCache holds the single process-wide bearer token. Reads and writes go
// through the mutex so concurrent requests always see a self-consistent
// {value, expiresAt} pair.
type TokenCache struct {
	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

// Get returns the cached token if its expiry is strictly after now.
func (c *TokenCache) Get(now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == "" || !c.expiresAt.After(now) {
		return "", false
	}
	return c.value, true
}

func (c *TokenCache) Put(value string, expiresAt time.Time) {
	c.mu.Lock()
	c.value = value
	c.expiresAt = expiresAt
	c.mu.Unlock()
}

// TokenManager fetches and caches OAuth2 client_credentials tokens from the
// Amadeus identity endpoint. Refreshes are coalesced so a burst of expired
// callers issues a single upstream request.
type TokenManager struct {
	authURL      string
	clientID     string
	clientSecret string
	hc           *http.Client
	cache        *TokenCache
	policy       retry.Policy
	sf           singleflight.Group
	now          func() time.Time
}

func NewTokenManager(authURL, clientID, clientSecret string, timeout time.Duration) *TokenManager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TokenManager{
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		hc:           &http.Client{Timeout: timeout},
		cache:        &TokenCache{},
		policy:       retry.Upstream,
		now:          time.Now,
	}
}

// Token returns a valid bearer token, hitting the identity endpoint only when
// the cached one is missing or expired. Failures surface as *domain.AuthError.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if v, ok := m.cache.Get(m.now()); ok {
		return v, nil
	}
	v, err, _ := m.sf.Do("token", func() (any, error) {
		// another caller may have refreshed while we waited on the flight key
		if v, ok := m.cache.Get(m.now()); ok {
			return v, nil
		}
		return m.refresh(ctx)
	})
	if err != nil {
		var se *retry.StatusError
		if errors.As(err, &se) {
			return "", &domain.AuthError{Status: se.Status, Body: se.Body, Err: err}
		}
		return "", &domain.AuthError{Err: err}
	}
	return v.(string), nil
}

func (m *TokenManager) refresh(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", m.clientID)
	form.Set("client_secret", m.clientSecret)
	body := form.Encode()

	var token string
	err := retry.Do(ctx, m.policy, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.authURL, strings.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := m.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		defer resp.Body.Close()
		observability.ObserveExternal("amadeus", "token", resp.StatusCode, time.Since(start))

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &retry.StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}

		var tr struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
			return err
		}
		if tr.ExpiresIn <= 0 {
			tr.ExpiresIn = defaultExpiresIn
		}
		expiresAt := m.now().Add(time.Duration(tr.ExpiresIn)*time.Second - expiryBuffer)
		m.cache.Put(tr.AccessToken, expiresAt)
		token = tr.AccessToken
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
