// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package workforce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/mkarlsen/rosterhub/internal/config"
	"github.com/mkarlsen/rosterhub/internal/logging"
	"github.com/mkarlsen/rosterhub/internal/metrics"
)

// ErrMissingCredentials is returned when the client ID or refresh token
// is absent from configuration. Never retried.
var ErrMissingCredentials = errors.New("workforce: client_id and refresh_token are required")

const (
	// refreshWindow is subtracted from the cached expiry: a token this
	// close to expiring is refreshed rather than reused.
	refreshWindow = 30 * time.Second

	// Provider-declared token lifetimes are clamped to this range. A
	// provider announcing a pathologically short or long expires_in
	// must not drive the refresh cadence.
	minTokenLifetime = 60 * time.Second
	maxTokenLifetime = 3600 * time.Second
)

// TokenSource supplies bearer tokens for the workforce API.
type TokenSource interface {
	// Token returns a valid access token, refreshing if needed.
	Token(ctx context.Context) (string, error)

	// Invalidate empties the cache so the next Token call refreshes.
	// Called eagerly on any upstream 401.
	Invalidate()
}

// OAuthTokenSource obtains tokens via the OAuth2 refresh-token grant
// and caches them. The mutex serializes concurrent refreshes: callers
// arriving during a refresh wait for it instead of racing their own.
type OAuthTokenSource struct {
	tokenURL     string
	clientID     string
	refreshToken string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time

	now func() time.Time
}

// NewOAuthTokenSource creates a token source from configuration.
func NewOAuthTokenSource(cfg *config.WorkforceConfig) *OAuthTokenSource {
	return &OAuthTokenSource{
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		refreshToken: cfg.RefreshToken,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		now:          time.Now,
	}
}

// Token returns the cached access token while it has more than
// refreshWindow of life left, refreshing synchronously otherwise.
func (s *OAuthTokenSource) Token(ctx context.Context) (string, error) {
	if s.clientID == "" || s.refreshToken == "" {
		return "", ErrMissingCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && s.expiresAt.Add(-refreshWindow).After(s.now()) {
		return s.accessToken, nil
	}
	return s.refresh(ctx)
}

// Invalidate empties the cached token.
func (s *OAuthTokenSource) Invalidate() {
	s.mu.Lock()
	s.accessToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	metrics.TokenInvalidations.Inc()
}

// tokenResponse is the provider's token endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// refresh performs the refresh-token grant. Caller holds s.mu.
func (s *OAuthTokenSource) refresh(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", s.clientID)
	form.Set("refresh_token", s.refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		body := readBodyForError(resp.Body)
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return "", fmt.Errorf("token endpoint returned empty access_token")
	}

	lifetime := clampLifetime(time.Duration(tok.ExpiresIn) * time.Second)

	s.accessToken = tok.AccessToken
	s.expiresAt = s.now().Add(lifetime)

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	logging.Debug().Dur("lifetime", lifetime).Msg("Workforce token refreshed")

	return s.accessToken, nil
}

// clampLifetime bounds a provider-declared lifetime to
// [minTokenLifetime, maxTokenLifetime].
func clampLifetime(d time.Duration) time.Duration {
	if d < minTokenLifetime {
		return minTokenLifetime
	}
	if d > maxTokenLifetime {
		return maxTokenLifetime
	}
	return d
}
