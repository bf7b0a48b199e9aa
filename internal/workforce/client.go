// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package workforce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/mkarlsen/rosterhub/internal/config"
	"github.com/mkarlsen/rosterhub/internal/logging"
	"github.com/mkarlsen/rosterhub/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read
// for diagnostics, preventing unbounded allocation on large bodies.
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads a response body for error reporting, capped at
// maxErrorBodySize with a truncation marker.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// APIError is returned when the final upstream response is not 2xx.
type APIError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("workforce API returned status %d: %s", e.Status, e.Body)
}

// IsAuthError reports whether the error is an upstream 401/403.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsBadRequest reports whether the error is a 400-class shape/parameter
// rejection (excluding auth failures), the signal to try the next
// candidate request shape.
func IsBadRequest(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status >= 400 && apiErr.Status < 500 &&
		apiErr.Status != http.StatusUnauthorized && apiErr.Status != http.StatusForbidden
}

// Client talks to the workforce-management API. Stateless beyond the
// shared TokenSource and the remembered pagination convention; safe for
// concurrent use.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	tokens     TokenSource

	maxRetries     int
	retryBaseDelay time.Duration
	limiter        *rate.Limiter

	// conventions remembers, per resource, which pagination convention
	// the provider accepted so later calls skip re-probing.
	conventions sync.Map
}

// NewClient creates a workforce API client. The token source is
// constructor-injected so tests and the circuit breaker share it.
func NewClient(cfg *config.WorkforceConfig, tokens TokenSource) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		clientID:       cfg.ClientID,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		tokens:         tokens,
		maxRetries:     maxRetries,
		retryBaseDelay: 500 * time.Millisecond,
		limiter:        limiter,
	}
}

// retryable reports whether a status code warrants backoff-and-retry.
func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// do performs one upstream request with transport-level resilience:
//
//   - 401: invalidate the token cache and retry once with a fresh
//     token; a second 401 is an authorization failure, not a stale
//     token, and is surfaced
//   - 429/502/503: exponential backoff starting at retryBaseDelay,
//     doubling per attempt
//   - network failure: same backoff schedule, last error re-raised
//
// All other statuses are returned to the caller for interpretation.
// Every retry consumes an attempt from the same budget.
func (c *Client) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	var lastErr error
	refreshed := false

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		token, err := c.tokens.Token(ctx)
		if err != nil {
			// Credential and token-endpoint failures are not transport
			// failures; retrying cannot help.
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-ClientId", c.clientID)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt == c.maxRetries {
				break
			}
			metrics.UpstreamRetries.WithLabelValues("network").Inc()
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusUnauthorized {
			_ = resp.Body.Close()
			c.tokens.Invalidate()
			if refreshed || attempt == c.maxRetries {
				return nil, &APIError{Status: http.StatusUnauthorized, Body: "unauthorized after token refresh"}
			}
			refreshed = true
			metrics.UpstreamRetries.WithLabelValues("unauthorized").Inc()
			// Immediate retry with a fresh token; no backoff needed.
			continue
		}

		if retryable(resp.StatusCode) && attempt < c.maxRetries {
			_ = resp.Body.Close()
			reason := "upstream_5xx"
			if resp.StatusCode == http.StatusTooManyRequests {
				reason = "throttled"
			}
			metrics.UpstreamRetries.WithLabelValues(reason).Inc()
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

// backoff waits retryBaseDelay << attempt, cancellable via ctx.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// getJSON fetches a resource and decodes the 2xx response into out.
// Non-2xx final responses become *APIError.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, resource string, out interface{}) error {
	rawURL := c.baseURL + path
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	start := time.Now()
	resp, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		metrics.RecordUpstreamRequest(resource, err, time.Since(start))
		return fmt.Errorf("%s request failed: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readBodyForError(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode, Body: string(body)}
		metrics.RecordUpstreamRequest(resource, apiErr, time.Since(start))
		logging.Ctx(ctx).Debug().Int("status", resp.StatusCode).Str("resource", resource).Msg("Upstream rejected request")
		return apiErr
	}
	metrics.RecordUpstreamRequest(resource, nil, time.Since(start))

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", resource, err)
	}
	return nil
}

// listEnvelope matches the two wrapper shapes the provider uses for
// list responses.
type listEnvelope struct {
	Items json.RawMessage `json:"items"`
	Data  json.RawMessage `json:"data"`
}

// decodeList normalizes a list response that may arrive as a bare
// array, {"items": [...]}, or {"data": [...]} into one slice.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := strings.TrimLeft(string(raw), " \t\r\n")
	if strings.HasPrefix(trimmed, "[") {
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return list, nil
	}

	var env listEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode list envelope: %w", err)
	}

	payload := env.Items
	if payload == nil {
		payload = env.Data
	}
	if payload == nil {
		return nil, fmt.Errorf("list response has neither items nor data")
	}

	var list []T
	if err := json.Unmarshal(payload, &list); err != nil {
		return nil, fmt.Errorf("failed to decode enveloped list: %w", err)
	}
	return list, nil
}

// getList fetches a resource and normalizes its list envelope.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values, resource string) ([]T, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, path, query, resource, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}
