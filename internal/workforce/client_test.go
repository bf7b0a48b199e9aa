// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package workforce

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/mkarlsen/rosterhub/internal/config"
)

// fakeTokens is a TokenSource that hands out a fixed token and counts
// invalidations.
type fakeTokens struct {
	mu            sync.Mutex
	token         string
	err           error
	invalidations int
}

func (f *fakeTokens) Token(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func (f *fakeTokens) Invalidate() {
	f.mu.Lock()
	f.invalidations++
	f.mu.Unlock()
}

func (f *fakeTokens) invalidationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidations
}

func newTestClient(serverURL string, tokens TokenSource) *Client {
	c := NewClient(&config.WorkforceConfig{
		BaseURL:    serverURL,
		ClientID:   "client-1",
		MaxRetries: 3,
		Timeout:    5 * time.Second,
	}, tokens)
	c.retryBaseDelay = 5 * time.Millisecond // keep test backoffs short
	return c
}

func TestDoRetriesAfterUnauthorized(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tokens := &fakeTokens{token: "tok"}
	c := newTestClient(server.URL, tokens)

	resp, err := c.do(context.Background(), http.MethodGet, server.URL)
	if err != nil {
		t.Fatalf("do() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if got := tokens.invalidationCount(); got != 1 {
		t.Errorf("invalidations = %d, want exactly 1", got)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestDoBacksOffOnServiceUnavailable(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var stamps []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		n := len(stamps)
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeTokens{token: "tok"})

	resp, err := c.do(context.Background(), http.MethodGet, server.URL)
	if err != nil {
		t.Fatalf("do() error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(stamps) != 3 {
		t.Fatalf("attempts = %d, want 3", len(stamps))
	}
	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])
	if first < c.retryBaseDelay {
		t.Errorf("first backoff %v shorter than base delay %v", first, c.retryBaseDelay)
	}
	if second <= first {
		t.Errorf("backoffs not strictly increasing: %v then %v", first, second)
	}
}

func TestDoPersistentUnauthorizedSurfaces(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &fakeTokens{token: "tok"}
	c := newTestClient(server.URL, tokens)

	_, err := c.do(context.Background(), http.MethodGet, server.URL)
	if !IsAuthError(err) {
		t.Fatalf("do() error = %v, want auth error after one refresh cycle", err)
	}
	// One refresh-and-retry cycle: the second 401 is an authorization
	// problem, not a stale token, so no further attempts are spent.
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if got := tokens.invalidationCount(); got != 2 {
		t.Errorf("invalidations = %d, want one per 401", got)
	}
}

func TestClientRateLimiterWired(t *testing.T) {
	t.Parallel()

	limited := NewClient(&config.WorkforceConfig{BaseURL: "http://x", RateLimit: 50}, &fakeTokens{token: "tok"})
	if limited.limiter == nil {
		t.Error("limiter = nil with workforce.rate_limit set, want a token bucket")
	}

	unlimited := NewClient(&config.WorkforceConfig{BaseURL: "http://x"}, &fakeTokens{token: "tok"})
	if unlimited.limiter != nil {
		t.Error("limiter set with rate_limit 0, want nil (disabled)")
	}
}

func TestDoAppliesRateLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(&config.WorkforceConfig{
		BaseURL:   server.URL,
		ClientID:  "client-1",
		RateLimit: 50, // one request per 20ms after the burst
		Timeout:   5 * time.Second,
	}, &fakeTokens{token: "tok"})

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := c.do(context.Background(), http.MethodGet, server.URL)
		if err != nil {
			t.Fatalf("do() error = %v", err)
		}
		resp.Body.Close()
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("3 requests took %v, want at least two 20ms limiter waits", elapsed)
	}
}

func TestDoReturnsNonRetryableStatusAsIs(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeTokens{token: "tok"})

	resp, err := c.do(context.Background(), http.MethodGet, server.URL)
	if err != nil {
		t.Fatalf("do() error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("StatusCode = %d, want 418 passed through", resp.StatusCode)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry for unlisted status)", attempts)
	}
}

func TestDoSetsAuthHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		if got := r.Header.Get("X-ClientId"); got != "client-1" {
			t.Errorf("X-ClientId = %q, want client-1", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeTokens{token: "tok"})
	resp, err := c.do(context.Background(), http.MethodGet, server.URL)
	if err != nil {
		t.Fatalf("do() error = %v", err)
	}
	resp.Body.Close()
}

func TestDoSurfacesTokenErrors(t *testing.T) {
	t.Parallel()

	c := newTestClient("http://127.0.0.1:0", &fakeTokens{err: ErrMissingCredentials})
	_, err := c.do(context.Background(), http.MethodGet, "http://127.0.0.1:0/x")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("do() error = %v, want ErrMissingCredentials", err)
	}
}

func TestGetJSONWrapsNon2xxAsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such department"}`, http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeTokens{token: "tok"})

	var out json.RawMessage
	err := c.getJSON(context.Background(), "/hr/v1/departments", nil, "departments", &out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("getJSON() error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", apiErr.Status)
	}
}

func TestDecodeListEnvelopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantLen int
		wantErr bool
	}{
		{"bare array", `[{"id":"1","name":"Bar"},{"id":"2","name":"Kitchen"}]`, 2, false},
		{"items envelope", `{"items":[{"id":"1","name":"Bar"}]}`, 1, false},
		{"data envelope", `{"data":[{"id":"1","name":"Bar"}]}`, 1, false},
		{"empty bare array", `[]`, 0, false},
		{"empty items", `{"items":[]}`, 0, false},
		{"no list at all", `{"message":"hi"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			list, err := decodeList[EmployeeGroup](json.RawMessage(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("decodeList() = nil error, want failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeList() error = %v", err)
			}
			if len(list) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(list), tt.wantLen)
			}
		})
	}
}

func TestDoNetworkFailureExhaustsRetries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	c := newTestClient(server.URL, &fakeTokens{token: "tok"})

	_, err := c.do(context.Background(), http.MethodGet, server.URL)
	if err == nil {
		t.Fatal("do() = nil error, want network failure after retries")
	}
}

func TestFlexIDAndFlexNumber(t *testing.T) {
	t.Parallel()

	var s Shift
	payload := `{"id":42,"startDateTime":"2025-01-06T08:00:00","employeeId":null,"departmentId":"7"}`
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s.ID != "42" {
		t.Errorf("ID = %q, want 42", s.ID)
	}
	if s.EmployeeID != "" {
		t.Errorf("EmployeeID = %q, want empty for null", s.EmployeeID)
	}
	if s.DepartmentID != "7" {
		t.Errorf("DepartmentID = %q, want 7", s.DepartmentID)
	}

	var r RevenueRow
	if err := json.Unmarshal([]byte(`{"departmentId":1,"date":"2025-01-06","amount":"123.45"}`), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if r.MonetaryValue() != 123.45 {
		t.Errorf("MonetaryValue() = %v, want 123.45", r.MonetaryValue())
	}
	if r.RawDate() != "2025-01-06" {
		t.Errorf("RawDate() = %q, want 2025-01-06", r.RawDate())
	}
}
