// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package roster

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/mkarlsen/rosterhub/internal/cache"
	"github.com/mkarlsen/rosterhub/internal/config"
	"github.com/mkarlsen/rosterhub/internal/workforce"
)

type staticTokens struct{}

func (staticTokens) Token(context.Context) (string, error) { return "tok", nil }
func (staticTokens) Invalidate()                           {}

// TestFetchDayFormatProbingThroughBreaker runs the aggregator against
// the full client-plus-breaker pipeline for a tenant that only accepts
// bare-date windows. Every department's fetch emits two expected 400s
// before the accepted format; a wide request must still succeed rather
// than opening the circuit on its own probing.
func TestFetchDayFormatProbingThroughBreaker(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scheduling/v1/shifts" {
			w.Write([]byte(`[]`))
			return
		}
		from := r.URL.Query().Get("from")
		if len(from) > len("2006-01-02") {
			http.Error(w, `{"message":"bad window"}`, http.StatusBadRequest)
			return
		}
		dept := r.URL.Query().Get("departmentId")
		fmt.Fprintf(w, `[{"id":"s-%s","startDateTime":"2025-01-06T08:00:00","departmentId":"%s"}]`, dept, dept)
	}))
	defer server.Close()

	client := workforce.NewClient(&config.WorkforceConfig{
		BaseURL:    server.URL,
		ClientID:   "client-1",
		MaxRetries: 3,
		Timeout:    5 * time.Second,
	}, staticTokens{})
	upstream := workforce.NewBreaker(client)
	agg := New(upstream, cache.NewMemory(), time.UTC, 2*time.Minute)

	departments := make([]string, 10)
	for i := range departments {
		departments[i] = strconv.Itoa(i + 1)
	}

	result, err := agg.FetchDay(context.Background(), departments, "2025-01-06", "")
	if err != nil {
		t.Fatalf("FetchDay() error = %v, want success despite format probing", err)
	}
	if len(result.Items) != len(departments) {
		t.Errorf("len(items) = %d, want one shift per department", len(result.Items))
	}
}
