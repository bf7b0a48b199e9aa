// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package workforce

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestBreakerIgnoresShapeRejections(t *testing.T) {
	t.Parallel()

	// A tenant rejecting every request shape produces a steady stream
	// of 400s. Those are negotiation, not upstream sickness, and must
	// not open the circuit.
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, `{"message":"unknown parameter"}`, http.StatusBadRequest)
			return
		}
		w.Write([]byte(`[{"id":"1","startDateTime":"2025-01-06T08:00:00","departmentId":"7"}]`))
	}))
	defer server.Close()

	b := NewBreaker(newTestClient(server.URL, &fakeTokens{token: "tok"}))
	q := ShiftsQuery{DepartmentID: "7", From: "2025-01-06", To: "2025-01-07"}

	for i := 0; i < 12; i++ {
		_, err := b.Shifts(context.Background(), q)
		if !IsBadRequest(err) {
			t.Fatalf("call %d: error = %v, want the upstream 400 passed through", i, err)
		}
		if ErrCircuitOpen(err) {
			t.Fatalf("call %d: circuit opened on shape rejections", i)
		}
	}

	healthy.Store(true)
	shifts, err := b.Shifts(context.Background(), q)
	if err != nil {
		t.Fatalf("Shifts() after recovery error = %v, want closed circuit", err)
	}
	if len(shifts) != 1 {
		t.Errorf("len(shifts) = %d, want 1", len(shifts))
	}
}

func TestBreakerOpensOnRepeatedFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	b := NewBreaker(newTestClient(server.URL, &fakeTokens{token: "tok"}))

	var lastErr error
	for i := 0; i < 15; i++ {
		_, lastErr = b.Departments(context.Background())
	}
	if !ErrCircuitOpen(lastErr) {
		t.Fatalf("error after sustained 500s = %v, want open circuit", lastErr)
	}
}
