// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package roster

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/mkarlsen/rosterhub/internal/workforce"
)

func TestDisplayNameLadder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		shift    workforce.Shift
		resolved map[string]string
		want     string
	}{
		{
			name:     "resolved detail wins",
			shift:    workforce.Shift{EmployeeID: "42", EmployeeName: "Payload Name"},
			resolved: map[string]string{"42": "Anna Berg"},
			want:     "Anna Berg",
		},
		{
			name:  "payload name when unresolved",
			shift: workforce.Shift{EmployeeID: "42", EmployeeName: "Payload Name"},
			want:  "Payload Name",
		},
		{
			name:  "synthetic payload name ignored",
			shift: workforce.Shift{EmployeeID: "42", EmployeeName: "Employee #42"},
			want:  "Employee #42",
		},
		{
			name:  "placeholder synthesized from id",
			shift: workforce.Shift{EmployeeID: "42"},
			want:  "Employee #42",
		},
		{
			name:  "no employee at all",
			shift: workforce.Shift{},
			want:  "Open shift",
		},
		{
			name:     "resolved empty string falls through",
			shift:    workforce.Shift{EmployeeID: "7"},
			resolved: map[string]string{"7": ""},
			want:     "Employee #7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := displayName(tt.shift, tt.resolved); got != tt.want {
				t.Errorf("displayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveNamesBulkThenPerID(t *testing.T) {
	t.Parallel()

	var perID atomic.Int64
	api := &fakeAPI{
		employeeDetails: func(_ context.Context, ids []string) ([]workforce.EmployeeDetail, error) {
			if len(ids) != 3 {
				t.Errorf("bulk ids = %v, want all 3 in one request", ids)
			}
			return []workforce.EmployeeDetail{{ID: "1", Name: "Anna Berg"}}, nil
		},
		employeeDetail: func(_ context.Context, id string) (*workforce.EmployeeDetail, error) {
			perID.Add(1)
			if id == "2" {
				return &workforce.EmployeeDetail{ID: "2", FirstName: "Jonas"}, nil
			}
			return nil, &workforce.APIError{Status: http.StatusNotFound, Body: "gone"}
		},
	}

	names, err := newTestAggregator(api).resolveNames(context.Background(), []string{"1", "2", "3"})
	if err != nil {
		t.Fatalf("resolveNames() error = %v", err)
	}
	if names["1"] != "Anna Berg" || names["2"] != "Jonas" {
		t.Errorf("names = %v, want bulk + per-id results merged", names)
	}
	if _, ok := names["3"]; ok {
		t.Errorf("names[3] resolved, want absent after failed lookup")
	}
	if got := perID.Load(); got != 2 {
		t.Errorf("per-id lookups = %d, want 2 (only unresolved ids)", got)
	}
}

func TestResolveNamesBoundedFanOut(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int64
	api := &fakeAPI{
		employeeDetails: func(_ context.Context, _ []string) ([]workforce.EmployeeDetail, error) {
			return nil, nil // bulk resolves nothing
		},
		employeeDetail: func(_ context.Context, id string) (*workforce.EmployeeDetail, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			defer inFlight.Add(-1)
			return &workforce.EmployeeDetail{ID: workforce.FlexID(id), Name: "E" + id}, nil
		},
	}

	ids := make([]string, 40)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", i+1)
	}

	names, err := newTestAggregator(api).resolveNames(context.Background(), ids)
	if err != nil {
		t.Fatalf("resolveNames() error = %v", err)
	}
	if len(names) != len(ids) {
		t.Errorf("resolved = %d, want %d", len(names), len(ids))
	}
	if got := peak.Load(); got > nameWorkers {
		t.Errorf("peak concurrent lookups = %d, want at most %d", got, nameWorkers)
	}
}

func TestResolveNamesBulkFailureDegrades(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		employeeDetails: func(_ context.Context, _ []string) ([]workforce.EmployeeDetail, error) {
			return nil, &workforce.APIError{Status: http.StatusBadGateway, Body: "down"}
		},
		employeeDetail: func(_ context.Context, _ string) (*workforce.EmployeeDetail, error) {
			return nil, &workforce.APIError{Status: http.StatusBadGateway, Body: "down"}
		},
	}

	names, err := newTestAggregator(api).resolveNames(context.Background(), []string{"1", "2"})
	if err == nil {
		t.Fatal("resolveNames() = nil error, want bulk failure reported when nothing resolved")
	}
	if len(names) != 0 {
		t.Errorf("names = %v, want empty", names)
	}
}
