// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package roster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkarlsen/rosterhub/internal/cache"
	"github.com/mkarlsen/rosterhub/internal/logging"
	"github.com/mkarlsen/rosterhub/internal/workforce"
)

// BadInputError marks a caller mistake in the aggregation parameters.
// The HTTP layer maps it to a 400.
type BadInputError struct {
	Field  string
	Reason string
}

func (e *BadInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Aggregator merges upstream workforce data into portal-facing views.
type Aggregator struct {
	api        workforce.API
	store      cache.Store
	loc        *time.Location
	revenueTTL time.Duration
}

// New creates an Aggregator. loc is the business timezone used for
// day-window construction and revenue date normalization; revenueTTL
// bounds the response cache for revenue weeks.
func New(api workforce.API, store cache.Store, loc *time.Location, revenueTTL time.Duration) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	if revenueTTL <= 0 {
		revenueTTL = 2 * time.Minute
	}
	return &Aggregator{api: api, store: store, loc: loc, revenueTTL: revenueTTL}
}

// labels holds the enrichment lookups keyed by upstream ID.
type labels struct {
	shiftTypes map[string]string
	groups     map[string]string
	names      map[string]string
}

// enrich resolves shift type, employee group, and employee name labels
// for a shift batch. Each source fails independently: a failed source
// yields empty labels plus a degraded marker, never an error.
func (a *Aggregator) enrich(ctx context.Context, shifts []workforce.Shift) (labels, []string) {
	out := labels{
		shiftTypes: map[string]string{},
		groups:     map[string]string{},
		names:      map[string]string{},
	}

	var mu sync.Mutex
	var degraded []string
	markDegraded := func(source string, err error) {
		logging.Ctx(ctx).Warn().Err(err).Str("source", source).Msg("Enrichment degraded")
		mu.Lock()
		degraded = append(degraded, source)
		mu.Unlock()
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		types, err := a.api.ShiftTypes(ctx)
		if err != nil {
			markDegraded("shift_types", err)
			return
		}
		mu.Lock()
		for _, st := range types {
			out.shiftTypes[st.ID.String()] = st.Name
		}
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		groups, err := a.api.EmployeeGroups(ctx)
		if err != nil {
			markDegraded("employee_groups", err)
			return
		}
		mu.Lock()
		for _, g := range groups {
			out.groups[g.ID.String()] = g.Name
		}
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		names, err := a.resolveNames(ctx, employeeIDs(shifts))
		mu.Lock()
		out.names = names
		mu.Unlock()
		if err != nil {
			markDegraded("employee_names", err)
		}
	}()

	wg.Wait()

	return out, degraded
}

// employeeIDs collects the distinct non-empty employee IDs of a batch.
func employeeIDs(shifts []workforce.Shift) []string {
	seen := make(map[string]struct{}, len(shifts))
	var ids []string
	for _, s := range shifts {
		id := s.EmployeeID.String()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
