// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package roster

import (
	"context"
	"regexp"
	"sync"

	"github.com/mkarlsen/rosterhub/internal/logging"
	"github.com/mkarlsen/rosterhub/internal/workforce"
)

// nameWorkers bounds the per-id lookup fan-out when the bulk request
// leaves IDs unresolved.
const nameWorkers = 6

// placeholderPattern matches the provider's synthetic stand-in names.
// A payload name of this shape carries no information beyond the ID.
var placeholderPattern = regexp.MustCompile(`^Employee #\d+$`)

// displayName applies the resolution ladder for one shift: resolved
// detail name, then the payload name unless it is a synthetic
// placeholder, then a synthesized placeholder, and "Open shift" when
// there is no employee at all.
func displayName(s workforce.Shift, resolved map[string]string) string {
	id := s.EmployeeID.String()
	if id == "" {
		return "Open shift"
	}
	if name, ok := resolved[id]; ok && name != "" {
		return name
	}
	if s.EmployeeName != "" && !placeholderPattern.MatchString(s.EmployeeName) {
		return s.EmployeeName
	}
	return "Employee #" + id
}

// resolveNames maps employee IDs to display names. One bulk request
// first; IDs the bulk response misses are fetched individually with a
// bounded worker pool. Per-id failures leave the ID unresolved; only a
// bulk failure with nothing recovered is reported, and even then the
// caller degrades rather than fails.
func (a *Aggregator) resolveNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	details, bulkErr := a.api.EmployeeDetails(ctx, ids)
	if bulkErr != nil {
		logging.Ctx(ctx).Warn().Err(bulkErr).Int("ids", len(ids)).Msg("Bulk employee lookup failed")
	}
	for _, d := range details {
		if name := d.DisplayName(); name != "" {
			names[d.ID.String()] = name
		}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return names, nil
	}

	work := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < nameWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range work {
				detail, err := a.api.EmployeeDetail(ctx, id)
				if err != nil || detail == nil {
					logging.Ctx(ctx).Debug().Err(err).Str("employee", id).Msg("Employee lookup failed")
					continue
				}
				if name := detail.DisplayName(); name != "" {
					mu.Lock()
					names[id] = name
					mu.Unlock()
				}
			}
		}()
	}
	for _, id := range missing {
		work <- id
	}
	close(work)
	wg.Wait()

	if bulkErr != nil && len(names) == 0 {
		return names, bulkErr
	}
	return names, nil
}
