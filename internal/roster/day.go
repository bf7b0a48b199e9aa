// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package roster

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mkarlsen/rosterhub/internal/logging"
	"github.com/mkarlsen/rosterhub/internal/workforce"
)

// windowFormat is one textual shape for a time-range query. Which shape
// a tenant accepts depends on provider-side configuration that cannot
// be queried in advance, so FetchDay probes them in priority order.
type windowFormat struct {
	name   string
	layout string
}

var windowFormats = []windowFormat{
	{"second", "2006-01-02T15:04:05"},
	{"minute", "2006-01-02T15:04"},
	{"date", "2006-01-02"},
}

// ShiftItem is one normalized shift as the portal renders it.
type ShiftItem struct {
	ID            string `json:"id"`
	DepartmentID  string `json:"departmentId"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	End           string `json:"end,omitempty"`
	Status        string `json:"status,omitempty"`
	EmployeeID    string `json:"employeeId,omitempty"`
	EmployeeName  string `json:"employeeName"`
	ShiftType     string `json:"shiftType,omitempty"`
	EmployeeGroup string `json:"employeeGroup,omitempty"`
}

// DayResult is the day-aggregation response. Degraded lists the
// enrichment sources that failed; the items are still served with
// placeholder labels.
type DayResult struct {
	Items    []ShiftItem `json:"items"`
	Degraded []string    `json:"degraded,omitempty"`
}

// FetchDay returns all shifts for the given departments on one calendar
// day in the configured timezone, deduplicated by shift ID and sorted
// by start timestamp. Date is "YYYY-MM-DD"; status is optional.
func (a *Aggregator) FetchDay(ctx context.Context, departmentIDs []string, date, status string) (*DayResult, error) {
	day, err := time.ParseInLocation("2006-01-02", date, a.loc)
	if err != nil {
		return nil, &BadInputError{Field: "date", Reason: "want YYYY-MM-DD"}
	}

	type deptResult struct {
		shifts []workforce.Shift
		err    error
	}

	results := make([]deptResult, len(departmentIDs))
	var wg sync.WaitGroup
	for i, deptID := range departmentIDs {
		wg.Add(1)
		go func(i int, deptID string) {
			defer wg.Done()
			shifts, err := a.fetchDayShifts(ctx, deptID, day, status)
			results[i] = deptResult{shifts: shifts, err: err}
		}(i, deptID)
	}
	wg.Wait()

	var all []workforce.Shift
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		all = append(all, res.shifts...)
	}

	// Overlapping status filters can return the same shift twice.
	seen := make(map[string]struct{}, len(all))
	deduped := all[:0]
	for _, s := range all {
		if _, dup := seen[s.ID.String()]; dup {
			continue
		}
		seen[s.ID.String()] = struct{}{}
		deduped = append(deduped, s)
	}

	sort.Slice(deduped, func(i, j int) bool { return deduped[i].Start < deduped[j].Start })

	labels, degraded := a.enrich(ctx, deduped)

	items := make([]ShiftItem, 0, len(deduped))
	for _, s := range deduped {
		items = append(items, ShiftItem{
			ID:            s.ID.String(),
			DepartmentID:  s.DepartmentID.String(),
			Date:          date,
			Start:         s.Start,
			End:           s.End,
			Status:        s.Status,
			EmployeeID:    s.EmployeeID.String(),
			EmployeeName:  displayName(s, labels.names),
			ShiftType:     labels.shiftTypes[s.ShiftTypeID.String()],
			EmployeeGroup: labels.groups[s.EmployeeGroupID.String()],
		})
	}

	return &DayResult{Items: items, Degraded: degraded}, nil
}

// fetchDayShifts fetches one department's shifts for the day, probing
// window formats. If every whole-day format is rejected with a
// 400-class error the day is split into two half-day windows before
// giving up: around DST transitions an upstream midnight-to-midnight
// query can silently clip the transition day.
func (a *Aggregator) fetchDayShifts(ctx context.Context, deptID string, day time.Time, status string) ([]workforce.Shift, error) {
	next := day.AddDate(0, 0, 1)

	shifts, err := a.probeWindow(ctx, deptID, day, next, status)
	if err == nil {
		return shifts, nil
	}
	if !workforce.IsBadRequest(err) {
		return nil, err
	}

	logging.Ctx(ctx).Warn().Str("department", deptID).Msg("Whole-day window rejected, probing half-day windows")

	noon := day.Add(12 * time.Hour)
	first, err := a.probeWindow(ctx, deptID, day, noon, status)
	if err != nil {
		return nil, err
	}
	second, err := a.probeWindow(ctx, deptID, noon, next, status)
	if err != nil {
		return nil, err
	}
	return append(first, second...), nil
}

// probeWindow tries each window format for [from, to). A 400-class
// rejection moves to the next format; anything else is fatal.
func (a *Aggregator) probeWindow(ctx context.Context, deptID string, from, to time.Time, status string) ([]workforce.Shift, error) {
	var lastErr error
	for _, format := range windowFormats {
		shifts, err := a.api.Shifts(ctx, workforce.ShiftsQuery{
			DepartmentID: deptID,
			From:         from.Format(format.layout),
			To:           to.Format(format.layout),
			Status:       status,
		})
		if err != nil {
			if workforce.IsBadRequest(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return shifts, nil
	}
	return nil, lastErr
}
