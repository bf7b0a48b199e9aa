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

	"github.com/mkarlsen/rosterhub/internal/cache"
	"github.com/mkarlsen/rosterhub/internal/metrics"
	"github.com/mkarlsen/rosterhub/internal/workforce"
)

// DayRevenue is one calendar day's reconciled revenue.
type DayRevenue struct {
	Date   string  `json:"date"`
	Actual float64 `json:"actual"`
	Budget float64 `json:"budget"`
}

// WeekResult is the revenue-week response.
type WeekResult struct {
	Days       []DayRevenue `json:"days"`
	WeekActual float64      `json:"weekActual"`
	WeekBudget float64      `json:"weekBudget"`
}

// revenueDateLayouts are the date shapes the two revenue endpoints have
// been observed emitting, in parse priority order.
var revenueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FetchWeek returns actual and budgeted revenue per day for the week
// starting at weekStart ("YYYY-MM-DD"), reconciled by calendar day in
// the configured timezone. Responses are cached for the configured TTL
// keyed by the sorted department list and week start.
func (a *Aggregator) FetchWeek(ctx context.Context, departmentIDs []string, weekStart string) (*WeekResult, error) {
	start, err := time.ParseInLocation("2006-01-02", weekStart, a.loc)
	if err != nil {
		return nil, &BadInputError{Field: "start", Reason: "want YYYY-MM-DD"}
	}

	sorted := append([]string(nil), departmentIDs...)
	sort.Strings(sorted)
	key := cache.Key("revenue_week", struct {
		Departments []string `json:"departments"`
		Start       string   `json:"start"`
	}{sorted, weekStart})

	if cached, ok := a.store.Get(key); ok {
		if result, ok := cached.(*WeekResult); ok {
			metrics.CacheHits.WithLabelValues("revenue").Inc()
			return result, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("revenue").Inc()

	from := start.Format("2006-01-02")
	to := start.AddDate(0, 0, 6).Format("2006-01-02")

	type fetch struct {
		rows   []workforce.RevenueRow
		budget bool
		err    error
	}
	results := make([]fetch, 2*len(departmentIDs))
	var wg sync.WaitGroup
	for i, deptID := range departmentIDs {
		wg.Add(2)
		go func(i int, deptID string) {
			defer wg.Done()
			rows, err := a.api.RevenueActuals(ctx, deptID, from, to)
			results[2*i] = fetch{rows: rows, err: err}
		}(i, deptID)
		go func(i int, deptID string) {
			defer wg.Done()
			rows, err := a.api.RevenueBudgets(ctx, deptID, from, to)
			results[2*i+1] = fetch{rows: rows, budget: true, err: err}
		}(i, deptID)
	}
	wg.Wait()

	days := make(map[string]*DayRevenue)
	for _, f := range results {
		if f.err != nil {
			return nil, f.err
		}
		for _, row := range f.rows {
			date := a.normalizeDate(row.RawDate())
			if date == "" {
				continue
			}
			// Some tenants ignore the from/to parameters and return
			// surrounding days; those must not leak into the week.
			if date < from || date > to {
				continue
			}
			day, ok := days[date]
			if !ok {
				day = &DayRevenue{Date: date}
				days[date] = day
			}
			if f.budget {
				day.Budget += row.MonetaryValue()
			} else {
				day.Actual += row.MonetaryValue()
			}
		}
	}

	result := &WeekResult{Days: make([]DayRevenue, 0, len(days))}
	for _, day := range days {
		result.Days = append(result.Days, *day)
		result.WeekActual += day.Actual
		result.WeekBudget += day.Budget
	}
	sort.Slice(result.Days, func(i, j int) bool { return result.Days[i].Date < result.Days[j].Date })

	a.store.Set(key, result, a.revenueTTL)
	return result, nil
}

// normalizeDate reduces any of the provider's date shapes to the
// calendar day in the business timezone. Bucketing actuals and budgets
// on anything less normalized splits a single business day in two.
func (a *Aggregator) normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range revenueDateLayouts {
		t, err := time.ParseInLocation(layout, raw, a.loc)
		if err != nil {
			continue
		}
		return t.In(a.loc).Format("2006-01-02")
	}
	return ""
}
