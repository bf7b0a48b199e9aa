// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package workforce

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mkarlsen/rosterhub/internal/logging"
)

const (
	// shiftPageSize is the page size requested from the provider. A
	// full page means more data may follow.
	shiftPageSize = 200

	// maxShiftPages is a runaway guard against providers that keep
	// returning full pages forever.
	maxShiftPages = 200
)

// ShiftsQuery selects shifts for one department and time window. From
// and To are preformatted by the caller: the accepted textual format
// depends on provider-side configuration, so the aggregation layer
// probes candidate formats and passes each one down verbatim.
type ShiftsQuery struct {
	DepartmentID string
	From         string
	To           string
	Status       string
}

// pageConvention is one pagination parameter dialect. API version drift
// left four of them in the wild; which one a tenant speaks cannot be
// queried in advance.
type pageConvention struct {
	name  string
	apply func(q url.Values, page, size int)
}

var pageConventions = []pageConvention{
	{"limit_offset", func(q url.Values, page, size int) {
		q.Set("limit", strconv.Itoa(size))
		q.Set("offset", strconv.Itoa(page*size))
	}},
	{"page_pagesize", func(q url.Values, page, size int) {
		q.Set("page", strconv.Itoa(page+1))
		q.Set("pageSize", strconv.Itoa(size))
	}},
	{"top_skip", func(q url.Values, page, size int) {
		q.Set("top", strconv.Itoa(size))
		q.Set("skip", strconv.Itoa(page*size))
	}},
	{"take_skip", func(q url.Values, page, size int) {
		q.Set("take", strconv.Itoa(size))
		q.Set("skip", strconv.Itoa(page*size))
	}},
}

// conventionOrder returns the probe order, starting with the remembered
// winner when one exists.
func (c *Client) conventionOrder(resource string) []pageConvention {
	val, ok := c.conventions.Load(resource)
	if !ok {
		return pageConventions
	}
	winner, ok := val.(int)
	if !ok || winner < 0 || winner >= len(pageConventions) {
		return pageConventions
	}
	order := make([]pageConvention, 0, len(pageConventions))
	order = append(order, pageConventions[winner])
	for i, conv := range pageConventions {
		if i != winner {
			order = append(order, conv)
		}
	}
	return order
}

// rememberConvention stores the accepted convention for the resource
// for the rest of the process lifetime.
func (c *Client) rememberConvention(resource, name string) {
	for i, conv := range pageConventions {
		if conv.name == name {
			c.conventions.Store(resource, i)
			return
		}
	}
}

// Shifts lists shifts for the query window, paging until a short page.
// Pagination conventions are probed in order; a 400-class rejection
// moves to the next convention, while auth and transport failures
// surface immediately. The first accepted convention is used for all
// subsequent pages of this call and remembered for later calls.
func (c *Client) Shifts(ctx context.Context, q ShiftsQuery) ([]Shift, error) {
	base := url.Values{}
	base.Set("departmentId", q.DepartmentID)
	base.Set("from", q.From)
	base.Set("to", q.To)
	if q.Status != "" {
		base.Set("status", q.Status)
	}

	var lastErr error
	for _, conv := range c.conventionOrder("shifts") {
		query := cloneValues(base)
		conv.apply(query, 0, shiftPageSize)

		page, err := getList[Shift](ctx, c, "/scheduling/v1/shifts", query, "shifts")
		if err != nil {
			if IsBadRequest(err) {
				lastErr = err
				continue
			}
			return nil, err
		}

		c.rememberConvention("shifts", conv.name)

		all := page
		for pageNum := 1; len(page) == shiftPageSize && pageNum < maxShiftPages; pageNum++ {
			query = cloneValues(base)
			conv.apply(query, pageNum, shiftPageSize)
			page, err = getList[Shift](ctx, c, "/scheduling/v1/shifts", query, "shifts")
			if err != nil {
				return nil, err
			}
			all = append(all, page...)
		}
		if len(page) == shiftPageSize {
			logging.Ctx(ctx).Warn().Str("department", q.DepartmentID).Int("pages", maxShiftPages).Msg("Shift paging hit runaway guard")
		}
		return all, nil
	}

	return nil, lastErr
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for key, vals := range v {
		out[key] = append([]string(nil), vals...)
	}
	return out
}
