// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package workforce

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// API is the surface the aggregation layer consumes. Implemented by
// Client and by Breaker for production use, and by fakes in tests.
type API interface {
	Departments(ctx context.Context) ([]Department, error)
	Shifts(ctx context.Context, q ShiftsQuery) ([]Shift, error)
	ShiftTypes(ctx context.Context) ([]ShiftType, error)
	EmployeeGroups(ctx context.Context) ([]EmployeeGroup, error)
	EmployeeDetails(ctx context.Context, ids []string) ([]EmployeeDetail, error)
	EmployeeDetail(ctx context.Context, id string) (*EmployeeDetail, error)
	RevenueActuals(ctx context.Context, departmentID, from, to string) ([]RevenueRow, error)
	RevenueBudgets(ctx context.Context, departmentID, from, to string) ([]RevenueRow, error)
}

// Departments lists the provider's departments.
func (c *Client) Departments(ctx context.Context) ([]Department, error) {
	return getList[Department](ctx, c, "/hr/v1/departments", nil, "departments")
}

// shiftTypePaths and employeeGroupPaths are the historical endpoint
// variants the provider has exposed across API versions and casing
// conventions, in probe priority order.
var (
	shiftTypePaths = []string{
		"/scheduling/v1/shifttypes",
		"/scheduling/v1/shift-types",
		"/scheduling/v1.0/shiftTypes",
	}
	employeeGroupPaths = []string{
		"/hr/v1/employeegroups",
		"/hr/v1/employee-groups",
		"/hr/v1.0/employeeGroups",
	}
)

// probeList tries each candidate path in order and returns the first
// non-empty result. A 401/403 is a permissions problem, not a shape
// problem, and stops the probe; any other failure means try the next
// shape. When every shape fails or comes back empty, the last error
// (possibly nil) is returned alongside an empty list.
func probeList[T any](ctx context.Context, c *Client, paths []string, resource string) ([]T, error) {
	var lastErr error
	for _, path := range paths {
		list, err := getList[T](ctx, c, path, nil, resource)
		if err != nil {
			if IsAuthError(err) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if len(list) > 0 {
			return list, nil
		}
	}
	return nil, lastErr
}

// ShiftTypes lists shift types, probing the known endpoint shapes.
func (c *Client) ShiftTypes(ctx context.Context) ([]ShiftType, error) {
	return probeList[ShiftType](ctx, c, shiftTypePaths, "shift_types")
}

// EmployeeGroups lists employee groups, probing the known endpoint shapes.
func (c *Client) EmployeeGroups(ctx context.Context) ([]EmployeeGroup, error) {
	return probeList[EmployeeGroup](ctx, c, employeeGroupPaths, "employee_groups")
}

// EmployeeDetails fetches details for a batch of employee IDs in one
// request. The provider may resolve only a subset; callers fall back to
// per-id lookups for the rest.
func (c *Client) EmployeeDetails(ctx context.Context, ids []string) ([]EmployeeDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := url.Values{}
	query.Set("employeeIds", strings.Join(ids, ","))
	return getList[EmployeeDetail](ctx, c, "/hr/v1/employees", query, "employees")
}

// EmployeeDetail fetches a single employee record.
func (c *Client) EmployeeDetail(ctx context.Context, id string) (*EmployeeDetail, error) {
	var detail EmployeeDetail
	path := fmt.Sprintf("/hr/v1/employees/%s", url.PathEscape(id))
	if err := c.getJSON(ctx, path, nil, "employee", &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// RevenueActuals lists actual revenue rows for a department and window.
func (c *Client) RevenueActuals(ctx context.Context, departmentID, from, to string) ([]RevenueRow, error) {
	query := url.Values{}
	query.Set("departmentId", departmentID)
	query.Set("from", from)
	query.Set("to", to)
	return getList[RevenueRow](ctx, c, "/revenue/v1/revenue", query, "revenue_actuals")
}

// RevenueBudgets lists budgeted revenue rows for a department and window.
func (c *Client) RevenueBudgets(ctx context.Context, departmentID, from, to string) ([]RevenueRow, error) {
	query := url.Values{}
	query.Set("departmentId", departmentID)
	query.Set("from", from)
	query.Set("to", to)
	return getList[RevenueRow](ctx, c, "/revenue/v1/budgets", query, "revenue_budgets")
}
