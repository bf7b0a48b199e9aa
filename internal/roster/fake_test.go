// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package roster

import (
	"context"
	"time"

	"github.com/mkarlsen/rosterhub/internal/cache"
	"github.com/mkarlsen/rosterhub/internal/workforce"
)

// fakeAPI implements workforce.API with per-method hooks. Unset hooks
// return empty results.
type fakeAPI struct {
	shifts          func(ctx context.Context, q workforce.ShiftsQuery) ([]workforce.Shift, error)
	departments     func(ctx context.Context) ([]workforce.Department, error)
	shiftTypes      func(ctx context.Context) ([]workforce.ShiftType, error)
	employeeGroups  func(ctx context.Context) ([]workforce.EmployeeGroup, error)
	employeeDetails func(ctx context.Context, ids []string) ([]workforce.EmployeeDetail, error)
	employeeDetail  func(ctx context.Context, id string) (*workforce.EmployeeDetail, error)
	revenueActuals  func(ctx context.Context, departmentID, from, to string) ([]workforce.RevenueRow, error)
	revenueBudgets  func(ctx context.Context, departmentID, from, to string) ([]workforce.RevenueRow, error)
}

func (f *fakeAPI) Departments(ctx context.Context) ([]workforce.Department, error) {
	if f.departments == nil {
		return nil, nil
	}
	return f.departments(ctx)
}

func (f *fakeAPI) Shifts(ctx context.Context, q workforce.ShiftsQuery) ([]workforce.Shift, error) {
	if f.shifts == nil {
		return nil, nil
	}
	return f.shifts(ctx, q)
}

func (f *fakeAPI) ShiftTypes(ctx context.Context) ([]workforce.ShiftType, error) {
	if f.shiftTypes == nil {
		return nil, nil
	}
	return f.shiftTypes(ctx)
}

func (f *fakeAPI) EmployeeGroups(ctx context.Context) ([]workforce.EmployeeGroup, error) {
	if f.employeeGroups == nil {
		return nil, nil
	}
	return f.employeeGroups(ctx)
}

func (f *fakeAPI) EmployeeDetails(ctx context.Context, ids []string) ([]workforce.EmployeeDetail, error) {
	if f.employeeDetails == nil {
		return nil, nil
	}
	return f.employeeDetails(ctx, ids)
}

func (f *fakeAPI) EmployeeDetail(ctx context.Context, id string) (*workforce.EmployeeDetail, error) {
	if f.employeeDetail == nil {
		return nil, nil
	}
	return f.employeeDetail(ctx, id)
}

func (f *fakeAPI) RevenueActuals(ctx context.Context, departmentID, from, to string) ([]workforce.RevenueRow, error) {
	if f.revenueActuals == nil {
		return nil, nil
	}
	return f.revenueActuals(ctx, departmentID, from, to)
}

func (f *fakeAPI) RevenueBudgets(ctx context.Context, departmentID, from, to string) ([]workforce.RevenueRow, error) {
	if f.revenueBudgets == nil {
		return nil, nil
	}
	return f.revenueBudgets(ctx, departmentID, from, to)
}

func newTestAggregator(api workforce.API) *Aggregator {
	return New(api, cache.NewMemory(), time.UTC, 2*time.Minute)
}
