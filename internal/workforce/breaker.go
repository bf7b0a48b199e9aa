// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package workforce

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mkarlsen/rosterhub/internal/logging"
	"github.com/mkarlsen/rosterhub/internal/metrics"
)

// Breaker wraps a Client with a circuit breaker so a dead or drowning
// provider fails fast instead of tying up every inbound request in
// retry loops. An open circuit surfaces to callers as a transport
// failure.
//
// The breaker uses real time for its interval and timeout; tests
// exercise the wrapped client directly.
type Breaker struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewBreaker wraps the client in a circuit breaker.
// Configuration: max 3 concurrent probes in half-open state, 1 minute
// measurement window, 2 minute open period, trips at a 60% failure
// rate over at least 10 requests.
func NewBreaker(client *Client) *Breaker {
	cbName := "workforce-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		// Shape rejections are protocol negotiation, not upstream
		// sickness: day-window and pagination probing produce expected
		// 400s before the accepted shape is found, and counting those
		// as failures would open the circuit against a healthy provider.
		IsSuccessful: func(err error) bool {
			return err == nil || IsBadRequest(err)
		},

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Breaker{client: client, cb: cb, name: cbName}
}

// ErrCircuitOpen reports whether the error came from the breaker
// itself rather than the upstream call.
func ErrCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (b *Breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if ErrCircuitOpen(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// castList type-asserts a breaker result to a slice.
func castList[T any](result interface{}, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.([]T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Departments lists departments with circuit breaker protection.
func (b *Breaker) Departments(ctx context.Context) ([]Department, error) {
	return castList[Department](b.execute(func() (interface{}, error) {
		return b.client.Departments(ctx)
	}))
}

// Shifts lists shifts with circuit breaker protection.
func (b *Breaker) Shifts(ctx context.Context, q ShiftsQuery) ([]Shift, error) {
	return castList[Shift](b.execute(func() (interface{}, error) {
		return b.client.Shifts(ctx, q)
	}))
}

// ShiftTypes lists shift types with circuit breaker protection.
func (b *Breaker) ShiftTypes(ctx context.Context) ([]ShiftType, error) {
	return castList[ShiftType](b.execute(func() (interface{}, error) {
		return b.client.ShiftTypes(ctx)
	}))
}

// EmployeeGroups lists employee groups with circuit breaker protection.
func (b *Breaker) EmployeeGroups(ctx context.Context) ([]EmployeeGroup, error) {
	return castList[EmployeeGroup](b.execute(func() (interface{}, error) {
		return b.client.EmployeeGroups(ctx)
	}))
}

// EmployeeDetails bulk-fetches employee details with circuit breaker protection.
func (b *Breaker) EmployeeDetails(ctx context.Context, ids []string) ([]EmployeeDetail, error) {
	return castList[EmployeeDetail](b.execute(func() (interface{}, error) {
		return b.client.EmployeeDetails(ctx, ids)
	}))
}

// EmployeeDetail fetches one employee with circuit breaker protection.
func (b *Breaker) EmployeeDetail(ctx context.Context, id string) (*EmployeeDetail, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.EmployeeDetail(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*EmployeeDetail)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// RevenueActuals lists actual revenue with circuit breaker protection.
func (b *Breaker) RevenueActuals(ctx context.Context, departmentID, from, to string) ([]RevenueRow, error) {
	return castList[RevenueRow](b.execute(func() (interface{}, error) {
		return b.client.RevenueActuals(ctx, departmentID, from, to)
	}))
}

// RevenueBudgets lists budgeted revenue with circuit breaker protection.
func (b *Breaker) RevenueBudgets(ctx context.Context, departmentID, from, to string) ([]RevenueRow, error) {
	return castList[RevenueRow](b.execute(func() (interface{}, error) {
		return b.client.RevenueBudgets(ctx, departmentID, from, to)
	}))
}
