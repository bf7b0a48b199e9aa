// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package cache

import (
	"context"
	"time"
)

// Janitor periodically sweeps expired entries from a Memory store. It
// implements suture.Service so it runs under the supervision tree.
type Janitor struct {
	store    *Memory
	interval time.Duration
}

// NewJanitor creates a janitor sweeping the store at the given interval.
func NewJanitor(store *Memory, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Janitor{store: store, interval: interval}
}

// Serve runs the sweep loop until the context is canceled.
func (j *Janitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.store.Sweep()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String names the service in supervisor logs.
func (j *Janitor) String() string {
	return "cache-janitor"
}
