// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

// Package cache provides the response-cache abstraction used by the
// aggregation layer. The Store interface keeps the caching policy
// visible and swappable: the in-process TTL map below serves a single
// instance, and a shared backend can be dropped in for multi-instance
// deployments without touching route logic.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Store is a TTL key/value cache.
type Store interface {
	// Get returns the cached value and whether it was present and fresh.
	Get(key string) (interface{}, bool)

	// Set stores a value with the given TTL.
	Set(key string, value interface{}, ttl time.Duration)

	// Delete removes a key. No-op when absent.
	Delete(key string)

	// Len reports the number of live entries.
	Len() int
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Memory is a thread-safe in-process Store backed by a map.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry

	statsMu sync.Mutex
	stats   Stats
}

// NewMemory creates an in-process cache. Expired entries are removed
// lazily on Get and by RunJanitor when supervised.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

// Get returns the cached value if present and not expired.
func (m *Memory) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.record(func(s *Stats) { s.Misses++ })
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		m.record(func(s *Stats) { s.Misses++; s.Evictions++ })
		return nil, false
	}

	m.record(func(s *Stats) { s.Hits++ })
	return e.value, true
}

// Set stores a value with the given TTL, overwriting any existing entry.
func (m *Memory) Set(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

// Delete removes a key.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	m.record(func(s *Stats) { s.Evictions++ })
}

// Len reports the number of entries, expired ones included until swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// GetStats returns a snapshot of the counters.
func (m *Memory) GetStats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}

// Sweep removes all expired entries and reports how many were evicted.
func (m *Memory) Sweep() int {
	now := time.Now()
	m.mu.Lock()
	evicted := 0
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
			evicted++
		}
	}
	m.mu.Unlock()

	if evicted > 0 {
		m.record(func(s *Stats) { s.Evictions += int64(evicted) })
	}
	return evicted
}

func (m *Memory) record(fn func(*Stats)) {
	m.statsMu.Lock()
	fn(&m.stats)
	m.statsMu.Unlock()
}

// Key builds a cache key from a name and the canonical JSON of params,
// hashed for compactness. Callers must pass params whose JSON encoding
// is deterministic (sort slices first).
func Key(name string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", name, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", name, hash[:16])
}
