// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

// Package config loads and validates RosterHub configuration from
// defaults, an optional YAML file, and environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Workforce WorkforceConfig `koanf:"workforce"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// WorkforceConfig configures the upstream workforce-management API.
type WorkforceConfig struct {
	// ClientID identifies this integration to the provider. Sent as the
	// X-ClientId header on every resource call and as client_id in the
	// token grant.
	ClientID string `koanf:"client_id"`

	// RefreshToken is the long-lived credential for the OAuth2
	// refresh-token grant.
	RefreshToken string `koanf:"refresh_token"`

	// ClientSecret is expected present for parity with the provider's
	// app registration but is not sent on any call today.
	ClientSecret string `koanf:"client_secret"`

	// TokenURL overrides the provider token endpoint.
	TokenURL string `koanf:"token_url"`

	// BaseURL overrides the provider API root.
	BaseURL string `koanf:"base_url"`

	// MaxRetries bounds transport-level retries per request.
	MaxRetries int `koanf:"max_retries"`

	// RateLimit caps outbound requests per second. 0 disables the limiter.
	RateLimit float64 `koanf:"rate_limit"`

	// Timezone is the calendar used to bucket shift and revenue dates.
	Timezone string `koanf:"timezone"`

	// Timeout is the per-request HTTP client timeout.
	Timeout time.Duration `koanf:"timeout"`
}

// ServerConfig configures the inbound HTTP server.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig configures inbound request gating.
type SecurityConfig struct {
	// JWTSecret verifies portal session tokens (HS256). The tokens are
	// minted by the portal's auth provider; this service only verifies.
	JWTSecret string `koanf:"jwt_secret"`

	// AuthDisabled turns off bearer verification. Development only.
	AuthDisabled bool `koanf:"auth_disabled"`

	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// CacheConfig configures response caching.
type CacheConfig struct {
	// RevenueTTL is the lifetime of cached revenue aggregation responses.
	RevenueTTL time.Duration `koanf:"revenue_ttl"`
}

// LoggingConfig configures the zerolog pipeline.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that cannot work at all.
// Missing upstream credentials are deliberately not rejected here: the
// token source reports them as a typed error on first use, so read-only
// development against recorded fixtures still starts.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Workforce.MaxRetries < 0 {
		return fmt.Errorf("workforce.max_retries must not be negative")
	}
	if c.Workforce.RateLimit < 0 {
		return fmt.Errorf("workforce.rate_limit must not be negative")
	}
	if _, err := time.LoadLocation(c.Workforce.Timezone); err != nil {
		return fmt.Errorf("workforce.timezone %q is not a valid IANA zone: %w", c.Workforce.Timezone, err)
	}
	if c.Cache.RevenueTTL < 0 {
		return fmt.Errorf("cache.revenue_ttl must not be negative")
	}
	if !c.Security.AuthDisabled && c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required; set it or set security.auth_disabled=true for development")
	}
	return nil
}

// Location resolves the configured workforce timezone. Validate has
// already checked it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Workforce.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
