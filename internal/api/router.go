// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkarlsen/rosterhub/internal/config"
	"github.com/mkarlsen/rosterhub/internal/middleware"
)

// Router assembles the HTTP handler tree.
type Router struct {
	handler *Handler
	auth    *middleware.Authenticator
	cfg     *config.SecurityConfig
}

// NewRouter creates a router over the given handler and security
// configuration.
func NewRouter(handler *Handler, cfg *config.SecurityConfig) *Router {
	return &Router{
		handler: handler,
		auth:    middleware.NewAuthenticator(cfg.JWTSecret, cfg.AuthDisabled),
		cfg:     cfg,
	}
}

// Setup builds the chi handler tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global stack, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		MaxAge:         86400,
	}))

	// Health probes stay open: no auth, permissive rate limit.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Data endpoints: rate-limited, instrumented, session-gated.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.auth.Require)

		r.Post("/shifts/day", router.handler.ShiftsDay)
		r.Get("/revenue/week", router.handler.RevenueWeek)
		r.Get("/departments", router.handler.Departments)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (router *Router) rateLimit() func(http.Handler) http.Handler {
	reqs := router.cfg.RateLimitReqs
	window := router.cfg.RateLimitWindow
	if reqs <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(reqs, window, httprate.WithKeyFuncs(httprate.KeyByIP))
}
