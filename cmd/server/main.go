// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

// Command server runs the RosterHub integration service: it fronts the
// third-party workforce-management API for the staff portal, serving
// day-shift and revenue-week aggregations over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkarlsen/rosterhub/internal/api"
	"github.com/mkarlsen/rosterhub/internal/cache"
	"github.com/mkarlsen/rosterhub/internal/config"
	"github.com/mkarlsen/rosterhub/internal/logging"
	"github.com/mkarlsen/rosterhub/internal/roster"
	"github.com/mkarlsen/rosterhub/internal/supervisor"
	"github.com/mkarlsen/rosterhub/internal/supervisor/services"
	"github.com/mkarlsen/rosterhub/internal/workforce"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Service exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Int("port", cfg.Server.Port).
		Str("base_url", cfg.Workforce.BaseURL).
		Str("timezone", cfg.Workforce.Timezone).
		Msg("Starting RosterHub")

	// Upstream pipeline: token source -> resilient client -> breaker.
	tokens := workforce.NewOAuthTokenSource(&cfg.Workforce)
	client := workforce.NewClient(&cfg.Workforce, tokens)
	upstream := workforce.NewBreaker(client)

	store := cache.NewMemory()
	agg := roster.New(upstream, store, cfg.Location(), cfg.Cache.RevenueTTL)

	handler := api.NewHandler(agg, upstream)
	router := api.NewRouter(handler, &cfg.Security)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	slogger := slog.New(logging.NewSlogHandler())
	tree := supervisor.NewTree(slogger, supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.Timeout))
	tree.AddMaintenanceService(cache.NewJanitor(store, 5*time.Minute))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}
