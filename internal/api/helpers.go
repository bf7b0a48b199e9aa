// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mkarlsen/rosterhub/internal/logging"
	"github.com/mkarlsen/rosterhub/internal/roster"
	"github.com/mkarlsen/rosterhub/internal/validation"
	"github.com/mkarlsen/rosterhub/internal/workforce"
)

// errorBody is the error payload shape the portal expects.
type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Response encoding failed")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// respondUpstreamError maps an aggregation failure to the portal's
// status convention: 400 for caller mistakes, 403 when the upstream
// rejects our authorization, 500 for configuration problems, and 502
// for everything transport-shaped.
func respondUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Aggregation failed")

	var badInput *roster.BadInputError
	var validationErr *validation.Error
	switch {
	case errors.As(err, &badInput) || errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, workforce.ErrMissingCredentials):
		respondError(w, http.StatusInternalServerError, "workforce API credentials are not configured")
	case workforce.IsAuthError(err):
		respondError(w, http.StatusForbidden, "workforce API rejected our authorization")
	default:
		respondError(w, http.StatusBadGateway, "workforce API is unavailable")
	}
}
