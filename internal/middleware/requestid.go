// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mkarlsen/rosterhub/internal/logging"
)

// RequestIDHeader is the inbound/outbound request-ID header.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request an ID, echoes it in the response
// header, and places it in the request context together with a fresh
// correlation ID so every log line of the request carries both. An
// inbound X-Request-ID from the portal is preserved.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		ctx := logging.ContextWithRequestID(r.Context(), id)
		ctx = logging.ContextWithNewCorrelationID(ctx)

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
