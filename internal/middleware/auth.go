// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkarlsen/rosterhub/internal/logging"
)

type authContextKey string

// subjectKey carries the verified token subject through the request context.
const subjectKey authContextKey = "subject"

// SessionClaims are the claims the portal's auth provider puts in its
// session JWTs. This service only verifies; it never mints tokens.
type SessionClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies portal session bearer tokens (HS256, shared
// secret with the auth provider).
type Authenticator struct {
	secret   []byte
	disabled bool
}

// NewAuthenticator creates a bearer-token verifier. When disabled, all
// requests pass through unauthenticated.
func NewAuthenticator(secret string, disabled bool) *Authenticator {
	return &Authenticator{secret: []byte(secret), disabled: disabled}
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.disabled {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(w)
			return
		}

		claims := &SessionClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !parsed.Valid {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Bearer token rejected")
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SubjectFromContext returns the verified token subject, or "" when
// authentication is disabled or absent.
func SubjectFromContext(ctx context.Context) string {
	if sub, ok := ctx.Value(subjectKey).(string); ok {
		return sub
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
