// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

// Package middleware provides HTTP middleware: request-ID propagation,
// prometheus instrumentation, and JWT bearer verification for the
// portal's session tokens.
package middleware
