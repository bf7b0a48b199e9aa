// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

// Package workforce implements the typed client for the third-party
// workforce-management API: OAuth2 token lifecycle, transport-level
// retry with backoff, circuit breaking, envelope normalization, and
// resource accessors for departments, shifts, shift types, employee
// groups, employee details, and revenue.
//
// The provider's API surface has drifted across versions: list
// envelopes, pagination parameter names, and auxiliary endpoint paths
// all vary by tenant configuration. The client treats those variants as
// ordered data (candidate lists probed in priority order) rather than
// code paths.
package workforce
