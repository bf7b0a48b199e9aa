// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

// Package api provides the HTTP surface the portal UI consumes: the
// day-shift and revenue-week aggregation endpoints, the department
// list, health probes, and the prometheus scrape endpoint, routed with
// chi and gated by the portal's session JWTs.
package api
