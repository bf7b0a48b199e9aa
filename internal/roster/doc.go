// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

// Package roster aggregates upstream workforce data into the shapes the
// portal UI consumes: one normalized shift list per day and one
// reconciled revenue view per week. It owns the provider-quirk
// workarounds that need business context — day-window format probing
// with a half-day fallback around DST transitions, the employee-name
// resolution ladder, and timezone-normalized revenue bucketing.
//
// Enrichment failures (shift types, employee groups, names) degrade the
// output instead of failing it; only the primary shift or revenue fetch
// surfaces an error to the caller.
package roster
