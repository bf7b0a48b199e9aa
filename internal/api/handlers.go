// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package api

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mkarlsen/rosterhub/internal/roster"
	"github.com/mkarlsen/rosterhub/internal/validation"
	"github.com/mkarlsen/rosterhub/internal/workforce"
)

// maxRequestBody caps inbound JSON payloads.
const maxRequestBody = 1 << 20

// Handler serves the portal-facing endpoints.
type Handler struct {
	agg *roster.Aggregator
	api workforce.API
}

// NewHandler creates the endpoint handler.
func NewHandler(agg *roster.Aggregator, api workforce.API) *Handler {
	return &Handler{agg: agg, api: api}
}

// dayRequest is the POST /shifts/day payload.
type dayRequest struct {
	DepartmentIDs []string `json:"departmentIds" validate:"required,min=1,max=50,dive,required"`
	Date          string   `json:"date" validate:"required,isodate"`
	Status        string   `json:"status,omitempty" validate:"omitempty,max=64"`
}

// ShiftsDay returns the normalized shift list for one calendar day.
func (h *Handler) ShiftsDay(w http.ResponseWriter, r *http.Request) {
	var req dayRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.agg.FetchDay(r.Context(), req.DepartmentIDs, req.Date, req.Status)
	if err != nil {
		respondUpstreamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// weekRequest is the revenue-week query, bound from URL parameters.
type weekRequest struct {
	DepartmentIDs []string `validate:"required,min=1,max=50,dive,required"`
	Start         string   `validate:"required,isodate"`
}

// RevenueWeek returns reconciled actual and budgeted revenue for the
// week starting at the given Monday.
func (h *Handler) RevenueWeek(w http.ResponseWriter, r *http.Request) {
	req := weekRequest{Start: r.URL.Query().Get("start")}
	if raw := r.URL.Query().Get("departmentIds"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.DepartmentIDs = append(req.DepartmentIDs, id)
			}
		}
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.agg.FetchWeek(r.Context(), req.DepartmentIDs, req.Start)
	if err != nil {
		respondUpstreamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// departmentsResponse wraps the department list in the portal's
// envelope convention.
type departmentsResponse struct {
	Items []workforce.Department `json:"items"`
}

// Departments returns the upstream department list.
func (h *Handler) Departments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.api.Departments(r.Context())
	if err != nil {
		respondUpstreamError(w, r, err)
		return
	}
	if departments == nil {
		departments = []workforce.Department{}
	}
	respondJSON(w, http.StatusOK, departmentsResponse{Items: departments})
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady reports readiness. The service has no local state to warm
// up; readiness equals liveness, but the endpoint exists so deployments
// can distinguish the two later without touching probes.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
