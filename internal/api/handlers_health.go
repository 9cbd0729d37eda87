// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package api

import (
	"context"
	"net/http"
	"time"
)

// RootResponse is the health banner served at /.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// ReadinessResponse reports whether the server can answer recommendations.
type ReadinessResponse struct {
	Ready         bool              `json:"ready"`
	Checks        map[string]string `json:"checks"`
	GraphVersion  uint64            `json:"graph_version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
}

// Root serves the health banner.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, RootResponse{
		Message: "Coursepath learning path recommendation API",
		Version: h.version,
		Status:  "active",
	})
}

// Live reports that the process is serving.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Ready is 200 when the database answers and a topic graph is published,
// 503 otherwise.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := ReadinessResponse{
		Ready:         true,
		Checks:        map[string]string{"database": "ok", "graph": "ok"},
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if err := h.store.Ping(ctx); err != nil {
		resp.Ready = false
		resp.Checks["database"] = "unavailable"
	}

	st := h.miner.Status()
	resp.GraphVersion = st.GraphVersion
	if h.miner.Graph() == nil {
		resp.Ready = false
		resp.Checks["graph"] = "not published"
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}
