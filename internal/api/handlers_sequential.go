// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/coursepath/internal/catalog"
	"github.com/tomtom215/coursepath/internal/coordinator"
	"github.com/tomtom215/coursepath/internal/database"
	"github.com/tomtom215/coursepath/internal/mining"
	"github.com/tomtom215/coursepath/internal/recommend"
	"github.com/tomtom215/coursepath/internal/validation"
)

// MineRequest overrides the configured mining defaults. Omitted fields keep
// the defaults; provided fields are validated, never clamped.
type MineRequest struct {
	MinSupport *float64 `json:"min_support,omitempty"`
	MaxLen     *int     `json:"max_len,omitempty"`
	TopK       *int     `json:"top_k,omitempty"`
}

// MineResponse is the result of POST /sequential/mine.
type MineResponse struct {
	RunID      string           `json:"run_id"`
	Patterns   []mining.Pattern `json:"patterns"`
	Sequences  int              `json:"sequences"`
	Published  bool             `json:"published"`
	Version    uint64           `json:"version"`
	DurationMS int64            `json:"duration_ms"`
}

// NextResponse is the result of GET /sequential/next.
type NextResponse struct {
	CourseID    string                 `json:"course_id"`
	Suggestions []recommend.Suggestion `json:"suggestions"`
}

// SequenceRequest appends one learner sequence.
type SequenceRequest struct {
	LearnerID string   `json:"learner_id" validate:"max=200"`
	Topics    []string `json:"topics" validate:"required,min=1,max=100,dive,notblank,max=200"`
}

// SequenceResponse acknowledges an appended sequence.
type SequenceResponse struct {
	ID     int64 `json:"id"`
	Topics int   `json:"topics"`
}

// Mine re-mines the sequence store. The run is detached from the request
// context so a disconnecting client does not abort it; the coordinator's
// run timeout still bounds it.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	var req MineRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	params := h.defaults.Mining
	if req.MinSupport != nil {
		params.MinSupport = *req.MinSupport
	}
	if req.MaxLen != nil {
		params.MaxLen = *req.MaxLen
	}
	if req.TopK != nil {
		params.TopK = *req.TopK
	}

	result, err := h.miner.Remine(context.WithoutCancel(r.Context()), params)
	switch {
	case errors.Is(err, mining.ErrInvalidParameter):
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), nil)
		return
	case errors.Is(err, coordinator.ErrAlreadyRunning):
		respondError(w, r, http.StatusConflict, ErrCodeMiningInProgress, "A mining run is already in progress", nil)
		return
	case errors.Is(err, mining.ErrEmptyInput):
		respondError(w, r, http.StatusUnprocessableEntity, ErrCodeEmptyInput, "The sequence store is empty", nil)
		return
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Mining run timed out", err)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Mining run failed", err)
		return
	}

	patterns := result.Patterns
	if patterns == nil {
		patterns = []mining.Pattern{}
	}
	respondJSON(w, http.StatusOK, MineResponse{
		RunID:      result.RunID,
		Patterns:   patterns,
		Sequences:  result.Sequences,
		Published:  result.Published,
		Version:    result.Version,
		DurationMS: result.Duration.Milliseconds(),
	})
}

// Next suggests courses that follow course_id.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	courseID := strings.TrimSpace(r.URL.Query().Get("course_id"))
	if courseID == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "course_id is required", nil)
		return
	}
	// Zero asks the recommender for its configured default. A supplied
	// top_k must itself be in range.
	topK := 0
	if r.URL.Query().Has("top_k") {
		n, err := queryInt(r, "top_k", -1)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), nil)
			return
		}
		if n < 1 || n > 50 {
			respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "top_k must be between 1 and 50", nil)
			return
		}
		topK = n
	}

	suggestions, err := h.recommender.Next(r.Context(), courseID, topK)
	switch {
	case errors.Is(err, recommend.ErrGraphNotReady):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeGraphNotReady, "No topic graph has been published yet", nil)
		return
	case errors.Is(err, catalog.ErrCourseNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Course not found", nil)
		return
	case errors.Is(err, catalog.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeCatalogUnavailable, "Course catalog unavailable", err)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to compute suggestions", err)
		return
	}

	respondJSON(w, http.StatusOK, NextResponse{CourseID: courseID, Suggestions: suggestions})
}

// Status reports the mining coordinator state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.miner.Status())
}

// AppendSequence stores a learner sequence for the next mining run.
func (h *Handler) AppendSequence(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	id, err := h.store.AppendSequence(r.Context(), req.LearnerID, "api", req.Topics)
	if errors.Is(err, database.ErrInvalidSequence) {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to store sequence", err)
		return
	}
	respondJSON(w, http.StatusCreated, SequenceResponse{ID: id, Topics: len(req.Topics)})
}
