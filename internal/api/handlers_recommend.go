// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/coursepath/internal/catalog"
	"github.com/tomtom215/coursepath/internal/recommend"
	"github.com/tomtom215/coursepath/internal/validation"
)

// maxSearchLimit bounds GET /search?limit.
const maxSearchLimit = 100

// TopicsResponse lists the topics of the published graph.
type TopicsResponse struct {
	Topics []string `json:"topics"`
	Count  int      `json:"count"`
}

// SearchResponse lists the courses matching a keyword.
type SearchResponse struct {
	Courses []catalog.Course `json:"courses"`
	Count   int              `json:"count"`
	Keyword string           `json:"keyword"`
}

// Recommend plans a learning path toward target_topic.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}
	req.TargetTopic = strings.TrimSpace(req.TargetTopic)

	resp, err := h.recommender.Recommend(r.Context(), req)
	switch {
	case errors.Is(err, recommend.ErrInvalidParameter):
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), nil)
		return
	case errors.Is(err, recommend.ErrGraphNotReady):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeGraphNotReady, "No topic graph has been published yet", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to build recommendation", err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Topics lists the topics of the published graph, empty before the first
// graph.
func (h *Handler) Topics(w http.ResponseWriter, r *http.Request) {
	topics := h.recommender.Topics()
	if topics == nil {
		topics = []string{}
	}
	respondJSON(w, http.StatusOK, TopicsResponse{Topics: topics, Count: len(topics)})
}

// Search finds courses whose title contains keyword.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "keyword is required", nil)
		return
	}
	limit, err := queryInt(r, "limit", h.defaults.SearchLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), nil)
		return
	}
	if limit < 1 || limit > maxSearchLimit {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "limit must be between 1 and 100", nil)
		return
	}

	courses, err := h.recommender.Search(r.Context(), keyword, limit)
	if errors.Is(err, catalog.ErrUnavailable) {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeCatalogUnavailable, "Course catalog unavailable", err)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Search failed", err)
		return
	}
	respondJSON(w, http.StatusOK, SearchResponse{Courses: courses, Count: len(courses), Keyword: keyword})
}
