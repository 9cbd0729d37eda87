// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/coursepath/internal/database"
	"github.com/tomtom215/coursepath/internal/predict"
	"github.com/tomtom215/coursepath/internal/validation"
)

const (
	defaultPredictionLimit = 100
	maxPredictionLimit     = 1000
)

// PredictRequest carries either engineered features or a raw course
// description to engineer them from. Course wins when both are set.
type PredictRequest struct {
	Features *predict.Features  `json:"features,omitempty"`
	Course   *predict.RawCourse `json:"course,omitempty"`
}

// PredictResponse is a stored prediction.
type PredictResponse struct {
	*database.Prediction
	Fallback bool `json:"fallback,omitempty"`
}

// PredictionsResponse lists stored predictions.
type PredictionsResponse struct {
	Predictions []database.Prediction `json:"predictions"`
	Count       int                   `json:"count"`
	Skip        int                   `json:"skip"`
	Limit       int                   `json:"limit"`
}

// DeleteResponse acknowledges a delete.
type DeleteResponse struct {
	Deleted int64  `json:"deleted"`
	Message string `json:"message"`
}

// StatsResponse reports store totals.
type StatsResponse struct {
	TotalPredictions int    `json:"total_predictions"`
	TotalSequences   int    `json:"total_sequences"`
	TotalCourses     int    `json:"total_courses"`
	GraphVersion     uint64 `json:"graph_version"`
	Message          string `json:"message"`
}

// Predict classifies a course and stores the verdict.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	var features predict.Features
	switch {
	case req.Course != nil:
		if verr := validation.ValidateStruct(req.Course); verr != nil {
			respondValidation(w, r, verr)
			return
		}
		features = predict.EngineerFeatures(*req.Course)
	case req.Features != nil:
		features = *req.Features
	default:
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "features or course is required", nil)
		return
	}
	if verr := validation.ValidateStruct(&features); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	res, err := h.classifier.Predict(r.Context(), features)
	if errors.Is(err, predict.ErrUnavailable) {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Classifier unavailable", err)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Prediction failed", err)
		return
	}

	stored, err := h.store.InsertPrediction(r.Context(), features, res)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to store prediction", err)
		return
	}
	respondJSON(w, http.StatusCreated, PredictResponse{Prediction: stored, Fallback: res.Fallback})
}

// ListPredictions pages through stored predictions, newest first.
func (h *Handler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), nil)
		return
	}
	limit, err := queryInt(r, "limit", defaultPredictionLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), nil)
		return
	}
	if skip < 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "skip must be >= 0", nil)
		return
	}
	if limit < 1 || limit > maxPredictionLimit {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter,
			fmt.Sprintf("limit must be between 1 and %d", maxPredictionLimit), nil)
		return
	}

	preds, err := h.store.ListPredictions(r.Context(), skip, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to list predictions", err)
		return
	}
	respondJSON(w, http.StatusOK, PredictionsResponse{Predictions: preds, Count: len(preds), Skip: skip, Limit: limit})
}

// GetPrediction returns one stored prediction.
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := predictionID(w, r)
	if !ok {
		return
	}
	p, err := h.store.GetPrediction(r.Context(), id)
	if errors.Is(err, database.ErrPredictionNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Prediction not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to load prediction", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// DeletePrediction removes one stored prediction.
func (h *Handler) DeletePrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := predictionID(w, r)
	if !ok {
		return
	}
	err := h.store.DeletePrediction(r.Context(), id)
	if errors.Is(err, database.ErrPredictionNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Prediction not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to delete prediction", err)
		return
	}
	respondJSON(w, http.StatusOK, DeleteResponse{Deleted: 1, Message: fmt.Sprintf("Prediction %d deleted", id)})
}

// DeleteAllPredictions removes every stored prediction.
func (h *Handler) DeleteAllPredictions(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.DeleteAllPredictions(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to delete predictions", err)
		return
	}
	respondJSON(w, http.StatusOK, DeleteResponse{Deleted: n, Message: fmt.Sprintf("%d predictions deleted", n)})
}

// Stats reports store totals. The three counts are independent queries and
// run concurrently.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var resp StatsResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		resp.TotalPredictions, err = h.store.CountPredictions(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.TotalSequences, err = h.store.CountSequences(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.TotalCourses, err = h.store.CountCourses(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to compute stats", err)
		return
	}

	resp.GraphVersion = h.miner.Status().GraphVersion
	resp.Message = "Statistics retrieved successfully"
	respondJSON(w, http.StatusOK, resp)
}

func predictionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}
