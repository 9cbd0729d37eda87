// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/coursepath/internal/auth"
	"github.com/tomtom215/coursepath/internal/middleware"
)

// Router wires the handlers to routes.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. authMW may be nil or disabled, leaving admin
// routes open.
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware) *Router {
	if authMW == nil {
		authMW = auth.NewMiddleware(nil)
	}
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, auth: authMW, chiMiddleware: chiMW}
}

// Setup builds the chi handler tree.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// Probes and scraping.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", h.Root)
		r.Get("/health/live", h.Live)
		r.Get("/health/ready", h.Ready)
		r.Handle("/metrics", promhttp.Handler())
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.SecurityHeaders)
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/sequential", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitMining(), router.auth.RequireAdmin).Post("/mine", h.Mine)
			r.Get("/next", h.Next)
			r.Get("/status", h.Status)
		})

		r.With(router.auth.RequireAdmin).Post("/sequences", h.AppendSequence)

		r.Post("/recommend", h.Recommend)
		r.Get("/topics", h.Topics)
		r.Get("/search", h.Search)

		r.Post("/predict", h.Predict)
		r.Route("/predictions", func(r chi.Router) {
			r.Get("/", h.ListPredictions)
			r.With(router.auth.RequireAdmin).Delete("/", h.DeleteAllPredictions)
			r.Get("/{id}", h.GetPrediction)
			r.With(router.auth.RequireAdmin).Delete("/{id}", h.DeletePrediction)
		})

		r.Get("/stats", h.Stats)
	})

	return r
}
