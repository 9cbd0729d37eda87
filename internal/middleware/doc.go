// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package middleware provides chi-compatible HTTP middleware shared by the
// API router: request IDs with request-scoped loggers, Prometheus request
// metrics keyed by route pattern, structured access logging, and API
// security headers.
//
// Recommended order:
//
//	r.Use(middleware.RequestID)
//	r.Use(chimiddleware.RealIP)
//	r.Use(middleware.AccessLog)
//	r.Use(chimiddleware.Recoverer)
//	r.Use(middleware.PrometheusMetrics)
package middleware
