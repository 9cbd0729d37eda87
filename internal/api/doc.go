// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

/*
Package api serves the Coursepath HTTP API on a chi router.

Route groups:

	GET    /                      health banner
	GET    /health/live           liveness
	GET    /health/ready          readiness (database pings and a graph is published)
	GET    /metrics               Prometheus exposition
	POST   /sequential/mine       re-mine the sequence store (admin)
	GET    /sequential/next       course-level next suggestions
	GET    /sequential/status     mining coordinator status
	POST   /sequences             append a learner sequence (admin)
	POST   /recommend             learning path for a target topic
	GET    /topics                topics of the published graph
	GET    /search                course keyword search
	POST   /predict               bestseller prediction, stored
	GET    /predictions           list stored predictions
	GET    /predictions/{id}      one stored prediction
	DELETE /predictions/{id}      delete one prediction (admin)
	DELETE /predictions           delete all predictions (admin)
	GET    /stats                 totals

Admin routes require a bearer token with the admin role when a JWT secret
is configured, and are open otherwise.

# Responses

Successful responses are the plain JSON document of each endpoint. Errors
use one envelope:

	{
	  "status": "error",
	  "error": {"code": "INVALID_PARAMETER", "message": "..."},
	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
	}

A recommendation for an unknown topic is not an error. It is a 200 with
"success": false and a hint listing similar topics.
*/
package api
