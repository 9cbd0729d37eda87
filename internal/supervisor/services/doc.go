// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package services adapts Coursepath components to suture.Service.
//
// Each service blocks in Serve until its context is canceled, returns
// ctx.Err() on a clean stop, and implements fmt.Stringer so supervisor
// events name it.
package services
