// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package cache provides a thread-safe LRU cache with per-entry TTL.
//
// It backs two hot paths:
//
//   - catalog.Cached keeps ranked per-topic course lists so repeated
//     recommendations for the same topic skip the database.
//   - The sequence event consumer remembers recent event IDs so JetStream
//     redeliveries are not stored twice.
package cache
