// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package testinfra provides container fixtures for integration tests.
//
// The event bus normally runs against an embedded NATS server. The
// NATSContainer fixture runs the official nats image instead, so the
// JetStream publisher and durable subscriber are exercised against the
// same server build operators deploy:
//
//	func TestBusAgainstNATS(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    nc, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, nc.Container)
//
//	    cfg := eventprocessor.DefaultConfig()
//	    cfg.Backend = eventprocessor.BackendNATS
//	    cfg.NATSURL = nc.URL
//	    // ...
//	}
//
// # Running
//
// Files are guarded by the integration build tag, and NATS tests also need
// the nats tag:
//
//	go test -tags "integration nats" ./internal/eventprocessor/...
//
// Tests are skipped when no Docker daemon is reachable. The first run pulls
// the image; later runs use the local cache.
package testinfra
