// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

/*
Package supervisor runs Coursepath's long-lived services under a suture v4
supervisor tree.

The tree has three layers, each its own supervisor so a crash loop in one
does not restart the others:

	coursepath (root)
	├── mining-layer     scheduled re-mining (services.RemineService)
	├── messaging-layer  Watermill event router (services.RouterService)
	└── api-layer        HTTP server (services.HTTPServerService)

Supervisor events are logged through sutureslog into the zerolog-backed
slog handler from package logging.

Example:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMiningService(services.NewRemineService(coord, remineCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
