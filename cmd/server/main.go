// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/coursepath/internal/api"
	"github.com/tomtom215/coursepath/internal/auth"
	"github.com/tomtom215/coursepath/internal/config"
	"github.com/tomtom215/coursepath/internal/logging"
	"github.com/tomtom215/coursepath/internal/mining"
	"github.com/tomtom215/coursepath/internal/recommend"
	"github.com/tomtom215/coursepath/internal/supervisor"
	"github.com/tomtom215/coursepath/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("events_backend", cfg.Events.Backend).
		Bool("auth_enabled", cfg.Security.AuthEnabled()).
		Msg("Starting Coursepath")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS")
	}

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Coursepath exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential initialization
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	events, err := initEvents(cfg, storage.db)
	if err != nil {
		return err
	}
	defer events.Close()

	coord := initCoordinator(ctx, cfg, storage, events)

	rec := recommend.NewService(coord, storage.catalog, recommend.Config{
		CoursesPerStep: cfg.Recommend.CoursesPerStep,
		MaxStepsCap:    cfg.Recommend.MaxStepsCap,
		NextTopK:       cfg.Recommend.NextTopK,
	}, logging.WithComponent("recommend"))

	authMW, err := initAuth(cfg)
	if err != nil {
		return err
	}

	handler := api.NewHandler(coord, rec, storage.db, initClassifier(cfg), api.Defaults{
		Mining:      miningParams(cfg),
		SearchLimit: cfg.Recommend.SearchLimit,
	}, version)
	router := api.NewRouter(handler, authMW, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	interval := cfg.Mining.Interval
	if !cfg.Mining.ScheduleEnabled {
		interval = 0
	}
	tree.AddMiningService(services.NewRemineService(coord, services.RemineServiceConfig{
		Params:        miningParams(cfg),
		MineOnStartup: cfg.Mining.MineOnStartup,
		Interval:      interval,
	}, logging.WithComponent("remine")))

	if events.router != nil {
		tree.AddMessagingService(services.NewRouterService(events.router))
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// The tree returns once ctx is canceled and every layer has stopped.
	var serveErr error
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
		serveErr = err
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return serveErr
}

func miningParams(cfg *config.Config) mining.Params {
	return mining.Params{
		MinSupport: cfg.Mining.MinSupport,
		MaxLen:     cfg.Mining.MaxLen,
		TopK:       cfg.Mining.TopK,
	}
}

func initAuth(cfg *config.Config) (*auth.Middleware, error) {
	if !cfg.Security.AuthEnabled() {
		logging.Warn().Msg("JWT_SECRET not set; admin routes are open")
		return auth.NewMiddleware(nil), nil
	}
	mgr, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return nil, err
	}
	logging.Info().Msg("Admin routes require a bearer token")
	return auth.NewMiddleware(mgr), nil
}
