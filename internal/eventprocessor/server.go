// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

//go:build nats

package eventprocessor

import (
	"context"
	"fmt"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog"

	"github.com/tomtom215/coursepath/internal/logging"
)

// EmbeddedServer is an in-process NATS server with JetStream, for
// single-instance deployments without an external broker. Its log lines
// go to the global zerolog logger tagged component=nats-server.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// NewEmbeddedServer starts the server and waits up to cfg.ReadyTimeout for
// it to accept connections.
func NewEmbeddedServer(cfg *ServerConfig) (*EmbeddedServer, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName:         "coursepath-events",
		Host:               cfg.Host,
		Port:               cfg.Port,
		JetStream:          true,
		StoreDir:           cfg.StoreDir,
		JetStreamMaxMemory: cfg.JetStreamMaxMem,
		JetStreamMaxStore:  cfg.JetStreamMaxStore,
		MaxPayload:         1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	ns.SetLogger(natsLogger{log: logging.WithComponent("nats-server")}, cfg.Debug, false)

	go ns.Start()

	timeout := cfg.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultServerConfig("").ReadyTimeout
	}
	if !ns.ReadyForConnections(timeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within %s", timeout)
	}

	return &EmbeddedServer{server: ns, clientURL: ns.ClientURL()}, nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Shutdown stops the server and waits for it unless ctx is already done.
func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	s.server.Shutdown()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.server.WaitForShutdown()
		return nil
	}
}

// IsRunning reports whether the server is up.
func (s *EmbeddedServer) IsRunning() bool {
	return s.server.Running()
}

// JetStreamEnabled reports whether JetStream started.
func (s *EmbeddedServer) JetStreamEnabled() bool {
	return s.server.JetStreamEnabled()
}

// natsLogger implements server.Logger on zerolog.
type natsLogger struct {
	log zerolog.Logger
}

func (l natsLogger) Noticef(format string, v ...interface{}) { l.log.Info().Msgf(format, v...) }
func (l natsLogger) Warnf(format string, v ...interface{})   { l.log.Warn().Msgf(format, v...) }
func (l natsLogger) Fatalf(format string, v ...interface{})  { l.log.Error().Msgf(format, v...) }
func (l natsLogger) Errorf(format string, v ...interface{})  { l.log.Error().Msgf(format, v...) }
func (l natsLogger) Debugf(format string, v ...interface{})  { l.log.Debug().Msgf(format, v...) }
func (l natsLogger) Tracef(format string, v ...interface{})  { l.log.Trace().Msgf(format, v...) }
