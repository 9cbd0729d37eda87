// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package services

import (
	"context"
	"fmt"
)

// EventRouter is implemented by *eventprocessor.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterService runs the Watermill event router under supervision.
type RouterService struct {
	router EventRouter
	name   string
}

// NewRouterService wraps router.
func NewRouterService(router EventRouter) *RouterService {
	return &RouterService{router: router, name: "event-router"}
}

// Serve implements suture.Service. A router that stops on its own is
// reported as an error so the supervisor restarts it.
func (s *RouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("event router stopped: %w", err)
	}
	return fmt.Errorf("event router stopped unexpectedly")
}

// String returns the service name for logging.
func (s *RouterService) String() string {
	return s.name
}
