// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thejerf/suture/v4"
)

type fakeRouter struct {
	runErr error
	block  bool
}

func (r *fakeRouter) Run(ctx context.Context) error {
	if r.block {
		<-ctx.Done()
		return nil
	}
	return r.runErr
}

func (r *fakeRouter) Close() error { return nil }

func TestRouterService_Interface(t *testing.T) {
	var _ suture.Service = (*RouterService)(nil)
}

func TestRouterService_StopsOnCancel(t *testing.T) {
	svc := NewRouterService(&fakeRouter{block: true})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Serve(ctx), context.DeadlineExceeded)
}

func TestRouterService_RunFailure(t *testing.T) {
	boom := errors.New("subscribe failed")
	svc := NewRouterService(&fakeRouter{runErr: boom})
	assert.ErrorIs(t, svc.Serve(context.Background()), boom)
}

func TestRouterService_UnexpectedStop(t *testing.T) {
	svc := NewRouterService(&fakeRouter{})
	assert.Error(t, svc.Serve(context.Background()))
	assert.Equal(t, "event-router", svc.String())
}
