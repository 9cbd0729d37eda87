// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/coursepath/internal/coordinator"
	"github.com/tomtom215/coursepath/internal/mining"
)

type fakeReminer struct {
	mu     sync.Mutex
	calls  []mining.Params
	errs   []error
	called chan struct{}
}

func newFakeReminer(errs ...error) *fakeReminer {
	return &fakeReminer{errs: errs, called: make(chan struct{}, 16)}
}

func (f *fakeReminer) Remine(_ context.Context, p mining.Params) (*coordinator.RunResult, error) {
	f.mu.Lock()
	idx := len(f.calls)
	f.calls = append(f.calls, p)
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	f.mu.Unlock()

	f.called <- struct{}{}
	if err != nil {
		return nil, err
	}
	return &coordinator.RunResult{RunID: "run", Published: true, Version: uint64(idx + 1)}, nil
}

func (f *fakeReminer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func waitCalls(t *testing.T, f *fakeReminer, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.called:
		case <-time.After(2 * time.Second):
			t.Fatalf("waited for %d remine calls, got %d", n, f.count())
		}
	}
}

func TestRemineService_Interface(t *testing.T) {
	var _ suture.Service = (*RemineService)(nil)
}

func TestRemineService_MineOnStartupOnly(t *testing.T) {
	f := newFakeReminer()
	params := mining.Params{MinSupport: 2, MaxLen: 3, TopK: 10}
	svc := NewRemineService(f, RemineServiceConfig{Params: params, MineOnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	waitCalls(t, f, 1)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, 1, f.count())
	assert.Equal(t, params, f.calls[0])
}

func TestRemineService_NoStartupNoInterval(t *testing.T) {
	f := newFakeReminer()
	svc := NewRemineService(f, RemineServiceConfig{}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Serve(ctx), context.DeadlineExceeded)
	assert.Equal(t, 0, f.count())
}

func TestRemineService_ScheduleSurvivesErrors(t *testing.T) {
	f := newFakeReminer(coordinator.ErrAlreadyRunning, errors.New("boom"))
	svc := NewRemineService(f, RemineServiceConfig{
		Params:   mining.Params{MinSupport: 1, MaxLen: 2, TopK: 5},
		Interval: 10 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	waitCalls(t, f, 3)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.GreaterOrEqual(t, f.count(), 3)
}

func TestRemineService_String(t *testing.T) {
	svc := NewRemineService(newFakeReminer(), RemineServiceConfig{}, zerolog.Nop())
	assert.Equal(t, "remine-scheduler", svc.String())
}
