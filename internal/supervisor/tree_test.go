// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// countingService counts Serve calls and fails the first failN of them.
type countingService struct {
	name   string
	calls  atomic.Int32
	failN  int32
	served chan struct{}
}

func newCountingService(name string, failN int32) *countingService {
	return &countingService{name: name, failN: failN, served: make(chan struct{}, 16)}
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.calls.Add(1)
	s.served <- struct{}{}
	if n <= s.failN {
		return errors.New("transient failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Fatal("root supervisor should not be nil")
		}

		def := DefaultTreeConfig()
		if tree.config != def {
			t.Errorf("config = %+v, want %+v", tree.config, def)
		}
	})

	t.Run("nil logger falls back to slog default", func(t *testing.T) {
		tree, err := NewSupervisorTree(nil, TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.logger == nil {
			t.Error("logger should not be nil")
		}
	})
}

func TestSupervisorTreeRunsAllLayers(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	mining := newCountingService("remine", 0)
	messaging := newCountingService("router", 0)
	api := newCountingService("http", 0)
	tree.AddMiningService(mining)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	for _, svc := range []*countingService{mining, messaging, api} {
		select {
		case <-svc.served:
		case <-time.After(2 * time.Second):
			t.Fatalf("service %s did not start", svc.name)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}
}

func TestSupervisorTreeRestartsFailedService(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  2 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	svc := newCountingService("flaky", 2)
	tree.AddMiningService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	deadline := time.After(5 * time.Second)
	for svc.calls.Load() < 3 {
		select {
		case <-svc.served:
		case <-deadline:
			t.Fatalf("service restarted %d times, want 3 starts", svc.calls.Load())
		}
	}
}
