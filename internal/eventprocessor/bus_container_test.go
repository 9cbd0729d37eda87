// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

//go:build integration && nats

package eventprocessor

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/coursepath/internal/testinfra"
)

func TestSequenceConsumerAgainstNATSContainer(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	nc, err := testinfra.NewNATSContainer(ctx, testinfra.WithStartTimeout(60*time.Second))
	require.NoError(t, err)
	defer testinfra.CleanupContainer(t, context.Background(), nc.Container)

	cfg := DefaultConfig()
	cfg.Backend = BackendNATS
	cfg.NATSURL = nc.URL
	bus, err := NewBus(cfg, watermill.NopLogger{})
	require.NoError(t, err)
	defer func() { _ = bus.Close() }()

	router, err := NewRouter(DefaultRouterConfig(), watermill.NopLogger{})
	require.NoError(t, err)
	store := &recordingStore{}
	require.NoError(t, RegisterSequenceConsumer(router, bus.Subscriber, cfg, store, zerolog.Nop()))

	go func() { _ = router.Run(ctx) }()
	select {
	case <-router.Running():
	case <-time.After(10 * time.Second):
		t.Fatal("router did not start")
	}

	pub := NewPublisher(bus.Publisher, NewCircuitBreaker(DefaultCircuitBreakerConfig(), zerolog.Nop()), cfg, zerolog.Nop())
	for _, topics := range [][]string{{"Go", "gRPC"}, {"Go", "Kubernetes"}, {"Python"}} {
		require.NoError(t, pub.PublishSequence(ctx, &SequenceRecorded{LearnerID: "u1", Topics: topics}))
	}

	assert.Eventually(t, func() bool { return store.count() == 3 }, 15*time.Second, 50*time.Millisecond)
	assert.Equal(t, "closed", pub.State())
}
