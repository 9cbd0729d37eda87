// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package eventprocessor

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/coursepath/internal/coordinator"
	"github.com/tomtom215/coursepath/internal/graph"
	"github.com/tomtom215/coursepath/internal/mining"
)

func testSnapshot(t *testing.T) *coordinator.Snapshot {
	t.Helper()
	patterns := []mining.Pattern{
		{Sequence: []string{"Python", "Django"}, Support: 3, SupportRatio: 0.75},
		{Sequence: []string{"Django", "Docker"}, Support: 2, SupportRatio: 0.5},
	}
	g, err := graph.Build(patterns)
	require.NoError(t, err)
	return &coordinator.Snapshot{
		Graph:       g,
		Patterns:    patterns,
		Version:     3,
		RunID:       "run-abc",
		PublishedAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublishGraphDelivers(t *testing.T) {
	bus := NewMemoryBus(watermill.NopLogger{})
	defer func() { _ = bus.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := bus.Subscriber.Subscribe(ctx, TopicGraphPublished)
	require.NoError(t, err)

	pub := NewPublisher(bus.Publisher, nil, DefaultConfig(), zerolog.Nop())
	require.NoError(t, pub.PublishGraph(ctx, testSnapshot(t)))

	msg := receive(t, ch)
	var ev GraphPublished
	require.NoError(t, json.Unmarshal(msg.Payload, &ev))
	assert.Equal(t, uint64(3), ev.Version)
	assert.Equal(t, "run-abc", ev.RunID)
	assert.Equal(t, 3, ev.Nodes)
	assert.Equal(t, 2, ev.Edges)
	assert.Equal(t, 2, ev.Patterns)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, ev.EventID, msg.UUID)
	assert.Equal(t, "run-abc", msg.Metadata.Get("run_id"))
}

func TestPublishGraphAsCoordinatorHook(t *testing.T) {
	bus := NewMemoryBus(watermill.NopLogger{})
	defer func() { _ = bus.Close() }()
	pub := NewPublisher(bus.Publisher, nil, DefaultConfig(), zerolog.Nop())

	var hook coordinator.PublishHook = pub.PublishGraph
	assert.ErrorIs(t, hook(context.Background(), nil), ErrInvalidEvent)
}

type failingPublisher struct {
	mu    sync.Mutex
	calls int
}

func (f *failingPublisher) Publish(string, ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("transport down")
}

func (f *failingPublisher) Close() error { return nil }

func TestPublisherBreakerOpens(t *testing.T) {
	backend := &failingPublisher{}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test-publisher",
		MaxRequests:      1,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}, zerolog.Nop())
	pub := NewPublisher(backend, cb, DefaultConfig(), zerolog.Nop())
	snap := testSnapshot(t)

	for i := 0; i < 2; i++ {
		assert.Error(t, pub.PublishGraph(context.Background(), snap))
	}
	assert.Equal(t, "open", pub.State())

	err := pub.PublishGraph(context.Background(), snap)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, backend.calls)
}

func TestPublisherClosed(t *testing.T) {
	pub := NewPublisher(&failingPublisher{}, nil, DefaultConfig(), zerolog.Nop())
	require.NoError(t, pub.Close())
	assert.ErrorIs(t, pub.PublishGraph(context.Background(), testSnapshot(t)), ErrPublisherClosed)
	assert.Equal(t, "disabled", pub.State())
}

func TestPublishSequenceRejectsEmpty(t *testing.T) {
	backend := &failingPublisher{}
	pub := NewPublisher(backend, nil, DefaultConfig(), zerolog.Nop())
	err := pub.PublishSequence(context.Background(), &SequenceRecorded{LearnerID: "u1"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
	assert.Equal(t, 0, backend.calls)
}

func TestDecodeSequenceRecorded(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		source  string
	}{
		{"valid", `{"event_id":"e1","learner_id":"u1","source":"lms","topics":["A","B"]}`, false, "lms"},
		{"default source", `{"learner_id":"u1","topics":["A"]}`, false, "event"},
		{"no topics", `{"learner_id":"u1","topics":[]}`, true, ""},
		{"blank topic", `{"learner_id":"u1","topics":["A"," "]}`, true, ""},
		{"not json", `{`, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeSequenceRecorded([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.source, ev.Source)
		})
	}
}

type recordingStore struct {
	mu   sync.Mutex
	seqs [][]string
	err  error
}

func (s *recordingStore) AppendSequence(_ context.Context, _, _ string, topics []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.seqs = append(s.seqs, topics)
	return int64(len(s.seqs)), nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seqs)
}

func TestSequenceHandler(t *testing.T) {
	t.Run("stores valid event", func(t *testing.T) {
		store := &recordingStore{}
		h := SequenceHandler(TopicSequenceRecorded, store, nil, zerolog.Nop())
		err := h(message.NewMessage("m1", []byte(`{"learner_id":"u1","topics":["A","B"]}`)))
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"A", "B"}}, store.seqs)
	})

	t.Run("acks invalid payload", func(t *testing.T) {
		store := &recordingStore{}
		h := SequenceHandler(TopicSequenceRecorded, store, nil, zerolog.Nop())
		assert.NoError(t, h(message.NewMessage("m2", []byte(`{"topics":[]}`))))
		assert.Equal(t, 0, store.count())
	})

	t.Run("returns storage errors", func(t *testing.T) {
		store := &recordingStore{err: errors.New("disk full")}
		h := SequenceHandler(TopicSequenceRecorded, store, nil, zerolog.Nop())
		assert.Error(t, h(message.NewMessage("m3", []byte(`{"topics":["A"]}`))))
	})

	t.Run("skips redelivered event", func(t *testing.T) {
		store := &recordingStore{}
		h := SequenceHandler(TopicSequenceRecorded, store, NewDedupCache(), zerolog.Nop())
		payload := []byte(`{"event_id":"ev-1","topics":["A","B"]}`)
		require.NoError(t, h(message.NewMessage("m4", payload)))
		require.NoError(t, h(message.NewMessage("m5", payload)))
		require.NoError(t, h(message.NewMessage("m6", []byte(`{"event_id":"ev-2","topics":["C"]}`))))
		assert.Equal(t, 2, store.count())
	})

	t.Run("retries after storage failure", func(t *testing.T) {
		store := &recordingStore{err: errors.New("disk full")}
		h := SequenceHandler(TopicSequenceRecorded, store, NewDedupCache(), zerolog.Nop())
		payload := []byte(`{"event_id":"ev-9","topics":["A"]}`)
		require.Error(t, h(message.NewMessage("m7", payload)))

		store.mu.Lock()
		store.err = nil
		store.mu.Unlock()
		require.NoError(t, h(message.NewMessage("m8", payload)))
		assert.Equal(t, 1, store.count())
	})
}

func TestSequenceConsumerEndToEnd(t *testing.T) {
	bus := NewMemoryBus(watermill.NopLogger{})
	defer func() { _ = bus.Close() }()

	cfg := DefaultRouterConfig()
	cfg.RetryMaxRetries = 0
	router, err := NewRouter(cfg, watermill.NopLogger{})
	require.NoError(t, err)

	store := &recordingStore{}
	require.NoError(t, RegisterSequenceConsumer(router, bus.Subscriber, DefaultConfig(), store, zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()

	select {
	case <-router.Running():
	case <-time.After(2 * time.Second):
		t.Fatal("router did not start")
	}

	pub := NewPublisher(bus.Publisher, nil, DefaultConfig(), zerolog.Nop())
	require.NoError(t, pub.PublishSequence(ctx, &SequenceRecorded{LearnerID: "u1", Topics: []string{"Go", "gRPC"}}))
	require.NoError(t, pub.PublishSequence(ctx, &SequenceRecorded{LearnerID: "u2", Topics: []string{"Go"}}))

	assert.Eventually(t, func() bool { return store.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestRegisterSequenceConsumerRequiresStore(t *testing.T) {
	router, err := NewRouter(DefaultRouterConfig(), nil)
	require.NoError(t, err)
	bus := NewMemoryBus(watermill.NopLogger{})
	defer func() { _ = bus.Close() }()
	assert.Error(t, RegisterSequenceConsumer(router, bus.Subscriber, DefaultConfig(), nil, zerolog.Nop()))
}

func TestNewBus(t *testing.T) {
	bus, err := NewBus(Config{}, watermill.NopLogger{})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, bus.Backend)
	assert.NoError(t, bus.Close())

	_, err = NewBus(Config{Backend: "kafka"}, watermill.NopLogger{})
	assert.Error(t, err)
}

func TestZerologAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	adapter := NewZerologAdapter(logger).With(watermill.LogFields{"handler": "h1"})

	adapter.Error("handler failed", errors.New("boom"), watermill.LogFields{"attempt": 2})
	adapter.Trace("dropped", nil)

	out := buf.String()
	assert.Contains(t, out, `"message":"handler failed"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"handler":"h1"`)
	assert.Contains(t, out, `"component":"watermill"`)
	assert.NotContains(t, out, "dropped")
}
