// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/coursepath/internal/coordinator"
	"github.com/tomtom215/coursepath/internal/metrics"
)

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// CircuitBreakerConfig configures the publish circuit breaker.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultCircuitBreakerConfig opens after five consecutive failures and
// probes again after 30 seconds.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "event-publisher",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// NewCircuitBreaker creates a breaker that reports its state to metrics.
func NewCircuitBreaker(cfg CircuitBreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[interface{}] {
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)
	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

// Publisher serializes domain events and publishes them through a circuit
// breaker.
type Publisher struct {
	publisher message.Publisher
	cb        *gobreaker.CircuitBreaker[interface{}]
	cfg       Config
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub. cb may be nil to publish without a breaker.
func NewPublisher(pub message.Publisher, cb *gobreaker.CircuitBreaker[interface{}], cfg Config, logger zerolog.Logger) *Publisher {
	cfg.applyDefaults()
	return &Publisher{
		publisher: pub,
		cb:        cb,
		cfg:       cfg,
		logger:    logger.With().Str("component", "event-publisher").Logger(),
	}
}

// Publish sends msg to topic.
func (p *Publisher) Publish(_ context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	var err error
	if p.cb != nil {
		_, err = p.cb.Execute(func() (interface{}, error) {
			return nil, p.publisher.Publish(topic, msg)
		})
	} else {
		err = p.publisher.Publish(topic, msg)
	}

	metrics.RecordEventPublished(topic, err)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// PublishGraph emits a graph.published event for snap. Its signature
// matches coordinator.PublishHook.
func (p *Publisher) PublishGraph(ctx context.Context, snap *coordinator.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidEvent)
	}
	ev := NewGraphPublished(snap)
	msg, err := newMessage(ev.EventID, ev)
	if err != nil {
		return err
	}
	msg.Metadata.Set("run_id", ev.RunID)
	msg.Metadata.Set("version", fmt.Sprintf("%d", ev.Version))

	if err := p.Publish(ctx, p.cfg.GraphPublishedTopic, msg); err != nil {
		return err
	}
	p.logger.Debug().Uint64("version", ev.Version).Str("event_id", ev.EventID).Msg("Graph published event sent")
	return nil
}

// PublishSequence emits a sequence.recorded event. An empty EventID is
// filled in.
func (p *Publisher) PublishSequence(ctx context.Context, ev *SequenceRecorded) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	msg, err := newMessage(ev.EventID, ev)
	if err != nil {
		return err
	}
	msg.Metadata.Set("learner_id", ev.LearnerID)
	return p.Publish(ctx, p.cfg.SequenceRecordedTopic, msg)
}

// State returns the breaker state, or "disabled" without a breaker.
func (p *Publisher) State() string {
	if p.cb == nil {
		return "disabled"
	}
	return p.cb.State().String()
}

// Close marks the publisher closed. The underlying transport is owned by
// the Bus and closed there.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func newMessage(id string, payload interface{}) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serialize event: %w", err)
	}
	msg := message.NewMessage(id, data)
	msg.Metadata.Set("content_type", "application/json")
	return msg, nil
}
