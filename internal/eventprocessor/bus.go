// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// ErrNATSNotAvailable is returned by NATS constructors in binaries built
// without -tags nats.
var ErrNATSNotAvailable = errors.New("NATS support not available: build with -tags=nats")

// Config selects and configures the transport.
type Config struct {
	Backend        string
	NATSURL        string
	EmbeddedServer bool
	StoreDir       string
	DurableName    string
	CloseTimeout   time.Duration

	GraphPublishedTopic   string
	SequenceRecordedTopic string
}

// DefaultConfig returns an in-memory configuration with the default topics.
func DefaultConfig() Config {
	return Config{
		Backend:               BackendMemory,
		DurableName:           "coursepath",
		CloseTimeout:          10 * time.Second,
		GraphPublishedTopic:   TopicGraphPublished,
		SequenceRecordedTopic: TopicSequenceRecorded,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.DurableName == "" {
		c.DurableName = d.DurableName
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = d.CloseTimeout
	}
	if c.GraphPublishedTopic == "" {
		c.GraphPublishedTopic = d.GraphPublishedTopic
	}
	if c.SequenceRecordedTopic == "" {
		c.SequenceRecordedTopic = d.SequenceRecordedTopic
	}
}

// Bus is a connected publisher/subscriber pair.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Backend    string

	closers []func() error
}

// Close closes the subscriber, then the publisher, then any owned server.
func (b *Bus) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewMemoryBus returns an in-process bus. Published messages are delivered
// only to subscribers of the same process.
func NewMemoryBus(logger watermill.LoggerAdapter) *Bus {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, logger)
	return &Bus{
		Publisher:  pubSub,
		Subscriber: pubSub,
		Backend:    BackendMemory,
		closers:    []func() error{pubSub.Close},
	}
}

// NewBus builds the bus named by cfg.Backend.
func NewBus(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	cfg.applyDefaults()
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryBus(logger), nil
	case BackendNATS:
		return NewNATSBus(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
