// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

//go:build nats

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	natsgo "github.com/nats-io/nats.go"
)

// NewNATSBus connects a JetStream publisher and durable subscriber to
// cfg.NATSURL. When cfg.EmbeddedServer is set, an in-process server is
// started first and owned by the returned bus.
func NewNATSBus(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	cfg.applyDefaults()
	bus := &Bus{Backend: BackendNATS}

	url := cfg.NATSURL
	if cfg.EmbeddedServer {
		srvCfg := DefaultServerConfig(cfg.StoreDir)
		srv, err := NewEmbeddedServer(&srvCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		url = srv.ClientURL()
		bus.closers = append(bus.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.CloseTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		})
	}
	if url == "" {
		_ = bus.Close()
		return nil, fmt.Errorf("NATS URL is required")
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.DurableName,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.DeliverAll(),
				natsgo.MaxDeliver(5),
			},
			DurablePrefix: cfg.DurableName,
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		_ = bus.Close()
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	bus.Publisher = pub
	bus.Subscriber = sub
	// Subscriber first, then publisher, then the embedded server.
	bus.closers = append([]func() error{sub.Close, pub.Close}, bus.closers...)
	return bus, nil
}
