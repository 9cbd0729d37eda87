// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/coursepath/internal/cache"
	"github.com/tomtom215/coursepath/internal/metrics"
)

// Redelivered events are recognised by EventID for this long.
const (
	dedupWindow = 10 * time.Minute
	dedupSize   = 10000
)

// SequenceAppender stores a learner sequence. *database.DB implements it.
type SequenceAppender interface {
	AppendSequence(ctx context.Context, learnerID, source string, topics []string) (int64, error)
}

// NewDedupCache returns the event-ID cache used by SequenceHandler.
func NewDedupCache() *cache.LRU[string, struct{}] {
	return cache.NewLRU[string, struct{}](dedupSize, dedupWindow)
}

// SequenceHandler returns a Watermill handler that appends each
// sequence.recorded message to store. Malformed payloads are logged and
// acknowledged; storage errors are returned so the router retries them.
// When seen is non-nil, an event whose EventID was already stored is
// acknowledged without being appended again.
func SequenceHandler(topic string, store SequenceAppender, seen *cache.LRU[string, struct{}], logger zerolog.Logger) message.NoPublishHandlerFunc {
	logger = logger.With().Str("component", "sequence-consumer").Logger()
	return func(msg *message.Message) error {
		ev, err := DecodeSequenceRecorded(msg.Payload)
		if err != nil {
			logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping invalid sequence event")
			metrics.RecordEventConsumed(topic, "invalid")
			return nil
		}

		if seen != nil && ev.EventID != "" {
			if _, dup := seen.Get(ev.EventID); dup {
				metrics.RecordEventConsumed(topic, "duplicate")
				logger.Debug().Str("event_id", ev.EventID).Msg("Skipping redelivered sequence event")
				return nil
			}
		}

		id, err := store.AppendSequence(msg.Context(), ev.LearnerID, ev.Source, ev.Topics)
		if err != nil {
			metrics.RecordEventConsumed(topic, "error")
			return fmt.Errorf("append sequence from event %s: %w", ev.EventID, err)
		}

		if seen != nil && ev.EventID != "" {
			seen.Add(ev.EventID, struct{}{})
		}
		metrics.RecordEventConsumed(topic, "stored")
		logger.Debug().Int64("sequence_id", id).Str("event_id", ev.EventID).Int("topics", len(ev.Topics)).
			Msg("Sequence recorded")
		return nil
	}
}

// RegisterSequenceConsumer adds the sequence consumer to r.
func RegisterSequenceConsumer(r *Router, sub message.Subscriber, cfg Config, store SequenceAppender, logger zerolog.Logger) error {
	if store == nil {
		return errors.New("sequence store is required")
	}
	cfg.applyDefaults()
	r.AddConsumerHandler("sequence-recorded", cfg.SequenceRecordedTopic, sub,
		SequenceHandler(cfg.SequenceRecordedTopic, store, NewDedupCache(), logger))
	return nil
}
