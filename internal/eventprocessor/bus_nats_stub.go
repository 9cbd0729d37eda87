// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

//go:build !nats

package eventprocessor

import (
	"github.com/ThreeDotsLabs/watermill"
)

// NewNATSBus returns ErrNATSNotAvailable. Build with -tags=nats to enable it.
func NewNATSBus(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	return nil, ErrNATSNotAvailable
}
