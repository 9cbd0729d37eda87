// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/coursepath/internal/coordinator"
	"github.com/tomtom215/coursepath/internal/mining"
)

// Reminer is implemented by *coordinator.Coordinator.
type Reminer interface {
	Remine(ctx context.Context, params mining.Params) (*coordinator.RunResult, error)
}

// RemineServiceConfig controls scheduled mining.
type RemineServiceConfig struct {
	Params mining.Params

	// MineOnStartup runs once as soon as the service starts.
	MineOnStartup bool

	// Interval between scheduled runs. Zero or negative disables the
	// schedule; the service then only honors MineOnStartup.
	Interval time.Duration
}

// RemineService re-mines the sequence store on a schedule.
//
// Run failures never stop the service: the coordinator keeps the previous
// graph and the next tick tries again. A tick that finds a run already in
// progress (for example one started through POST /sequential/mine) is
// skipped.
type RemineService struct {
	reminer Reminer
	config  RemineServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewRemineService creates the scheduled mining service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRemineService(reminer Reminer, cfg RemineServiceConfig, logger zerolog.Logger) *RemineService {
	return &RemineService{
		reminer: reminer,
		config:  cfg,
		logger:  logger.With().Str("service", "remine").Logger(),
		name:    "remine-scheduler",
	}
}

// Serve implements suture.Service.
func (s *RemineService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("mine_on_startup", s.config.MineOnStartup).
		Dur("interval", s.config.Interval).
		Msg("remine scheduler starting")

	if s.config.MineOnStartup {
		s.runOnce(ctx, "startup")
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("remine scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx, "schedule")
		}
	}
}

func (s *RemineService) runOnce(ctx context.Context, trigger string) {
	result, err := s.reminer.Remine(ctx, s.config.Params)
	switch {
	case errors.Is(err, coordinator.ErrAlreadyRunning):
		s.logger.Info().Str("trigger", trigger).Msg("mining run already in progress, skipping")
	case err != nil:
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("scheduled mining run failed")
	case !result.Published:
		s.logger.Warn().Str("trigger", trigger).Str("run_id", result.RunID).
			Msg("scheduled mining run produced no patterns")
	default:
		s.logger.Info().Str("trigger", trigger).Str("run_id", result.RunID).
			Uint64("version", result.Version).Int("patterns", len(result.Patterns)).
			Msg("scheduled mining run published graph")
	}
}

// String returns the service name for logging.
func (s *RemineService) String() string {
	return s.name
}
