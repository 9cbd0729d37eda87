// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package main

import (
	"github.com/tomtom215/coursepath/internal/config"
	"github.com/tomtom215/coursepath/internal/logging"
	"github.com/tomtom215/coursepath/internal/predict"
)

// initClassifier returns the remote classifier wrapped so outages degrade to
// the fallback verdict, or the fallback alone when none is configured.
func initClassifier(cfg *config.Config) predict.Classifier {
	if !cfg.Classifier.Enabled || cfg.Classifier.URL == "" {
		logging.Info().Msg("Classifier disabled, predictions use the fallback verdict")
		return predict.Fallback{}
	}

	client := predict.NewClient(predict.ClientConfig{
		URL:       cfg.Classifier.URL,
		Timeout:   cfg.Classifier.Timeout,
		RateLimit: cfg.Classifier.RateLimit,
		Burst:     cfg.Classifier.Burst,
	})
	logging.Info().
		Str("url", cfg.Classifier.URL).
		Float64("rate_limit", cfg.Classifier.RateLimit).
		Msg("Classifier client initialized")
	return predict.WithFallback(client, logging.WithComponent("classifier"))
}
