// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package predict

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/coursepath/internal/logging"
	"github.com/tomtom215/coursepath/internal/metrics"
)

// ClientConfig configures the HTTP classifier client.
type ClientConfig struct {
	URL       string
	Timeout   time.Duration
	RateLimit float64 // requests per second, <= 0 disables limiting
	Burst     int

	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client calls a remote classifier over HTTP. Requests are the JSON
// encoding of Features; responses are {"prediction": label, "probability": p}.
// Calls are rate limited and run behind a circuit breaker.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[Result]
}

var _ Classifier = (*Client)(nil)

type wireResponse struct {
	Prediction  string  `json:"prediction"`
	Probability float64 `json:"probability"`
}

// NewClient creates a classifier client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	const cbName = "classifier"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[Result](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// Bad input is the caller's fault, not the classifier's.
			var se *statusError
			if errors.As(err, &se) && se.code >= 400 && se.code < 500 {
				return true
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			switch to {
			case gobreaker.StateClosed:
				metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
			case gobreaker.StateHalfOpen:
				metrics.CircuitBreakerState.WithLabelValues(name).Set(1)
			case gobreaker.StateOpen:
				metrics.CircuitBreakerState.WithLabelValues(name).Set(2)
			}
		},
	})

	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		cb:         cb,
	}
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("classifier returned status %d: %s", e.code, e.body)
}

// Predict implements Classifier. Transport failures, 5xx responses and
// breaker rejections are reported as ErrUnavailable.
func (c *Client) Predict(ctx context.Context, f Features) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordClassifierCall("rate_limited")
		return Result{}, fmt.Errorf("classifier rate limit: %w", err)
	}

	res, err := c.cb.Execute(func() (Result, error) {
		return c.do(ctx, f)
	})
	if err == nil {
		metrics.RecordClassifierCall("success")
		return res, nil
	}

	var se *statusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordClassifierCall("rejected")
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.As(err, &se) && se.code < 500:
		metrics.RecordClassifierCall("failure")
		return Result{}, err
	default:
		metrics.RecordClassifierCall("failure")
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

func (c *Client) do(ctx context.Context, f Features) (Result, error) {
	body, err := json.Marshal(f)
	if err != nil {
		return Result{}, fmt.Errorf("encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("classifier request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, &statusError{code: resp.StatusCode, body: string(msg)}
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Result{}, fmt.Errorf("decode classifier response: %w", err)
	}

	class, err := ClassOf(wire.Prediction)
	if err != nil {
		return Result{}, fmt.Errorf("classifier response: %w", err)
	}
	if wire.Probability < 0 || wire.Probability > 1 {
		return Result{}, fmt.Errorf("classifier response: probability %v out of range", wire.Probability)
	}

	return Result{Class: class, Label: wire.Prediction, Probability: wire.Probability}, nil
}
