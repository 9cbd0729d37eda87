// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package client is a typed HTTP client for the Coursepath API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/coursepath/internal/api"
	"github.com/tomtom215/coursepath/internal/coordinator"
	"github.com/tomtom215/coursepath/internal/recommend"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client calls the Coursepath API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mine starts a mining run and waits for its result.
func (c *Client) Mine(ctx context.Context, req api.MineRequest) (*api.MineResponse, error) {
	var out api.MineResponse
	return &out, c.do(ctx, http.MethodPost, "/sequential/mine", nil, req, &out)
}

// Next lists courses that follow courseID. topK <= 0 uses the server default.
func (c *Client) Next(ctx context.Context, courseID string, topK int) (*api.NextResponse, error) {
	q := url.Values{"course_id": {courseID}}
	if topK > 0 {
		q.Set("top_k", strconv.Itoa(topK))
	}
	var out api.NextResponse
	return &out, c.do(ctx, http.MethodGet, "/sequential/next", q, nil, &out)
}

// Status returns the mining coordinator status.
func (c *Client) Status(ctx context.Context) (*coordinator.Status, error) {
	var out coordinator.Status
	return &out, c.do(ctx, http.MethodGet, "/sequential/status", nil, nil, &out)
}

// AppendSequence stores a learner sequence.
func (c *Client) AppendSequence(ctx context.Context, req api.SequenceRequest) (*api.SequenceResponse, error) {
	var out api.SequenceResponse
	return &out, c.do(ctx, http.MethodPost, "/sequences", nil, req, &out)
}

// Recommend requests a learning path.
func (c *Client) Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error) {
	var out recommend.Response
	return &out, c.do(ctx, http.MethodPost, "/recommend", nil, req, &out)
}

// Topics lists the topics of the published graph.
func (c *Client) Topics(ctx context.Context) (*api.TopicsResponse, error) {
	var out api.TopicsResponse
	return &out, c.do(ctx, http.MethodGet, "/topics", nil, nil, &out)
}

// Search finds courses by title keyword. limit <= 0 uses the server
// default.
func (c *Client) Search(ctx context.Context, keyword string, limit int) (*api.SearchResponse, error) {
	q := url.Values{"keyword": {keyword}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out api.SearchResponse
	return &out, c.do(ctx, http.MethodGet, "/search", q, nil, &out)
}

// Stats returns store totals.
func (c *Client) Stats(ctx context.Context) (*api.StatsResponse, error) {
	var out api.StatsResponse
	return &out, c.do(ctx, http.MethodGet, "/stats", nil, nil, &out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env api.ErrorResponse
		if json.Unmarshal(data, &env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
