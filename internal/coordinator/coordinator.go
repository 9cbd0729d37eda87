// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package coordinator runs mining jobs and publishes the resulting topic
// graph.
//
// State machine:
//
//	Idle --Remine--> Mining --graph built--> Idle            (new graph published)
//	                        \--error/empty--> Failed --> Idle (previous graph kept)
//
// Failed is transient: the failure is recorded in Status().LastError and the
// run metrics, then the coordinator returns to Idle so the next Remine can
// start. LastError stays set until that next run begins.
//
// At most one run is in flight. A Remine issued while Mining returns
// ErrAlreadyRunning immediately and does not disturb the running job.
//
// The published Snapshot is swapped by atomic pointer replacement. Readers
// load it once per request and see either the full previous graph or the
// full new one, never a mix.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/coursepath/internal/graph"
	"github.com/tomtom215/coursepath/internal/metrics"
	"github.com/tomtom215/coursepath/internal/mining"
)

// ErrAlreadyRunning is returned by Remine while another run is in flight.
var ErrAlreadyRunning = errors.New("mining already in progress")

// errNoPatterns is recorded as the failure of a run whose patterns were all
// below the support threshold.
var errNoPatterns = errors.New("no patterns met the support threshold")

// State is the coordinator lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateMining
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMining:
		return "mining"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SequenceSource supplies the sequences to mine.
type SequenceSource interface {
	AllSequences(ctx context.Context) ([]mining.Sequence, error)
}

// Snapshot is an immutable published graph plus the patterns it was built
// from.
type Snapshot struct {
	Graph       *graph.TopicGraph `json:"graph"`
	Patterns    []mining.Pattern  `json:"patterns"`
	Version     uint64            `json:"version"`
	RunID       string            `json:"run_id"`
	PublishedAt time.Time         `json:"published_at"`
}

// PublishHook is called after a snapshot has been published. Hook errors are
// logged and do not fail the run.
type PublishHook func(ctx context.Context, snap *Snapshot) error

// RunResult describes one completed Remine call.
type RunResult struct {
	RunID     string           `json:"run_id"`
	Patterns  []mining.Pattern `json:"patterns"`
	Sequences int              `json:"sequences"`
	Published bool             `json:"published"`
	Version   uint64           `json:"version"`
	Duration  time.Duration    `json:"-"`
}

// Status is a point-in-time view of the coordinator.
type Status struct {
	State        string    `json:"state"`
	GraphVersion uint64    `json:"graph_version"`
	LastRunID    string    `json:"last_run_id,omitempty"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	LastError    string    `json:"last_error,omitempty"`
	Sequences    int       `json:"sequences"`
	Patterns     int       `json:"patterns"`
	Nodes        int       `json:"nodes"`
	Edges        int       `json:"edges"`
	PublishedAt  time.Time `json:"published_at,omitempty"`
}

// Config controls mining runs.
type Config struct {
	// RunTimeout bounds a single run. Zero disables the bound.
	RunTimeout time.Duration
}

// Coordinator owns the published topic graph. It is safe for concurrent use.
type Coordinator struct {
	source SequenceSource
	cfg    Config
	logger zerolog.Logger

	runMu   sync.Mutex
	state   atomic.Int32
	current atomic.Pointer[Snapshot]
	version atomic.Uint64

	statusMu sync.RWMutex
	status   Status

	hookMu sync.RWMutex
	hooks  []PublishHook
}

// New creates a coordinator in the Idle state with no published graph.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(source SequenceSource, cfg Config, logger zerolog.Logger) *Coordinator {
	c := &Coordinator{
		source: source,
		cfg:    cfg,
		logger: logger.With().Str("component", "coordinator").Logger(),
	}
	c.setState(StateIdle)
	return c
}

// OnPublish registers a hook run after every successful publish.
func (c *Coordinator) OnPublish(h PublishHook) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.hooks = append(c.hooks, h)
}

// Graph returns the published graph, or nil before the first publish.
func (c *Coordinator) Graph() *graph.TopicGraph {
	if snap := c.current.Load(); snap != nil {
		return snap.Graph
	}
	return nil
}

// Snapshot returns the published snapshot, or nil.
func (c *Coordinator) Snapshot() *Snapshot {
	return c.current.Load()
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Restore installs a previously persisted snapshot, typically at startup.
// It is ignored when a graph with the same or a newer version is already
// published. Restore does not run publish hooks.
func (c *Coordinator) Restore(snap *Snapshot) bool {
	if snap == nil || snap.Graph == nil {
		return false
	}
	for {
		cur := c.current.Load()
		if cur != nil && cur.Version >= snap.Version {
			return false
		}
		if c.current.CompareAndSwap(cur, snap) {
			break
		}
	}
	c.bumpVersionTo(snap.Version)

	c.statusMu.Lock()
	c.status.Patterns = len(snap.Patterns)
	c.status.PublishedAt = snap.PublishedAt
	c.statusMu.Unlock()

	metrics.RecordGraphPublished(snap.Version, snap.Graph.NodeCount(), snap.Graph.EdgeCount())
	c.logger.Info().
		Uint64("version", snap.Version).
		Str("run_id", snap.RunID).
		Int("nodes", snap.Graph.NodeCount()).
		Msg("restored topic graph snapshot")
	return true
}

// Remine loads all sequences, mines them with params and publishes the
// resulting graph.
//
// Invalid params are rejected before the state changes. ErrEmptyInput (no
// sequences), load errors, timeouts and build errors leave the coordinator
// Failed with the previous graph still published. A run that yields no
// patterns is also Failed, but returns a RunResult with Published false and
// a nil error since an empty result is not an error.
func (c *Coordinator) Remine(ctx context.Context, params mining.Params) (*RunResult, error) {
	if err := params.Validate(); err != nil {
		metrics.RecordMiningRun("rejected", 0, 0, 0)
		return nil, err
	}

	if !c.runMu.TryLock() {
		metrics.RecordMiningRun("rejected", 0, 0, 0)
		return nil, ErrAlreadyRunning
	}
	defer c.runMu.Unlock()

	runID := uuid.New().String()
	start := time.Now()
	logger := c.logger.With().Str("run_id", runID).Logger()

	c.beginRun(runID, start)
	logger.Info().
		Float64("min_support", params.MinSupport).
		Int("max_len", params.MaxLen).
		Int("top_k", params.TopK).
		Msg("starting mining run")

	result, err := c.run(ctx, runID, params)
	duration := time.Since(start)
	if result != nil {
		result.Duration = duration
	}

	if err != nil || !result.Published {
		failure := err
		if failure == nil {
			failure = errNoPatterns
		}
		c.failRun(start, failure, result)
		logger.Warn().Err(failure).Dur("duration", duration).Msg("mining run failed, keeping previous graph")
		if result != nil {
			metrics.RecordMiningRun("failed", duration, result.Sequences, 0)
		} else {
			metrics.RecordMiningRun("failed", duration, 0, 0)
		}
		return result, err
	}

	snap := c.current.Load()
	c.finishRun(start, result, snap)
	metrics.RecordMiningRun("success", duration, result.Sequences, len(result.Patterns))
	logger.Info().
		Uint64("version", result.Version).
		Int("sequences", result.Sequences).
		Int("patterns", len(result.Patterns)).
		Int("nodes", snap.Graph.NodeCount()).
		Int("edges", snap.Graph.EdgeCount()).
		Dur("duration", duration).
		Msg("mining run complete, graph published")

	c.runHooks(ctx, snap, logger)
	return result, nil
}

// run performs load, mine, build and publish under the run timeout.
func (c *Coordinator) run(ctx context.Context, runID string, params mining.Params) (*RunResult, error) {
	runCtx := ctx
	if c.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.cfg.RunTimeout)
		defer cancel()
	}

	seqs, err := c.source.AllSequences(runCtx)
	if err != nil {
		return nil, fmt.Errorf("load sequences: %w", err)
	}

	result := &RunResult{RunID: runID, Sequences: len(seqs), Patterns: []mining.Pattern{}}

	patterns, err := mining.Mine(runCtx, seqs, params)
	if err != nil {
		return result, err
	}
	result.Patterns = patterns
	if len(patterns) == 0 {
		return result, nil
	}

	g, err := graph.Build(patterns)
	if err != nil {
		return result, fmt.Errorf("build graph: %w", err)
	}

	snap := &Snapshot{
		Graph:       g,
		Patterns:    patterns,
		Version:     c.version.Add(1),
		RunID:       runID,
		PublishedAt: time.Now().UTC(),
	}
	c.current.Store(snap)
	metrics.RecordGraphPublished(snap.Version, g.NodeCount(), g.EdgeCount())

	result.Published = true
	result.Version = snap.Version
	return result, nil
}

func (c *Coordinator) runHooks(ctx context.Context, snap *Snapshot, logger zerolog.Logger) {
	c.hookMu.RLock()
	hooks := append([]PublishHook(nil), c.hooks...)
	c.hookMu.RUnlock()

	for _, h := range hooks {
		if err := h(ctx, snap); err != nil {
			logger.Error().Err(err).Uint64("version", snap.Version).Msg("publish hook failed")
		}
	}
}

// bumpVersionTo raises the version counter to at least v.
func (c *Coordinator) bumpVersionTo(v uint64) {
	for {
		cur := c.version.Load()
		if cur >= v || c.version.CompareAndSwap(cur, v) {
			return
		}
	}
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
	metrics.SetCoordinatorState(float64(s))
}

func (c *Coordinator) beginRun(runID string, start time.Time) {
	c.setState(StateMining)
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status.LastRunID = runID
	c.status.StartedAt = start.UTC()
	c.status.FinishedAt = time.Time{}
	c.status.LastError = ""
}

func (c *Coordinator) failRun(start time.Time, err error, result *RunResult) {
	c.statusMu.Lock()
	c.status.FinishedAt = time.Now().UTC()
	c.status.DurationMS = time.Since(start).Milliseconds()
	c.status.LastError = err.Error()
	if result != nil {
		c.status.Sequences = result.Sequences
	}
	c.statusMu.Unlock()
	c.setState(StateFailed)
	c.setState(StateIdle)
}

func (c *Coordinator) finishRun(start time.Time, result *RunResult, snap *Snapshot) {
	c.statusMu.Lock()
	c.status.FinishedAt = time.Now().UTC()
	c.status.DurationMS = time.Since(start).Milliseconds()
	c.status.Sequences = result.Sequences
	c.status.Patterns = len(result.Patterns)
	c.status.PublishedAt = snap.PublishedAt
	c.statusMu.Unlock()
	c.setState(StateIdle)
}

// Status returns the current state and the figures of the last run and the
// published graph.
func (c *Coordinator) Status() Status {
	c.statusMu.RLock()
	st := c.status
	c.statusMu.RUnlock()

	st.State = c.State().String()
	if snap := c.current.Load(); snap != nil {
		st.GraphVersion = snap.Version
		st.Nodes = snap.Graph.NodeCount()
		st.Edges = snap.Graph.EdgeCount()
	}
	return st
}
