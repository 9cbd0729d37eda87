// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package api

import (
	"context"
	"time"

	"github.com/tomtom215/coursepath/internal/catalog"
	"github.com/tomtom215/coursepath/internal/coordinator"
	"github.com/tomtom215/coursepath/internal/database"
	"github.com/tomtom215/coursepath/internal/graph"
	"github.com/tomtom215/coursepath/internal/mining"
	"github.com/tomtom215/coursepath/internal/predict"
	"github.com/tomtom215/coursepath/internal/recommend"
)

// Miner is implemented by *coordinator.Coordinator.
type Miner interface {
	Remine(ctx context.Context, params mining.Params) (*coordinator.RunResult, error)
	Status() coordinator.Status
	Graph() *graph.TopicGraph
}

// Recommender is implemented by *recommend.Service.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Next(ctx context.Context, courseID string, k int) ([]recommend.Suggestion, error)
	Topics() []string
	Search(ctx context.Context, keyword string, limit int) ([]catalog.Course, error)
}

// Store is the persistence the handlers need. *database.DB implements it.
type Store interface {
	Ping(ctx context.Context) error

	AppendSequence(ctx context.Context, learnerID, source string, topics []string) (int64, error)
	CountSequences(ctx context.Context) (int, error)
	CountCourses(ctx context.Context) (int, error)

	InsertPrediction(ctx context.Context, f predict.Features, res predict.Result) (*database.Prediction, error)
	GetPrediction(ctx context.Context, id int64) (*database.Prediction, error)
	ListPredictions(ctx context.Context, skip, limit int) ([]database.Prediction, error)
	DeletePrediction(ctx context.Context, id int64) error
	DeleteAllPredictions(ctx context.Context) (int64, error)
	CountPredictions(ctx context.Context) (int, error)
}

// Defaults carries the configured request defaults.
type Defaults struct {
	Mining      mining.Params
	SearchLimit int
}

// Handler holds the dependencies of every endpoint.
type Handler struct {
	miner       Miner
	recommender Recommender
	store       Store
	classifier  predict.Classifier
	defaults    Defaults
	version     string
	startTime   time.Time
}

// NewHandler creates a Handler. A nil classifier uses predict.Fallback.
func NewHandler(miner Miner, rec Recommender, store Store, classifier predict.Classifier, defaults Defaults, version string) *Handler {
	if classifier == nil {
		classifier = predict.Fallback{}
	}
	if defaults.SearchLimit <= 0 {
		defaults.SearchLimit = 10
	}
	return &Handler{
		miner:       miner,
		recommender: rec,
		store:       store,
		classifier:  classifier,
		defaults:    defaults,
		version:     version,
		startTime:   time.Now(),
	}
}
