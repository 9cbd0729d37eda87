// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/coursepath/internal/auth"
	"github.com/tomtom215/coursepath/internal/catalog"
	"github.com/tomtom215/coursepath/internal/config"
	"github.com/tomtom215/coursepath/internal/coordinator"
	"github.com/tomtom215/coursepath/internal/database"
	"github.com/tomtom215/coursepath/internal/graph"
	"github.com/tomtom215/coursepath/internal/mining"
	"github.com/tomtom215/coursepath/internal/predict"
	"github.com/tomtom215/coursepath/internal/recommend"
)

// memStore is an in-memory Store that also feeds the coordinator.
type memStore struct {
	mu          sync.Mutex
	seqs        []mining.Sequence
	predictions map[int64]database.Prediction
	nextID      int64
	courses     int
	pingErr     error
}

func newMemStore() *memStore {
	return &memStore{predictions: make(map[int64]database.Prediction)}
}

func (s *memStore) Ping(context.Context) error { return s.pingErr }

func (s *memStore) AppendSequence(_ context.Context, _, _ string, topics []string) (int64, error) {
	if len(topics) == 0 {
		return 0, database.ErrInvalidSequence
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs = append(s.seqs, append(mining.Sequence(nil), topics...))
	return int64(len(s.seqs)), nil
}

func (s *memStore) AllSequences(context.Context) ([]mining.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mining.Sequence(nil), s.seqs...), nil
}

func (s *memStore) CountSequences(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seqs), nil
}

func (s *memStore) CountCourses(context.Context) (int, error) { return s.courses, nil }

func (s *memStore) InsertPrediction(_ context.Context, f predict.Features, res predict.Result) (*database.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := database.Prediction{
		ID:          s.nextID,
		Features:    f,
		Prediction:  res.Label,
		Probability: res.Probability,
		CreatedAt:   time.Now().UTC(),
	}
	s.predictions[p.ID] = p
	return &p, nil
}

func (s *memStore) GetPrediction(_ context.Context, id int64) (*database.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.predictions[id]
	if !ok {
		return nil, database.ErrPredictionNotFound
	}
	return &p, nil
}

func (s *memStore) ListPredictions(_ context.Context, skip, limit int) ([]database.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]database.Prediction, 0, len(s.predictions))
	for _, p := range s.predictions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if skip >= len(out) {
		return []database.Prediction{}, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) DeletePrediction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.predictions[id]; !ok {
		return database.ErrPredictionNotFound
	}
	delete(s.predictions, id)
	return nil
}

func (s *memStore) DeleteAllPredictions(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.predictions))
	s.predictions = make(map[int64]database.Prediction)
	return n, nil
}

func (s *memStore) CountPredictions(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.predictions), nil
}

var testCourses = []catalog.Course{
	{ID: "c-a", Title: "Intro to Alpha", Topics: []string{"A"}, Rating: 4.5, Students: 100},
	{ID: "c-b", Title: "Beta Basics", Topics: []string{"B"}, Rating: 4.7, Students: 300, IsBestseller: true},
	{ID: "c-c", Title: "Gamma Deep Dive", Topics: []string{"C"}, Rating: 4.1, Students: 50},
}

type testEnv struct {
	store   *memStore
	coord   *coordinator.Coordinator
	handler http.Handler
}

func newTestEnv(t *testing.T, authMW *auth.Middleware) *testEnv {
	t.Helper()
	store := newMemStore()
	store.courses = len(testCourses)

	coord := coordinator.New(store, coordinator.Config{RunTimeout: 5 * time.Second}, zerolog.Nop())
	rec := recommend.NewService(coord, catalog.NewMemory(testCourses), recommend.DefaultConfig(), zerolog.Nop())

	h := NewHandler(coord, rec, store, nil, Defaults{
		Mining:      mining.Params{MinSupport: 0.5, MaxLen: 2, TopK: 100},
		SearchLimit: 10,
	}, "test")

	chiCfg := DefaultChiMiddlewareConfig()
	chiCfg.RateLimitDisabled = true
	router := NewRouter(h, authMW, NewChiMiddleware(chiCfg))

	return &testEnv{store: store, coord: coord, handler: router.Setup()}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		var data []byte
		switch b := body.(type) {
		case string:
			data = []byte(b)
		default:
			var err error
			data, err = json.Marshal(b)
			require.NoError(t, err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) seedAndMine(t *testing.T) {
	t.Helper()
	for _, seq := range [][]string{{"A", "B", "C"}, {"A", "B", "D"}, {"A", "B", "C"}} {
		rr := e.do(t, http.MethodPost, "/sequences", SequenceRequest{LearnerID: "l", Topics: seq})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	rr := e.do(t, http.MethodPost, "/sequential/mine", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	resp := decode[ErrorResponse](t, rr)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, code, resp.Error.Code)
	assert.False(t, resp.Metadata.Timestamp.IsZero())
}

func TestRootAndLiveness(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	root := decode[RootResponse](t, rr)
	assert.Equal(t, "active", root.Status)
	assert.Equal(t, "test", root.Version)

	rr = env.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestReadinessFollowsGraph(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "not published", decode[ReadinessResponse](t, rr).Checks["graph"])

	env.seedAndMine(t)
	rr = env.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	ready := decode[ReadinessResponse](t, rr)
	assert.True(t, ready.Ready)
	assert.Equal(t, uint64(1), ready.GraphVersion)
}

func TestMineEmptyStore(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodPost, "/sequential/mine", nil)
	assertError(t, rr, http.StatusUnprocessableEntity, ErrCodeEmptyInput)
}

func TestMine(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedAndMine(t)

	rr := env.do(t, http.MethodPost, "/sequential/mine", map[string]interface{}{"min_support": 0.6, "max_len": 2})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[MineResponse](t, rr)
	assert.True(t, resp.Published)
	assert.Equal(t, uint64(2), resp.Version)
	assert.Equal(t, 3, resp.Sequences)
	for _, p := range resp.Patterns {
		assert.GreaterOrEqual(t, p.SupportRatio, 0.6)
	}
}

func TestMineInvalidParameters(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"zero support", `{"min_support": 0}`, ErrCodeInvalidParameter},
		{"support above one", `{"min_support": 1.5}`, ErrCodeInvalidParameter},
		{"zero max_len", `{"max_len": 0}`, ErrCodeInvalidParameter},
		{"zero top_k", `{"top_k": 0}`, ErrCodeInvalidParameter},
		{"unknown field", `{"support": 0.5}`, ErrCodeBadRequest},
		{"malformed", `{"min_support":`, ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/sequential/mine", tt.body)
			assertError(t, rr, http.StatusBadRequest, tt.code)
		})
	}
}

// busyMiner always reports a run in progress.
type busyMiner struct{}

func (busyMiner) Remine(context.Context, mining.Params) (*coordinator.RunResult, error) {
	return nil, coordinator.ErrAlreadyRunning
}
func (busyMiner) Status() coordinator.Status { return coordinator.Status{State: "mining"} }
func (busyMiner) Graph() *graph.TopicGraph  { return nil }

func TestMineAlreadyRunning(t *testing.T) {
	h := NewHandler(busyMiner{}, nil, newMemStore(), nil, Defaults{
		Mining: mining.Params{MinSupport: 0.5, MaxLen: 2, TopK: 10},
	}, "test")
	rr := httptest.NewRecorder()
	h.Mine(rr, httptest.NewRequest(http.MethodPost, "/sequential/mine", nil))
	assertError(t, rr, http.StatusConflict, ErrCodeMiningInProgress)
}

func TestRecommendBeforeMining(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodPost, "/recommend", recommend.Request{TargetTopic: "A"})
	assertError(t, rr, http.StatusServiceUnavailable, ErrCodeGraphNotReady)
}

func TestRecommend(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedAndMine(t)

	rr := env.do(t, http.MethodPost, "/recommend", `{"target_topic": "A"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[recommend.Response](t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, "Found learning path.", resp.Message)
	assert.Equal(t, []string{"A", "B", "C"}, resp.Path)
	assert.Equal(t, 3, resp.TotalSteps)
	require.Len(t, resp.Steps, 3)
	assert.Equal(t, "c-b", resp.Steps[1].Courses[0].ID)

	rr = env.do(t, http.MethodPost, "/recommend", `{"target_topic": "A", "max_steps": 1}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"A", "B"}, decode[recommend.Response](t, rr).Path)
}

func TestRecommendUnknownTopic(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedAndMine(t)

	rr := env.do(t, http.MethodPost, "/recommend", `{"target_topic": "Z"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[recommend.Response](t, rr)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Path)
	assert.NotNil(t, resp.Steps)
	assert.Contains(t, resp.Message, "'Z'")
}

func TestRecommendValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedAndMine(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing target", `{}`, http.StatusBadRequest, ErrCodeValidation},
		{"blank target", `{"target_topic": "   "}`, http.StatusBadRequest, ErrCodeValidation},
		{"zero max_steps", `{"target_topic": "A", "max_steps": 0}`, http.StatusBadRequest, ErrCodeValidation},
		{"max_steps above cap", `{"target_topic": "A", "max_steps": 99}`, http.StatusBadRequest, ErrCodeInvalidParameter},
		{"empty body", ``, http.StatusBadRequest, ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/recommend", tt.body)
			assertError(t, rr, tt.status, tt.code)
		})
	}
}

func TestTopics(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/topics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	before := decode[TopicsResponse](t, rr)
	assert.Equal(t, 0, before.Count)
	assert.NotNil(t, before.Topics)

	env.seedAndMine(t)
	rr = env.do(t, http.MethodGet, "/topics/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	after := decode[TopicsResponse](t, rr)
	assert.Equal(t, []string{"A", "B", "C"}, after.Topics)
	assert.Equal(t, 3, after.Count)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/search?keyword=beta", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[SearchResponse](t, rr)
	assert.Equal(t, "beta", resp.Keyword)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "c-b", resp.Courses[0].ID)

	assertError(t, env.do(t, http.MethodGet, "/search", nil), http.StatusBadRequest, ErrCodeValidation)
	assertError(t, env.do(t, http.MethodGet, "/search?keyword=a&limit=0", nil), http.StatusBadRequest, ErrCodeInvalidParameter)
	assertError(t, env.do(t, http.MethodGet, "/search?keyword=a&limit=x", nil), http.StatusBadRequest, ErrCodeInvalidParameter)
}

func TestNext(t *testing.T) {
	env := newTestEnv(t, nil)

	assertError(t, env.do(t, http.MethodGet, "/sequential/next?course_id=c-a", nil),
		http.StatusServiceUnavailable, ErrCodeGraphNotReady)

	env.seedAndMine(t)

	rr := env.do(t, http.MethodGet, "/sequential/next?course_id=c-a&top_k=3", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[NextResponse](t, rr)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "c-b", resp.Suggestions[0].CourseID)
	assert.Equal(t, "B", resp.Suggestions[0].Topic)
	assert.InDelta(t, 1.0, resp.Suggestions[0].Confidence, 1e-9)

	assertError(t, env.do(t, http.MethodGet, "/sequential/next?course_id=missing", nil), http.StatusNotFound, ErrCodeNotFound)
	assertError(t, env.do(t, http.MethodGet, "/sequential/next", nil), http.StatusBadRequest, ErrCodeValidation)
	for _, q := range []string{"top_k=-1", "top_k=0", "top_k=51", "top_k=", "top_k=x"} {
		assertError(t, env.do(t, http.MethodGet, "/sequential/next?course_id=c-a&"+q, nil), http.StatusBadRequest, ErrCodeInvalidParameter)
	}

	rr = env.do(t, http.MethodGet, "/sequential/next?course_id=c-a", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Len(t, decode[NextResponse](t, rr).Suggestions, 1)
}

func TestSequentialStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedAndMine(t)

	rr := env.do(t, http.MethodGet, "/sequential/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	st := decode[coordinator.Status](t, rr)
	assert.Equal(t, "idle", st.State)
	assert.Equal(t, uint64(1), st.GraphVersion)
	assert.NotEmpty(t, st.LastRunID)
}

func TestAppendSequenceValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	assertError(t, env.do(t, http.MethodPost, "/sequences", `{"topics": []}`), http.StatusBadRequest, ErrCodeValidation)
	assertError(t, env.do(t, http.MethodPost, "/sequences", `{"topics": ["A", " "]}`), http.StatusBadRequest, ErrCodeValidation)
}

func TestPredictionLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	course := predict.RawCourse{
		Price: 100, Rating: 4.5, NumStudents: 1000, NumReviews: 100,
		DurationMinutes: 120, Discount: 10, Lectures: 20, Sections: 5,
	}
	rr := env.do(t, http.MethodPost, "/predict", PredictRequest{Course: &course})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[database.Prediction](t, rr)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, predict.LabelNotBestseller, created.Prediction)
	assert.InDelta(t, 0.1, created.Discount, 1e-9)

	features := predict.EngineerFeatures(course)
	rr = env.do(t, http.MethodPost, "/predict", PredictRequest{Features: &features})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodGet, "/predictions?limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[PredictionsResponse](t, rr)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, int64(2), list.Predictions[0].ID)

	rr = env.do(t, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[StatsResponse](t, rr)
	assert.Equal(t, 2, stats.TotalPredictions)
	assert.Equal(t, 3, stats.TotalCourses)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/predictions/1", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/predictions/1", nil).Code)
	assertError(t, env.do(t, http.MethodGet, "/predictions/1", nil), http.StatusNotFound, ErrCodeNotFound)
	assertError(t, env.do(t, http.MethodDelete, "/predictions/1", nil), http.StatusNotFound, ErrCodeNotFound)
	assertError(t, env.do(t, http.MethodGet, "/predictions/abc", nil), http.StatusBadRequest, ErrCodeInvalidParameter)

	rr = env.do(t, http.MethodDelete, "/predictions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(1), decode[DeleteResponse](t, rr).Deleted)
}

func TestPredictValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	assertError(t, env.do(t, http.MethodPost, "/predict", `{}`), http.StatusBadRequest, ErrCodeValidation)
	assertError(t, env.do(t, http.MethodPost, "/predict", `{"features": {"rating": 7}}`), http.StatusBadRequest, ErrCodeValidation)
	assertError(t, env.do(t, http.MethodPost, "/predict", `{"course": {"duration": 0}}`), http.StatusBadRequest, ErrCodeValidation)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	mgr, err := auth.NewJWTManager(&config.SecurityConfig{JWTSecret: strings.Repeat("s", 32), TokenTTL: time.Hour})
	require.NoError(t, err)
	env := newTestEnv(t, auth.NewMiddleware(mgr))

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/sequential/mine", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/sequences", `{"topics":["A"]}`).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodDelete, "/predictions", nil).Code)

	viewer, err := mgr.GenerateToken("bob", "viewer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden,
		env.do(t, http.MethodPost, "/sequences", `{"topics":["A"]}`, "Authorization", "Bearer "+viewer).Code)

	admin, err := mgr.GenerateToken("alice", auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated,
		env.do(t, http.MethodPost, "/sequences", `{"topics":["A","B"]}`, "Authorization", "Bearer "+admin).Code)
	assert.Equal(t, http.StatusOK,
		env.do(t, http.MethodPost, "/sequential/mine", `{"min_support": 1}`, "Authorization", "Bearer "+admin).Code)

	// Read routes stay open.
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/topics", nil).Code)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, nil)
	assertError(t, env.do(t, http.MethodGet, "/nope", nil), http.StatusNotFound, ErrCodeNotFound)
	assertError(t, env.do(t, http.MethodGet, "/recommend", nil), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/topics", nil)

	rr := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "api_requests_total")
}
