package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/dto"
	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/repository/mocks"
	"astu-route-be/internal/repository/specification"
	"astu-route-be/pkg/cache"
	"astu-route-be/pkg/events"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/llm"
	"astu-route-be/pkg/osm"
	"astu-route-be/pkg/routing"
	"astu-route-be/pkg/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

// --- fakes ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.QueryProcessed
}

func (p *recordingPublisher) PublishQueryProcessed(ctx context.Context, e events.QueryProcessed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) published() []events.QueryProcessed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.QueryProcessed(nil), p.events...)
}

type fakeRunner struct {
	inputs []workflow.Input
	result *workflow.QueryContext
}

func (r *fakeRunner) Run(ctx context.Context, in workflow.Input) *workflow.QueryContext {
	r.inputs = append(r.inputs, in)
	q := *r.result
	q.RequestID = in.RequestID
	return &q
}

func (r *fakeRunner) Stream(ctx context.Context, in workflow.Input) <-chan workflow.Event {
	r.inputs = append(r.inputs, in)
	q := *r.result
	q.RequestID = in.RequestID
	ch := make(chan workflow.Event, 3)
	ch <- workflow.Event{Type: workflow.EventReasoning, Payload: "Understanding your question..."}
	ch <- workflow.Event{Type: workflow.EventAnswer, Payload: q.Result()}
	ch <- workflow.Event{Type: workflow.EventDone, Seq: 2}
	close(ch)
	return ch
}

type countingRouter struct {
	calls int
	route func(req routing.Request) *entity.Route
	err   error
}

func (r *countingRouter) Route(ctx context.Context, req routing.Request) (*entity.Route, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.route(req), nil
}

func graphRoute(req routing.Request) *entity.Route {
	return &entity.Route{
		Waypoints:       []geo.Point{req.Start, req.End},
		DistanceMeters:  420,
		DurationSeconds: 300,
		DurationMinutes: 5,
		Instructions:    []string{"Start walking", "Arrive at destination"},
		Strategy:        entity.StrategyGraph,
		Mode:            routing.ModeWalking,
		Urgency:         req.Urgency,
	}
}

type fakeStats struct{}

func (fakeStats) Stats(ctx context.Context) osm.Stats {
	return osm.Stats{Loaded: true, Nodes: 12, Edges: 11}
}

type chunkLLM struct {
	chunks      []string
	err         error
	temperature float64
}

func (c *chunkLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (c *chunkLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (c *chunkLLM) ChatStream(ctx context.Context, history []llm.Message, onChunk func(string) error, options ...llm.Option) error {
	c.temperature = llm.ApplyOptions(options...).Temperature
	for _, chunk := range c.chunks {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return c.err
}

func routeRequest(urgency string) *dto.RouteRequest {
	return &dto.RouteRequest{
		StartLat: f64(8.5569), StartLng: f64(39.2911),
		EndLat: f64(8.5580), EndLng: f64(39.2925),
		Urgency: urgency,
	}
}

// --- query service ---

func TestQueryServicePublishesProcessedEvent(t *testing.T) {
	runner := &fakeRunner{result: &workflow.QueryContext{
		Intent:      workflow.IntentUniversityInfo,
		Confidence:  "medium",
		FinalAnswer: "The library opens at 8:00.",
		Error:       &workflow.ErrorInfo{Code: apperror.CodeAIService, Message: "LLM service unavailable"},
	}}
	pub := &recordingPublisher{}
	svc := NewQueryService(runner, pub, logger.NewTestLogger(t))

	res := svc.Query(context.Background(), "req-7", &dto.QueryRequest{Query: "When does the library open?"})

	assert.Equal(t, "req-7", res.RequestID)
	assert.Equal(t, "The library opens at 8:00.", res.Answer)
	require.Len(t, pub.published(), 1)
	got := pub.published()[0]
	assert.Equal(t, "req-7", got.RequestID)
	assert.Equal(t, "UNIVERSITY_INFO", got.Intent)
	assert.Equal(t, "AI_SERVICE_ERROR", got.ErrorCode)
	assert.Equal(t, "When does the library open?", got.Query)
}

func TestQueryServiceGeneratesRequestID(t *testing.T) {
	runner := &fakeRunner{result: &workflow.QueryContext{Intent: workflow.IntentNavigation}}
	svc := NewQueryService(runner, nil, logger.NewTestLogger(t))

	res := svc.Query(context.Background(), "", &dto.QueryRequest{Query: "Where is Block-8?"})
	assert.NotEmpty(t, res.RequestID)
}

func TestQueryServiceStreamForwardsEventsThenPublishes(t *testing.T) {
	runner := &fakeRunner{result: &workflow.QueryContext{Intent: workflow.IntentNavigation, Confidence: "high"}}
	pub := &recordingPublisher{}
	svc := NewQueryService(runner, pub, logger.NewTestLogger(t))

	var types []workflow.EventType
	for e := range svc.Stream(context.Background(), "req-9", &dto.QueryRequest{Query: "Where is Block-8?"}) {
		types = append(types, e.Type)
	}

	assert.Equal(t, []workflow.EventType{workflow.EventReasoning, workflow.EventAnswer, workflow.EventDone}, types)
	require.Len(t, pub.published(), 1)
	assert.Equal(t, "NAVIGATION", pub.published()[0].Intent)
}

func TestQueryServiceUpdateLocationForcesNavigation(t *testing.T) {
	runner := &fakeRunner{result: &workflow.QueryContext{Intent: workflow.IntentNavigation}}
	svc := NewQueryService(runner, nil, logger.NewTestLogger(t))

	svc.UpdateLocation(context.Background(), "req-1", &dto.LocationUpdateRequest{
		Latitude:    f64(8.5575),
		Longitude:   f64(39.2900),
		Destination: "Library",
	})

	require.Len(t, runner.inputs, 1)
	in := runner.inputs[0]
	assert.Equal(t, workflow.IntentNavigation, in.ForcedIntent)
	assert.Equal(t, "Navigate to Library", in.Query)
	assert.Equal(t, 8.5575, *in.Lat)
}

// --- query log consumer ---

type recordingMirror struct {
	mu    sync.Mutex
	types []string
}

func (m *recordingMirror) Publish(ctx context.Context, e events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types = append(m.types, e.EventType())
	return nil
}

func (m *recordingMirror) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.types)
}

func TestQueryLogConsumerPersistsAndMirrors(t *testing.T) {
	bus := events.NewBus("query.processed.test")
	defer bus.Close()

	repo := &mocks.QueryLogRepository{}
	stored := make(chan *entity.QueryLog, 1)
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored <- args.Get(1).(*entity.QueryLog)
	}).Return(nil)

	mirror := &recordingMirror{}
	consumer := NewQueryLogConsumer(bus, repo, mirror, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, bus.PublishQueryProcessed(ctx, events.QueryProcessed{
		RequestID:  "req-3",
		Query:      "nearest mosque",
		Intent:     "NEARBY_SERVICE",
		Confidence: "high",
		DurationMs: 120,
		OccurredAt: time.Now().UTC(),
	}))

	select {
	case row := <-stored:
		assert.Equal(t, "req-3", row.RequestId)
		assert.Equal(t, "NEARBY_SERVICE", row.Intent)
		assert.Equal(t, int64(120), row.DurationMs)
		assert.NotEqual(t, [16]byte{}, [16]byte(row.Id))
	case <-time.After(2 * time.Second):
		t.Fatal("query log was not stored")
	}
	assert.Eventually(t, func() bool { return mirror.count() == 1 }, time.Second, 10*time.Millisecond)
}

// --- route service ---

func TestRouteServiceCachesGraphRoutes(t *testing.T) {
	router := &countingRouter{route: graphRoute}
	svc := NewRouteService(router, fakeStats{}, nil, cache.NewMemoryCache(time.Minute, time.Minute), logger.NewTestLogger(t))

	first, err := svc.Route(context.Background(), routeRequest("exam"))
	require.NoError(t, err)
	second, err := svc.Route(context.Background(), routeRequest("exam"))
	require.NoError(t, err)

	assert.Equal(t, 1, router.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "graph", first.Strategy)
	assert.Equal(t, "exam", first.Urgency)
	assert.Equal(t, [2]float64{8.5569, 39.2911}, first.Waypoints[0])
	assert.InDelta(t, 0.42, first.DistanceKm, 1e-9)
}

func TestRouteServiceSkipsCacheForStraightLines(t *testing.T) {
	router := &countingRouter{route: func(req routing.Request) *entity.Route {
		r := graphRoute(req)
		r.Strategy = entity.StrategyStraightLine
		r.Direction = "northeast"
		return r
	}}
	svc := NewRouteService(router, fakeStats{}, nil, cache.NewMemoryCache(time.Minute, time.Minute), logger.NewTestLogger(t))

	for i := 0; i < 2; i++ {
		_, err := svc.Route(context.Background(), routeRequest(""))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, router.calls)
}

func collect(t *testing.T, svc IRouteService, req *dto.RouteRequest) []RouteEvent {
	t.Helper()
	var out []RouteEvent
	err := svc.StreamRoute(context.Background(), req, func(e RouteEvent) error {
		out = append(out, e)
		return nil
	})
	require.NoError(t, err)
	return out
}

func eventTypes(events []RouteEvent) []RouteEventType {
	types := make([]RouteEventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestStreamRouteWithExplanation(t *testing.T) {
	explainer := &chunkLLM{chunks: []string{"Head past ", "the library."}}
	svc := NewRouteService(&countingRouter{route: graphRoute}, fakeStats{}, explainer, nil, logger.NewTestLogger(t))

	got := collect(t, svc, routeRequest(""))

	assert.Equal(t, []RouteEventType{
		RouteEventReasoning, // planning
		RouteEventReasoning, // route found
		RouteEventReasoning, // strategy reason
		RouteEventRoute,
		RouteEventReasoning, // generating tips
		RouteEventExplanation,
		RouteEventExplanation,
		RouteEventDone,
	}, eventTypes(got))
	assert.Equal(t, "Route found: 420m, estimated 5 minutes", got[1].Message)
	assert.Equal(t, "the library.", got[6].Message)
	assert.Equal(t, 0.4, explainer.temperature)
}

func TestStreamRouteWithoutExplainerOrOnModelFailure(t *testing.T) {
	plain := NewRouteService(&countingRouter{route: graphRoute}, fakeStats{}, nil, nil, logger.NewTestLogger(t))
	got := collect(t, plain, routeRequest(""))
	assert.NotContains(t, eventTypes(got), RouteEventExplanation)
	assert.Equal(t, RouteEventDone, got[len(got)-1].Type)

	failing := NewRouteService(&countingRouter{route: graphRoute}, fakeStats{}, &chunkLLM{err: errors.New("quota")}, nil, logger.NewTestLogger(t))
	got = collect(t, failing, routeRequest(""))
	assert.Equal(t, RouteEventDone, got[len(got)-1].Type)
}

func TestStreamRouteReportsRoutingError(t *testing.T) {
	svc := NewRouteService(&countingRouter{err: apperror.Validation("invalid coordinates")}, fakeStats{}, nil, nil, logger.NewTestLogger(t))

	got := collect(t, svc, routeRequest(""))

	assert.Equal(t, []RouteEventType{RouteEventReasoning, RouteEventError, RouteEventDone}, eventTypes(got))
	assert.Equal(t, map[string]string{"code": "VALIDATION_ERROR"}, got[1].Data)
}

func TestStreamRouteStopsWhenClientLeaves(t *testing.T) {
	gone := errors.New("client gone")
	svc := NewRouteService(&countingRouter{route: graphRoute}, fakeStats{}, &chunkLLM{chunks: []string{"a", "b"}}, nil, logger.NewTestLogger(t))

	sent := 0
	err := svc.StreamRoute(context.Background(), routeRequest(""), func(e RouteEvent) error {
		if e.Type == RouteEventExplanation {
			return gone
		}
		sent++
		return nil
	})
	assert.ErrorIs(t, err, gone)
	assert.Equal(t, 5, sent)
}

// --- nearby service ---

func TestNearbySearchFiltersByCategory(t *testing.T) {
	repo := &mocks.POIRepository{}
	repo.On("FindNearby", mock.Anything, geo.NewPoint(8.54, 39.27), 5.0, 10,
		mocks.HasSpec(func(s specification.ServiceKeyword) bool { return s.Keyword == "mosque" }),
	).Return([]*entity.POI{
		{Id: 1, Name: "Adama Grand Mosque", Category: "mosque", DistanceKm: f64(0.8)},
	}, nil).Once()

	defaults := NearbyDefaults{Center: geo.NewPoint(8.5569, 39.2911), RadiusKm: 5, Limit: 10}
	svc := NewNearbyService(repo, cache.NewMemoryCache(time.Minute, time.Minute), defaults, logger.NewTestLogger(t))

	req := &dto.NearbyRequest{Category: "Mosque", Latitude: f64(8.54), Longitude: f64(39.27)}
	res, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "mosque", res.Category)
	assert.Equal(t, 0.8, *res.Results[0].DistanceKm)

	// second call is served from cache
	_, err = svc.Search(context.Background(), req)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestNearbySearchUsesDefaultsWithoutCategory(t *testing.T) {
	repo := &mocks.POIRepository{}
	repo.On("FindNearby", mock.Anything, geo.NewPoint(8.5569, 39.2911), 5.0, 10, mock.Anything).
		Return([]*entity.POI{}, nil)

	defaults := NearbyDefaults{Center: geo.NewPoint(8.5569, 39.2911), RadiusKm: 5, Limit: 10}
	svc := NewNearbyService(repo, nil, defaults, logger.NewTestLogger(t))

	res, err := svc.Search(context.Background(), &dto.NearbyRequest{})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.Empty(t, res.Results)
}

func TestNearbySearchRejectsUnknownCategoryAndWrapsStoreErrors(t *testing.T) {
	repo := &mocks.POIRepository{}
	repo.On("FindNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	svc := NewNearbyService(repo, nil, NearbyDefaults{RadiusKm: 5, Limit: 10}, logger.NewTestLogger(t))

	_, err := svc.Search(context.Background(), &dto.NearbyRequest{Category: "casino"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Search(context.Background(), &dto.NearbyRequest{Category: "pharmacy"})
	assert.ErrorIs(t, err, apperror.ErrDatabase)
}

// --- map service ---

func TestCampusMap(t *testing.T) {
	repo := &mocks.POIRepository{}
	repo.On("FindAll", mock.Anything, mocks.HasSpec[specification.OrderBy](nil)).Return([]*entity.POI{
		{Id: 1, Name: "Library", Category: "library", Latitude: 8.5575, Longitude: 39.2910},
		{Id: 2, Name: "Main Gate", Category: "gate", Latitude: 8.5569, Longitude: 39.2911},
	}, nil).Once()

	svc := NewMapService(repo, cache.NewMemoryCache(time.Minute, time.Minute), routing.DefaultRegion(), logger.NewTestLogger(t))

	res, err := svc.Campus(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.POIs, 2)
	assert.Equal(t, [2]float64{8.5570, 39.2915}, res.Center)
	assert.Len(t, res.Boundary, boundaryVertices+1)
	assert.Contains(t, res.Categories, "pharmacy")

	again, err := svc.Campus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.POIs, again.POIs)
	repo.AssertExpectations(t)
}

// --- health service ---

func TestHealthChecks(t *testing.T) {
	down := func(ctx context.Context) error { return errors.New("dial tcp: refused") }
	svc := NewHealthService(down, cache.NewMemoryCache(time.Minute, time.Minute), AIInfo{
		LLMProvider: "openai", LLMReady: true,
		EmbeddingProvider: "voyage", EmbeddingReady: false,
	})

	assert.Equal(t, StatusHealthy, svc.Health(context.Background()).Status)

	db := svc.Database(context.Background())
	assert.Equal(t, StatusUnhealthy, db.Status)
	assert.Equal(t, "dial tcp: refused", db.Detail)

	assert.Equal(t, StatusDegraded, svc.AI(context.Background()).Status)

	c := svc.Cache(context.Background())
	assert.Equal(t, StatusHealthy, c.Status)
	assert.Equal(t, "memory", c.Info["backend"])
}
