package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"astu-route-be/internal/dto"
	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/pkg/serverutils"
	"astu-route-be/internal/service"
	"astu-route-be/pkg/cache"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/osm"
	"astu-route-be/pkg/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueryService struct {
	lastQuery    *dto.QueryRequest
	lastLocation *dto.LocationUpdateRequest
}

func (f *fakeQueryService) Query(ctx context.Context, requestID string, req *dto.QueryRequest) *workflow.Result {
	f.lastQuery = req
	return &workflow.Result{
		RequestID:  requestID,
		Answer:     "Block-8 is near the main gate.",
		Intent:     workflow.IntentNavigation,
		Confidence: "high",
		Sources:    []string{},
	}
}

func (f *fakeQueryService) Stream(ctx context.Context, requestID string, req *dto.QueryRequest) <-chan workflow.Event {
	ch := make(chan workflow.Event, 3)
	ch <- workflow.Event{Type: workflow.EventReasoning, Payload: "Understanding your question...", Seq: 0}
	ch <- workflow.Event{Type: workflow.EventAnswer, Payload: &workflow.Result{Answer: "done"}, Seq: 1}
	ch <- workflow.Event{Type: workflow.EventDone, Seq: 2}
	close(ch)
	return ch
}

func (f *fakeQueryService) UpdateLocation(ctx context.Context, requestID string, req *dto.LocationUpdateRequest) *workflow.Result {
	f.lastLocation = req
	return &workflow.Result{Intent: workflow.IntentNavigation, EndName: req.Destination}
}

type fakeRouteService struct{}

func (fakeRouteService) Route(ctx context.Context, req *dto.RouteRequest) (*dto.RouteResponse, error) {
	return &dto.RouteResponse{
		Distance:  250,
		Duration:  3,
		Strategy:  "graph",
		Waypoints: [][2]float64{{*req.StartLat, *req.StartLng}, {*req.EndLat, *req.EndLng}},
	}, nil
}

func (fakeRouteService) StreamRoute(ctx context.Context, req *dto.RouteRequest, emit func(service.RouteEvent) error) error {
	for _, e := range []service.RouteEvent{
		{Type: service.RouteEventReasoning, Message: "Planning route..."},
		{Type: service.RouteEventRoute, Data: map[string]int{"duration": 3}},
		{Type: service.RouteEventDone},
	} {
		if err := emit(e); err != nil {
			return err
		}
	}
	return nil
}

func (fakeRouteService) Stats(ctx context.Context) osm.Stats {
	return osm.Stats{Loaded: true, Nodes: 42}
}

type fakeNearbyService struct{}

func (fakeNearbyService) FindNearby(ctx context.Context, center geo.Point, category string, radiusKm float64, limit int) ([]*entity.POI, error) {
	return nil, nil
}

func (fakeNearbyService) Search(ctx context.Context, req *dto.NearbyRequest) (*dto.NearbyResponse, error) {
	return &dto.NearbyResponse{Category: req.Category, RadiusKm: req.RadiusKm, Results: []dto.NearbyPOI{}}, nil
}

func (fakeNearbyService) Categories() *dto.CategoriesResponse {
	return &dto.CategoriesResponse{Categories: []string{"mosque", "pharmacy"}}
}

func newTestApp(t *testing.T, queries *fakeQueryService) *fiber.App {
	log := logger.NewTestLogger(t)
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")

	NewQueryController(queries, log).RegisterRoutes(api)
	NewRouteController(fakeRouteService{}, log).RegisterRoutes(api)
	NewNearbyController(fakeNearbyService{}).RegisterRoutes(api)
	NewLocationController(queries).RegisterRoutes(api)
	NewHealthController(service.NewHealthService(
		func(ctx context.Context) error { return errors.New("connection refused") },
		cache.NewMemoryCache(time.Minute, time.Minute),
		service.AIInfo{LLMReady: true, EmbeddingReady: true},
	)).RegisterRoutes(api)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestQueryEndpoints(t *testing.T) {
	queries := &fakeQueryService{}
	app := newTestApp(t, queries)

	for _, path := range []string{"/api/query", "/api/ai/query"} {
		status, body := do(t, app, "POST", path, `{"query":"Where is Block-8?","latitude":8.55,"longitude":39.29,"urgency":"exam"}`)
		require.Equal(t, 200, status, body)

		var res workflow.Result
		require.NoError(t, json.Unmarshal([]byte(body), &res))
		assert.Equal(t, workflow.IntentNavigation, res.Intent)
		assert.Equal(t, "exam", queries.lastQuery.Urgency)
		assert.Equal(t, 8.55, *queries.lastQuery.Latitude)
	}
}

func TestQueryValidation(t *testing.T) {
	app := newTestApp(t, &fakeQueryService{})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing query", `{"latitude":8.55}`, "VALIDATION_ERROR"},
		{"bad urgency", `{"query":"hi","urgency":"asap"}`, "VALIDATION_ERROR"},
		{"bad latitude", `{"query":"hi","latitude":120}`, "VALIDATION_ERROR"},
		{"malformed", `{"query":`, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, "POST", "/api/query", tt.body)
			assert.Equal(t, 400, status)
			var res serverutils.ErrorBody
			require.NoError(t, json.Unmarshal([]byte(body), &res))
			assert.Equal(t, tt.code, res.Code)
		})
	}
}

func TestQueryStreamWritesSSE(t *testing.T) {
	app := newTestApp(t, &fakeQueryService{})

	status, body := do(t, app, "POST", "/api/ai/query/stream", `{"query":"Where is the library?"}`)
	require.Equal(t, 200, status)

	reasoning := strings.Index(body, "event: reasoning\n")
	answer := strings.Index(body, "event: answer\n")
	done := strings.Index(body, "event: done\n")
	require.True(t, reasoning >= 0 && answer > reasoning && done > answer, body)
	assert.Contains(t, body, `"payload":"Understanding your question..."`)
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	app := newTestApp(t, &fakeQueryService{})

	status, _ := do(t, app, "GET", "/api/ai/ws", "")
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}

func TestRouteEndpoints(t *testing.T) {
	app := newTestApp(t, &fakeQueryService{})

	status, body := do(t, app, "GET", "/api/osm/route?start_lat=8.5569&start_lng=39.2911&end_lat=8.558&end_lng=39.2925", "")
	require.Equal(t, 200, status, body)
	assert.Contains(t, body, `"strategy":"graph"`)

	status, body = do(t, app, "POST", "/api/route", `{"start_lat":8.5569,"start_lng":39.2911,"end_lat":8.558,"end_lng":39.2925,"mode":"walking"}`)
	require.Equal(t, 200, status, body)

	status, body = do(t, app, "POST", "/api/route", `{"start_lat":8.5569,"start_lng":39.2911}`)
	assert.Equal(t, 400, status)
	assert.Contains(t, body, `"end_lat":"is required"`)

	status, body = do(t, app, "GET", "/api/osm/stats", "")
	require.Equal(t, 200, status)
	assert.Contains(t, body, `"nodes":42`)
}

func TestRouteStream(t *testing.T) {
	app := newTestApp(t, &fakeQueryService{})

	status, body := do(t, app, "POST", "/api/route/stream", `{"start_lat":8.5569,"start_lng":39.2911,"end_lat":8.558,"end_lng":39.2925}`)
	require.Equal(t, 200, status)
	assert.Contains(t, body, "event: reasoning\ndata: {\"type\":\"reasoning\",\"message\":\"Planning route...\"}\n\n")
	assert.Contains(t, body, "event: route\n")
	assert.True(t, strings.HasSuffix(body, "event: done\ndata: {\"type\":\"done\"}\n\n"), body)
}

func TestNearbyEndpoints(t *testing.T) {
	app := newTestApp(t, &fakeQueryService{})

	status, body := do(t, app, "GET", "/api/nearby?category=mosque&radius_km=2", "")
	require.Equal(t, 200, status, body)
	assert.Contains(t, body, `"category":"mosque"`)
	assert.Contains(t, body, `"radius_km":2`)

	status, _ = do(t, app, "GET", "/api/nearby?limit=500", "")
	assert.Equal(t, 400, status)

	status, body = do(t, app, "GET", "/api/nearby/categories", "")
	require.Equal(t, 200, status)
	assert.Contains(t, body, `"pharmacy"`)
}

func TestLocationUpdate(t *testing.T) {
	queries := &fakeQueryService{}
	app := newTestApp(t, queries)

	status, body := do(t, app, "POST", "/api/location/update", `{"latitude":8.5575,"longitude":39.29,"destination":"Library"}`)
	require.Equal(t, 200, status, body)
	assert.Equal(t, "Library", queries.lastLocation.Destination)
	assert.Contains(t, body, `"end_name":"Library"`)

	status, _ = do(t, app, "POST", "/api/location/update", `{"destination":"Library"}`)
	assert.Equal(t, 400, status)
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t, &fakeQueryService{})

	status, body := do(t, app, "GET", "/api/health", "")
	require.Equal(t, 200, status)
	assert.Contains(t, body, `"status":"healthy"`)

	status, body = do(t, app, "GET", "/api/health/db", "")
	assert.Equal(t, 503, status)
	assert.Contains(t, body, "connection refused")

	status, _ = do(t, app, "GET", "/api/health/cache", "")
	assert.Equal(t, 200, status)

	status, _ = do(t, app, "GET", "/api/health/ai", "")
	assert.Equal(t, 200, status)
}
