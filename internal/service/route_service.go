package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/dto"
	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/pkg/cache"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/llm"
	"astu-route-be/pkg/osm"
	"astu-route-be/pkg/routing"
)

const (
	routeCacheTTL          = 10 * time.Minute
	explanationTemperature = 0.4
)

const explanationSystemPrompt = `You are ASTU Route AI, a campus-first navigation assistant for Adama Science and Technology University.
Use simple language suitable for students and visitors. Never invent buildings or roads.`

const explanationUserPrompt = `Explain this campus route in a friendly, concise way:
From: %s
To: %s
Distance: %.0f meters
Duration: %d minutes
Mode: %s
Urgency: %s
Steps:
%s

Provide helpful tips for navigating the ASTU campus. Keep it under 100 words.`

type RouteEventType string

const (
	RouteEventReasoning   RouteEventType = "reasoning"
	RouteEventRoute       RouteEventType = "route"
	RouteEventExplanation RouteEventType = "explanation"
	RouteEventError       RouteEventType = "error"
	RouteEventDone        RouteEventType = "done"
)

type RouteEvent struct {
	Type    RouteEventType `json:"type"`
	Message string         `json:"message,omitempty"`
	Data    interface{}    `json:"data,omitempty"`
}

// GraphStats reports on the loaded walking network. *osm.Provider implements it.
type GraphStats interface {
	Stats(ctx context.Context) osm.Stats
}

type Router interface {
	Route(ctx context.Context, req routing.Request) (*entity.Route, error)
}

type IRouteService interface {
	Route(ctx context.Context, req *dto.RouteRequest) (*dto.RouteResponse, error)
	// StreamRoute reports progress through emit. An emit error aborts the stream.
	StreamRoute(ctx context.Context, req *dto.RouteRequest, emit func(RouteEvent) error) error
	Stats(ctx context.Context) osm.Stats
}

type routeService struct {
	router    Router
	graph     GraphStats
	explainer llm.StreamingProvider
	cache     cache.Cache
	logger    logger.ILogger
}

// NewRouteService builds the direct routing API. explainer may be nil, in
// which case streamed routes carry no explanation.
func NewRouteService(
	router Router,
	graph GraphStats,
	explainer llm.StreamingProvider,
	c cache.Cache,
	log logger.ILogger,
) IRouteService {
	return &routeService{
		router:    router,
		graph:     graph,
		explainer: explainer,
		cache:     c,
		logger:    log,
	}
}

func toRoutingRequest(req *dto.RouteRequest) routing.Request {
	return routing.Request{
		Start:   geo.NewPoint(*req.StartLat, *req.StartLng),
		End:     geo.NewPoint(*req.EndLat, *req.EndLng),
		Mode:    req.Mode,
		Urgency: geo.ParseUrgency(req.Urgency),
	}
}

func routeCacheKey(r routing.Request) string {
	return cache.Key("route",
		fmt.Sprintf("%.5f,%.5f", r.Start.Lat, r.Start.Lng),
		fmt.Sprintf("%.5f,%.5f", r.End.Lat, r.End.Lng),
		r.Mode,
		string(r.Urgency),
	)
}

func (s *routeService) Route(ctx context.Context, req *dto.RouteRequest) (*dto.RouteResponse, error) {
	rr := toRoutingRequest(req)
	key := routeCacheKey(rr)

	var cached dto.RouteResponse
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	route, err := s.router.Route(ctx, rr)
	if err != nil {
		return nil, err
	}
	res := toRouteResponse(route)

	// Straight lines are not cached so the next call retries the graph.
	if s.cache != nil && route.Strategy != entity.StrategyStraightLine {
		s.cache.Set(ctx, key, res, routeCacheTTL)
	}
	return res, nil
}

func (s *routeService) StreamRoute(ctx context.Context, req *dto.RouteRequest, emit func(RouteEvent) error) error {
	rr := toRoutingRequest(req)

	if err := emit(RouteEvent{
		Type:    RouteEventReasoning,
		Message: fmt.Sprintf("Planning route from %s to %s...", rr.Start, rr.End),
	}); err != nil {
		return err
	}

	route, err := s.router.Route(ctx, rr)
	if err != nil {
		appErr := apperror.From(err)
		if emitErr := emit(RouteEvent{
			Type:    RouteEventError,
			Message: appErr.Message,
			Data:    map[string]string{"code": string(appErr.Code)},
		}); emitErr != nil {
			return emitErr
		}
		return emit(RouteEvent{Type: RouteEventDone})
	}

	reasoning := []string{
		fmt.Sprintf("Route found: %.0fm, estimated %d minutes", route.DistanceMeters, route.DurationMinutes),
	}
	reasoning = append(reasoning, routing.Reasons(route)...)
	for _, line := range reasoning {
		if err := emit(RouteEvent{Type: RouteEventReasoning, Message: line}); err != nil {
			return err
		}
	}

	if err := emit(RouteEvent{Type: RouteEventRoute, Data: toRouteResponse(route)}); err != nil {
		return err
	}

	if s.explainer != nil {
		if err := emit(RouteEvent{Type: RouteEventReasoning, Message: "Generating helpful navigation tips..."}); err != nil {
			return err
		}
		if err := s.explain(ctx, route, emit); err != nil {
			return err
		}
	}

	return emit(RouteEvent{Type: RouteEventDone})
}

// explain streams the model's explanation. Model failures are logged and
// swallowed; only emit errors are returned.
func (s *routeService) explain(ctx context.Context, route *entity.Route, emit func(RouteEvent) error) error {
	start, end := route.Waypoints[0], route.Waypoints[len(route.Waypoints)-1]
	prompt := fmt.Sprintf(explanationUserPrompt,
		start, end,
		route.DistanceMeters,
		route.DurationMinutes,
		route.Mode,
		route.Urgency,
		"- "+strings.Join(route.Instructions, "\n- "),
	)

	var emitErr error
	err := s.explainer.ChatStream(ctx, []llm.Message{
		{Role: "system", Content: explanationSystemPrompt},
		{Role: "user", Content: prompt},
	}, func(chunk string) error {
		emitErr = emit(RouteEvent{Type: RouteEventExplanation, Message: chunk})
		return emitErr
	}, llm.WithTemperature(explanationTemperature))

	if emitErr != nil {
		return emitErr
	}
	if err != nil {
		s.logger.Warn("ROUTING", "Route explanation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

func (s *routeService) Stats(ctx context.Context) osm.Stats {
	return s.graph.Stats(ctx)
}

func toRouteResponse(route *entity.Route) *dto.RouteResponse {
	waypoints := make([][2]float64, 0, len(route.Waypoints))
	for _, p := range route.Waypoints {
		waypoints = append(waypoints, p.Pair())
	}
	return &dto.RouteResponse{
		Distance:        route.DistanceMeters,
		DistanceKm:      route.DistanceKm(),
		Duration:        route.DurationMinutes,
		DurationSeconds: route.DurationSeconds,
		Waypoints:       waypoints,
		Instructions:    route.Instructions,
		Strategy:        string(route.Strategy),
		Hybrid:          route.Hybrid,
		InGraphMeters:   route.InGraphMeters,
		ExternalMeters:  route.ExternalMeters,
		Direction:       route.Direction,
		Mode:            route.Mode,
		Urgency:         string(route.Urgency),
		Reasons:         routing.Reasons(route),
	}
}
