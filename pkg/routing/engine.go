// Package routing computes walking routes over the campus network. A route
// is always produced: on-graph when both ends are in the region, hybrid when
// the destination lies outside it, and a straight line when the graph cannot
// help.
package routing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/metrics"
	"astu-route-be/pkg/osm"
)

const (
	ModeWalking = "walking"

	stepStart   = "Start from your current location"
	stepArrived = "You have arrived at your destination"

	// metersPerNode is the rough spacing used to describe long paths.
	metersPerNode = 20
)

var errNoExit = errors.New("routing: no exit node on the campus ring")

type GraphProvider interface {
	Network(ctx context.Context) (*osm.Network, error)
}

type Region struct {
	Center        geo.Point
	RadiusMeters  float64
	MarginMeters  float64
	BoundaryRatio float64
}

func DefaultRegion() Region {
	return Region{
		Center:        geo.NewPoint(8.5570, 39.2915),
		RadiusMeters:  1000,
		MarginMeters:  200,
		BoundaryRatio: 0.85,
	}
}

// Contains reports whether p is close enough to the center to route on-graph.
func (r Region) Contains(p geo.Point) bool {
	return geo.Haversine(r.Center, p) <= r.RadiusMeters+r.MarginMeters
}

func (r Region) ringMeters() float64 {
	return r.RadiusMeters * r.BoundaryRatio
}

type Request struct {
	Start   geo.Point
	End     geo.Point
	Mode    string
	Urgency geo.Urgency
}

type Engine struct {
	graphs       GraphProvider
	region       Region
	walkingSpeed float64
	logger       logger.ILogger
}

// NewEngine builds an engine. graphs may be nil, in which case every route is
// a straight line.
func NewEngine(graphs GraphProvider, region Region, walkingSpeed float64, log logger.ILogger) *Engine {
	if walkingSpeed <= 0 {
		walkingSpeed = geo.WalkingSpeed
	}
	return &Engine{graphs: graphs, region: region, walkingSpeed: walkingSpeed, logger: log}
}

func (e *Engine) Region() Region {
	return e.region
}

// Route computes a route between two points. It only fails for coordinates
// that are out of range; graph trouble degrades to a straight line.
func (e *Engine) Route(ctx context.Context, req Request) (*entity.Route, error) {
	if !req.Start.Valid() || !req.End.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("invalid coordinates %s -> %s", req.Start, req.End))
	}
	if req.Mode == "" {
		req.Mode = ModeWalking
	}
	if req.Urgency == "" {
		req.Urgency = geo.UrgencyNormal
	}

	var (
		route *entity.Route
		err   error
	)
	if geo.Haversine(req.Start, req.End) == 0 {
		route = coincident(req)
	} else {
		route, err = e.routeOnGraph(ctx, req)
	}
	if err != nil {
		e.logger.Warn("ROUTING", "Graph routing unavailable, using straight line", map[string]interface{}{
			"start": req.Start.String(),
			"end":   req.End.String(),
			"error": err.Error(),
		})
		route = e.straightLine(req)
	}

	e.finish(route, req)
	metrics.RoutesComputed.WithLabelValues(string(route.Strategy)).Inc()
	e.logger.Info("ROUTING", "Route computed", map[string]interface{}{
		"strategy": string(route.Strategy),
		"meters":   math.Round(route.DistanceMeters),
		"minutes":  route.DurationMinutes,
	})
	return route, nil
}

func (e *Engine) routeOnGraph(ctx context.Context, req Request) (*entity.Route, error) {
	if e.graphs == nil {
		return nil, errors.New("routing: no graph configured")
	}
	network, err := e.graphs.Network(ctx)
	if err != nil {
		return nil, err
	}
	if network == nil || network.NodeCount() == 0 {
		return nil, errors.New("routing: graph is empty")
	}

	if !e.region.Contains(req.End) {
		return e.hybrid(network, req)
	}

	from, _ := network.Nearest(req.Start)
	to, _ := network.Nearest(req.End)
	ids, meters, err := network.ShortestPath(from, to)
	if err != nil {
		return nil, err
	}

	return &entity.Route{
		Waypoints:      network.Points(ids),
		DistanceMeters: meters,
		InGraphMeters:  meters,
		Instructions:   graphInstructions(len(ids)),
		Strategy:       entity.StrategyGraph,
	}, nil
}

// hybrid walks the graph to the ring node closest to the destination, then
// continues in a straight line.
func (e *Engine) hybrid(network *osm.Network, req Request) (*entity.Route, error) {
	ring := network.NodesBeyond(e.region.Center, e.region.ringMeters())
	if len(ring) == 0 {
		return nil, errNoExit
	}

	exit := ring[0]
	exitDist := math.Inf(1)
	for _, id := range ring {
		p, _ := network.Point(id)
		if d := geo.Haversine(p, req.End); d < exitDist {
			exit, exitDist = id, d
		}
	}

	from, _ := network.Nearest(req.Start)
	ids, inGraph, err := network.ShortestPath(from, exit)
	if err != nil {
		return nil, err
	}

	// An off-campus start walks to its nearest path node first.
	var approach float64
	var waypoints []geo.Point
	instructions := []string{stepStart}
	if !e.region.Contains(req.Start) {
		startPoint, _ := network.Point(from)
		approach = geo.Haversine(req.Start, startPoint)
		waypoints = append(waypoints, req.Start)
		instructions = append(instructions, fmt.Sprintf("Walk to the nearest campus path (%.0fm)", approach))
	}
	waypoints = append(waypoints, network.Points(ids)...)
	waypoints = append(waypoints, req.End)
	instructions = append(instructions,
		fmt.Sprintf("Follow the campus path to the nearest exit (%.0fm)", inGraph),
		"Exit the campus",
		fmt.Sprintf("Continue straight for approximately %.0fm to reach your destination", exitDist),
		stepArrived,
	)

	return &entity.Route{
		Waypoints:      waypoints,
		DistanceMeters: approach + inGraph + exitDist,
		InGraphMeters:  inGraph,
		ExternalMeters: approach + exitDist,
		Instructions:   instructions,
		Strategy: entity.StrategyHybrid,
		Hybrid:   true,
	}, nil
}

func coincident(req Request) *entity.Route {
	return &entity.Route{
		Waypoints:    []geo.Point{req.Start, req.End},
		Instructions: graphInstructions(2),
		Strategy:     entity.StrategyGraph,
	}
}

func (e *Engine) straightLine(req Request) *entity.Route {
	meters := geo.Haversine(req.Start, req.End)
	direction := geo.Direction(geo.Bearing(req.Start, req.End))
	return &entity.Route{
		Waypoints:      []geo.Point{req.Start, req.End},
		DistanceMeters: meters,
		ExternalMeters: meters,
		Instructions: []string{
			stepStart,
			fmt.Sprintf("Head %s for approximately %.0fm", direction, meters),
			stepArrived,
		},
		Strategy:  entity.StrategyStraightLine,
		Direction: direction,
	}
}

func (e *Engine) finish(route *entity.Route, req Request) {
	if len(route.Waypoints) == 0 {
		route.Waypoints = []geo.Point{req.Start, req.End}
	}
	route.Mode = req.Mode
	route.Urgency = req.Urgency
	route.DurationSeconds, route.DurationMinutes = geo.AdjustedDuration(
		geo.WalkingSeconds(route.DistanceMeters, e.walkingSpeed),
		req.Urgency,
	)
}

func graphInstructions(nodes int) []string {
	switch {
	case nodes <= 2:
		return []string{stepStart, "Walk straight to your destination", stepArrived}
	case nodes <= 5:
		return []string{stepStart, "Continue walking along the path", stepArrived}
	default:
		return []string{
			stepStart,
			"Follow the walking path",
			fmt.Sprintf("Continue for approximately %d meters", nodes*metersPerNode),
			stepArrived,
		}
	}
}

// Reasons explains the route choice in short bullet lines.
func Reasons(route *entity.Route) []string {
	if route == nil {
		return nil
	}
	var reasons []string
	switch route.Strategy {
	case entity.StrategyGraph:
		reasons = append(reasons, "Shortest walking path on the campus footpath network")
	case entity.StrategyHybrid:
		reasons = append(reasons,
			"Destination is outside campus",
			fmt.Sprintf("Leaves campus through the exit closest to it, %.0fm on campus paths", route.InGraphMeters),
		)
	case entity.StrategyStraightLine:
		reasons = append(reasons, fmt.Sprintf("Campus paths unavailable, showing the direct line heading %s", route.Direction))
	}
	switch route.Urgency {
	case geo.UrgencyExam:
		reasons = append(reasons, "Exam urgency applied, assuming a brisk pace")
	case geo.UrgencyAccessibility:
		reasons = append(reasons, "Accessibility mode applied, allowing extra time")
	}
	return reasons
}
