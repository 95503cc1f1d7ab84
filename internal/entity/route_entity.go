package entity

import "astu-route-be/pkg/geo"

type RouteStrategy string

const (
	StrategyGraph        RouteStrategy = "graph"
	StrategyHybrid       RouteStrategy = "hybrid"
	StrategyStraightLine RouteStrategy = "straight_line"
)

// Route always has at least one waypoint.
type Route struct {
	Waypoints       []geo.Point
	DistanceMeters  float64
	DurationSeconds float64
	DurationMinutes int
	Instructions    []string
	Strategy        RouteStrategy
	Hybrid          bool
	InGraphMeters   float64
	ExternalMeters  float64
	Direction       string // straight line only
	Mode            string
	Urgency         geo.Urgency
}

func (r *Route) DistanceKm() float64 {
	return r.DistanceMeters / 1000
}
