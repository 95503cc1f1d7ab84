package routing

import (
	"context"
	"errors"
	"testing"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/osm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingGraph struct{}

func (failingGraph) Network(ctx context.Context) (*osm.Network, error) {
	return nil, errors.New("overpass unreachable")
}

var center = DefaultRegion().Center

// eastLine builds ten nodes heading east from the campus center, roughly
// 110m apart, so the last two sit on the exit ring.
func eastLine() *osm.Network {
	n := osm.NewNetwork()
	for i := int64(0); i < 10; i++ {
		n.AddNode(i+1, geo.NewPoint(center.Lat, center.Lng+float64(i)*0.001))
	}
	for i := int64(1); i < 10; i++ {
		n.Connect(i, i+1)
	}
	n.Seal()
	return n
}

func newTestEngine(t *testing.T, graphs GraphProvider) *Engine {
	return NewEngine(graphs, DefaultRegion(), geo.WalkingSpeed, logger.NewTestLogger(t))
}

func staticGraph() GraphProvider {
	return osm.NewStaticProvider(eastLine(), center, DefaultRegion().RadiusMeters)
}

func TestRouteCoincidentPoints(t *testing.T) {
	e := newTestEngine(t, staticGraph())

	route, err := e.Route(context.Background(), Request{Start: center, End: center})
	require.NoError(t, err)

	assert.Equal(t, entity.StrategyGraph, route.Strategy)
	assert.Zero(t, route.DistanceMeters)
	assert.Equal(t, 1, route.DurationMinutes)
	assert.NotEmpty(t, route.Waypoints)
	assert.Equal(t, "Walk straight to your destination", route.Instructions[1])
	assert.Equal(t, ModeWalking, route.Mode)
	assert.Equal(t, geo.UrgencyNormal, route.Urgency)
}

func TestRouteCoincidentOutsideRegion(t *testing.T) {
	e := newTestEngine(t, staticGraph())
	p := geo.NewPoint(center.Lat+0.05, center.Lng)

	route, err := e.Route(context.Background(), Request{Start: p, End: p})
	require.NoError(t, err)

	assert.False(t, route.Hybrid)
	assert.Zero(t, route.DistanceMeters)
	assert.Equal(t, 1, route.DurationMinutes)
	assert.Equal(t, []geo.Point{p, p}, route.Waypoints)
	assert.Equal(t, "Walk straight to your destination", route.Instructions[1])
}

func TestRouteInRegion(t *testing.T) {
	network := eastLine()
	e := newTestEngine(t, osm.NewStaticProvider(network, center, 1000))
	end, _ := network.Point(8)

	route, err := e.Route(context.Background(), Request{Start: center, End: end})
	require.NoError(t, err)

	assert.Equal(t, entity.StrategyGraph, route.Strategy)
	assert.False(t, route.Hybrid)
	assert.Len(t, route.Waypoints, 8)
	assert.InDelta(t, geo.Haversine(center, end), route.DistanceMeters, 1)
	assert.Equal(t, []string{
		"Start from your current location",
		"Follow the walking path",
		"Continue for approximately 160 meters",
		"You have arrived at your destination",
	}, route.Instructions)
}

func TestRouteHybridOutsideRegion(t *testing.T) {
	network := eastLine()
	e := newTestEngine(t, osm.NewStaticProvider(network, center, 1000))
	end := geo.NewPoint(center.Lat, center.Lng+0.02)
	exit, _ := network.Point(10)

	route, err := e.Route(context.Background(), Request{Start: center, End: end})
	require.NoError(t, err)

	assert.Equal(t, entity.StrategyHybrid, route.Strategy)
	assert.True(t, route.Hybrid)
	assert.InDelta(t, geo.Haversine(center, exit), route.InGraphMeters, 1)
	assert.InDelta(t, geo.Haversine(exit, end), route.ExternalMeters, 1e-6)
	assert.InDelta(t, route.InGraphMeters+route.ExternalMeters, route.DistanceMeters, 1e-6)
	assert.Equal(t, end, route.Waypoints[len(route.Waypoints)-1])
	assert.Equal(t, "Exit the campus", route.Instructions[2])
}

func TestRouteHybridCountsOffCampusStart(t *testing.T) {
	network := eastLine()
	e := newTestEngine(t, osm.NewStaticProvider(network, center, 1000))
	start := geo.NewPoint(center.Lat-0.02, center.Lng)
	end := geo.NewPoint(center.Lat, center.Lng+0.02)
	first, _ := network.Point(1)
	exit, _ := network.Point(10)

	route, err := e.Route(context.Background(), Request{Start: start, End: end})
	require.NoError(t, err)

	assert.Equal(t, entity.StrategyHybrid, route.Strategy)
	assert.Equal(t, start, route.Waypoints[0])
	assert.Equal(t, end, route.Waypoints[len(route.Waypoints)-1])
	assert.InDelta(t, geo.Haversine(first, exit), route.InGraphMeters, 1)
	assert.InDelta(t, geo.Haversine(start, first)+geo.Haversine(exit, end), route.ExternalMeters, 1e-6)
	assert.InDelta(t, route.InGraphMeters+route.ExternalMeters, route.DistanceMeters, 1e-6)
	assert.Contains(t, route.Instructions[1], "Walk to the nearest campus path")
	assert.Equal(t, "Exit the campus", route.Instructions[3])
}

func TestRouteUrgencyOrdering(t *testing.T) {
	network := eastLine()
	e := newTestEngine(t, osm.NewStaticProvider(network, center, 1000))
	end, _ := network.Point(9)

	durations := make(map[geo.Urgency]float64)
	for _, u := range []geo.Urgency{geo.UrgencyExam, geo.UrgencyNormal, geo.UrgencyAccessibility} {
		route, err := e.Route(context.Background(), Request{Start: center, End: end, Urgency: u})
		require.NoError(t, err)
		durations[u] = route.DurationSeconds
	}

	assert.Less(t, durations[geo.UrgencyExam], durations[geo.UrgencyNormal])
	assert.Less(t, durations[geo.UrgencyNormal], durations[geo.UrgencyAccessibility])
}

func TestRouteStraightLineWithoutGraph(t *testing.T) {
	end := geo.NewPoint(center.Lat, center.Lng+0.005)

	for name, graphs := range map[string]GraphProvider{
		"no provider":  nil,
		"load failure": failingGraph{},
	} {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t, graphs)

			route, err := e.Route(context.Background(), Request{Start: center, End: end})
			require.NoError(t, err)

			assert.Equal(t, entity.StrategyStraightLine, route.Strategy)
			assert.Equal(t, []geo.Point{center, end}, route.Waypoints)
			assert.Equal(t, "east", route.Direction)
			assert.InDelta(t, geo.Haversine(center, end), route.DistanceMeters, 1e-6)
			assert.GreaterOrEqual(t, route.DurationMinutes, 1)
		})
	}
}

func TestRouteRejectsInvalidCoordinates(t *testing.T) {
	e := newTestEngine(t, nil)

	_, err := e.Route(context.Background(), Request{Start: geo.NewPoint(91, 0), End: center})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestReasons(t *testing.T) {
	assert.Nil(t, Reasons(nil))

	reasons := Reasons(&entity.Route{Strategy: entity.StrategyGraph, Urgency: geo.UrgencyExam})
	assert.Len(t, reasons, 2)
	assert.Contains(t, reasons[1], "Exam urgency")
}
