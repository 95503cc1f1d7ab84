// Package geo holds the great-circle math shared by routing and resolution.
package geo

import (
	"fmt"
	"math"
)

const (
	EarthRadiusMeters = 6371000.0
	// WalkingSpeed is the default pedestrian speed in meters per second.
	WalkingSpeed = 1.4
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func NewPoint(lat, lng float64) Point {
	return Point{Lat: lat, Lng: lng}
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lng)
}

// Pair returns [lat, lng], the shape map clients render.
func (p Point) Pair() [2]float64 {
	return [2]float64{p.Lat, p.Lng}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Point) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Bearing is the initial compass bearing from a to b, in degrees [0, 360).
func Bearing(a, b Point) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	x := math.Sin(dLng) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	deg := math.Atan2(x, y) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

var compass = [8]string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}

// Direction maps a bearing onto an 8-point compass word.
func Direction(bearing float64) string {
	b := math.Mod(bearing, 360)
	if b < 0 {
		b += 360
	}
	return compass[int((b+22.5)/45)%8]
}

// Circle approximates a circle around center as a closed polygon of the given
// number of vertices. The first vertex is repeated at the end.
func Circle(center Point, radiusMeters float64, vertices int) []Point {
	if vertices < 3 {
		vertices = 3
	}
	dLat := radiusMeters / EarthRadiusMeters * 180 / math.Pi
	dLng := dLat / math.Cos(toRadians(center.Lat))

	ring := make([]Point, 0, vertices+1)
	for i := 0; i < vertices; i++ {
		theta := 2 * math.Pi * float64(i) / float64(vertices)
		ring = append(ring, NewPoint(center.Lat+dLat*math.Cos(theta), center.Lng+dLng*math.Sin(theta)))
	}
	return append(ring, ring[0])
}
