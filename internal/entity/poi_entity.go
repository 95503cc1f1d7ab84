package entity

import (
	"time"

	"astu-route-be/pkg/geo"
)

type POI struct {
	Id          int64
	Name        string
	Category    string
	Latitude    float64
	Longitude   float64
	Description string
	Building    string
	BlockNum    string
	Floor       *int
	RoomNum     string
	Capacity    *int
	Facilities  []string
	Tags        []string
	OsmId       string
	Embedding   []float32
	CreatedAt   time.Time
	UpdatedAt   *time.Time

	// Query time only.
	Similarity *float64
	DistanceKm *float64
}

func (p *POI) Point() geo.Point {
	return geo.NewPoint(p.Latitude, p.Longitude)
}

// Location is a named coordinate used as a route endpoint. POI is nil for
// virtual locations such as the user's own position.
type Location struct {
	Name  string    `json:"name"`
	Point geo.Point `json:"coordinates"`
	POI   *POI      `json:"-"`
}

func LocationFromPOI(p *POI) *Location {
	if p == nil {
		return nil
	}
	return &Location{Name: p.Name, Point: p.Point(), POI: p}
}
