package dto

type RouteRequest struct {
	StartLat *float64 `json:"start_lat" query:"start_lat" validate:"required,latitude"`
	StartLng *float64 `json:"start_lng" query:"start_lng" validate:"required,longitude"`
	EndLat   *float64 `json:"end_lat" query:"end_lat" validate:"required,latitude"`
	EndLng   *float64 `json:"end_lng" query:"end_lng" validate:"required,longitude"`
	Mode     string   `json:"mode" query:"mode" validate:"omitempty,oneof=walking taxi"`
	Urgency  string   `json:"urgency" query:"urgency" validate:"omitempty,oneof=normal exam accessibility"`
}

type RouteResponse struct {
	Distance        float64      `json:"distance"` // meters
	DistanceKm      float64      `json:"distance_km"`
	Duration        int          `json:"duration"` // minutes, after urgency
	DurationSeconds float64      `json:"duration_seconds"`
	Waypoints       [][2]float64 `json:"waypoints"`
	Instructions    []string     `json:"instructions"`
	Strategy        string       `json:"strategy"`
	Hybrid          bool         `json:"hybrid"`
	InGraphMeters   float64      `json:"in_graph_meters,omitempty"`
	ExternalMeters  float64      `json:"external_meters,omitempty"`
	Direction       string       `json:"direction,omitempty"`
	Mode            string       `json:"mode"`
	Urgency         string       `json:"urgency"`
	Reasons         []string     `json:"reasons"`
}
