package dto

// Query API DTOs

type QueryRequest struct {
	Query     string   `json:"query" validate:"required,max=1000"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Mode      string   `json:"mode" validate:"omitempty,oneof=walking taxi"`
	Urgency   string   `json:"urgency" validate:"omitempty,oneof=normal exam accessibility"`
}
