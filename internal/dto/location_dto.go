package dto

// LocationUpdateRequest refreshes navigation from the user's live position.
type LocationUpdateRequest struct {
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
	Destination string   `json:"destination" validate:"required,max=200"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=walking taxi"`
	Urgency     string   `json:"urgency" validate:"omitempty,oneof=normal exam accessibility"`
}
