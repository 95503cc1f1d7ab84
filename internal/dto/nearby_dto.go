package dto

type NearbyRequest struct {
	Category  string   `query:"category"`
	Latitude  *float64 `query:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `query:"longitude" validate:"omitempty,longitude"`
	RadiusKm  float64  `query:"radius_km" validate:"omitempty,gt=0,lte=50"`
	Limit     int      `query:"limit" validate:"omitempty,min=1,max=50"`
}

type NearbyPOI struct {
	Id          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Description string   `json:"description,omitempty"`
	DistanceKm  *float64 `json:"distance_km"`
}

type NearbyResponse struct {
	Category  string      `json:"category"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	RadiusKm  float64     `json:"radius_km"`
	Count     int         `json:"count"`
	Results   []NearbyPOI `json:"results"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
