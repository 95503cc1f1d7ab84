package dto

type MapPOI struct {
	Id          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Description string   `json:"description,omitempty"`
	Building    string   `json:"building,omitempty"`
	BlockNum    string   `json:"block_num,omitempty"`
	Facilities  []string `json:"facilities,omitempty"`
}

type CampusMapResponse struct {
	Center       [2]float64   `json:"center"`
	RadiusMeters float64      `json:"radius_meters"`
	Boundary     [][2]float64 `json:"boundary"`
	POIs         []MapPOI     `json:"pois"`
	Categories   []string     `json:"categories"`
}
