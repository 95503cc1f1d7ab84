package dto

type ComponentHealth struct {
	Status    string                 `json:"status"` // "healthy", "degraded" or "unhealthy"
	LatencyMs int64                  `json:"latency_ms"`
	Detail    string                 `json:"detail,omitempty"`
	Info      map[string]interface{} `json:"info,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
