package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Geo      GeoConfig
	Rag      RagConfig
	Events   EventsConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	EventLogFilePath   string
	CorsAllowedOrigins string
	BodyLimitMB        int
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider string // "openai", "anthropic" or "ollama"
	LLMModel    string
	LLMBaseURL  string
	LLMAPIKey   string
	Timeout     time.Duration
	RateLimit   float64 // requests per second
	RateBurst   int

	EmbeddingProvider string // "voyage", "gemini", "ollama" or "jina"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	DocumentKey       string
	POIKey            string
}

type GeoConfig struct {
	CenterLat        float64
	CenterLng        float64
	RadiusMeters     float64
	MarginMeters     float64
	BoundaryRatio    float64
	DefaultLat       float64
	DefaultLng       float64
	WalkingSpeed     float64 // m/s
	OverpassURL      string
	SnapshotPath     string
	NearbyRadiusKm   float64
	NearbyLimit      int
	DefaultService   string
}

type RagConfig struct {
	TopK          int
	MinSimilarity float64
}

type EventsConfig struct {
	NatsURL string
	Subject string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			EventLogFilePath:   getEnv("EVENT_LOG_FILE_PATH", "logs/events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			BodyLimitMB:        getEnvAsInt("BODY_LIMIT_MB", 4),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
			LLMAPIKey:         getEnv("AI_API_KEY", ""),
			Timeout:           time.Duration(getEnvAsInt("AI_TIMEOUT_SECONDS", 30)) * time.Second,
			RateLimit:         getEnvAsFloat("AI_RATE_LIMIT", 5),
			RateBurst:         getEnvAsInt("AI_RATE_BURST", 10),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "voyage"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "voyage-3-lite"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			DocumentKey:       getEnv("DOCUMENT_EMBEDDING_API_KEY", ""),
			POIKey:            getEnv("POI_EMBEDDING_API_KEY", ""),
		},
		Geo: GeoConfig{
			CenterLat:      getEnvAsFloat("CAMPUS_CENTER_LAT", 8.5570),
			CenterLng:      getEnvAsFloat("CAMPUS_CENTER_LNG", 39.2915),
			RadiusMeters:   getEnvAsFloat("CAMPUS_RADIUS_METERS", 1000),
			MarginMeters:   getEnvAsFloat("CAMPUS_MARGIN_METERS", 200),
			BoundaryRatio:  getEnvAsFloat("CAMPUS_BOUNDARY_RATIO", 0.85),
			DefaultLat:     getEnvAsFloat("DEFAULT_LAT", 8.5569),
			DefaultLng:     getEnvAsFloat("DEFAULT_LNG", 39.2911),
			WalkingSpeed:   getEnvAsFloat("WALKING_SPEED_MPS", 1.4),
			OverpassURL:    getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
			SnapshotPath:   getEnv("GRAPH_SNAPSHOT_PATH", "data/campus_walk.json"),
			NearbyRadiusKm: getEnvAsFloat("NEARBY_RADIUS_KM", 5),
			NearbyLimit:    getEnvAsInt("NEARBY_LIMIT", 10),
			DefaultService: getEnv("NEARBY_DEFAULT_CATEGORY", "mosque"),
		},
		Rag: RagConfig{
			TopK:          getEnvAsInt("RAG_TOP_K", 5),
			MinSimilarity: getEnvAsFloat("RAG_MIN_SIMILARITY", 0.5),
		},
		Events: EventsConfig{
			NatsURL: getEnv("NATS_URL", ""),
			Subject: getEnv("QUERY_EVENTS_SUBJECT", "events.query.processed"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "astu-route-be"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
