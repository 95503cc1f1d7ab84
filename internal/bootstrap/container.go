package bootstrap

import (
	"context"

	"astu-route-be/internal/config"
	"astu-route-be/internal/controller"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/repository/implementation"
	"astu-route-be/internal/service"
	"astu-route-be/pkg/cache"
	"astu-route-be/pkg/database"
	"astu-route-be/pkg/embedding"
	embeddingFactory "astu-route-be/pkg/embedding/factory"
	"astu-route-be/pkg/events"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/knowledge"
	"astu-route-be/pkg/llm"
	llmFactory "astu-route-be/pkg/llm/factory"
	pktNats "astu-route-be/pkg/nats"
	"astu-route-be/pkg/osm"
	"astu-route-be/pkg/resolver"
	"astu-route-be/pkg/routing"
	"astu-route-be/pkg/workflow"

	"gorm.io/gorm"
)

const queryEventsTopic = "query.processed"

type Container struct {
	// Controllers
	QueryController    controller.IQueryController
	RouteController    controller.IRouteController
	NearbyController   controller.INearbyController
	MapController      controller.IMapController
	LocationController controller.ILocationController
	HealthController   controller.IHealthController

	// Background Services (Exposed for main.go to run)
	QueryLogConsumer service.IQueryLogConsumer

	Logger logger.ILogger

	bus       *events.Bus
	publisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx := context.Background()

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	store := cache.New(ctx, cfg.App.RedisURL, sysLogger)

	poiRepo := implementation.NewPOIRepository(db)
	documentRepo := implementation.NewDocumentRepository(db)
	queryLogRepo := implementation.NewQueryLogRepository(db)

	// 2. Model backends
	chat, streamer := newLLM(cfg, sysLogger)
	poiEmbedder := newEmbedder(ctx, cfg, cfg.Ai.POIKey, "poi", sysLogger)
	docEmbedder := newEmbedder(ctx, cfg, cfg.Ai.DocumentKey, "document", sysLogger)

	// 3. Geo
	region := routing.Region{
		Center:        geo.NewPoint(cfg.Geo.CenterLat, cfg.Geo.CenterLng),
		RadiusMeters:  cfg.Geo.RadiusMeters,
		MarginMeters:  cfg.Geo.MarginMeters,
		BoundaryRatio: cfg.Geo.BoundaryRatio,
	}
	graph := osm.NewProvider(
		osm.NewOverpassLoader(cfg.Geo.OverpassURL, cfg.Geo.SnapshotPath, region.Center, region.RadiusMeters, sysLogger),
		region.Center,
		region.RadiusMeters,
	)
	engine := routing.NewEngine(graph, region, cfg.Geo.WalkingSpeed, sysLogger)

	// 4. Resolver + knowledge
	res := resolver.New(poiRepo, documentRepo, poiEmbedder, docEmbedder, store, resolver.Config{
		EmbedTimeout:          cfg.Ai.Timeout,
		MinDocumentSimilarity: cfg.Rag.MinSimilarity,
	}, sysLogger)
	kb := knowledge.NewPipeline(res, chat, knowledge.Config{
		TopK:    cfg.Rag.TopK,
		Timeout: cfg.Ai.Timeout,
	}, sysLogger)

	// 5. Event Bus
	bus := events.NewBus(queryEventsTopic)
	var mirror service.EventMirror
	var publisher *pktNats.Publisher
	if cfg.Events.NatsURL != "" {
		p, err := pktNats.NewPublisher(cfg.Events.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("EVENTS", "NATS unavailable, query events stay local", map[string]interface{}{"error": err.Error()})
		} else {
			publisher, mirror = p, p
		}
	}

	// 6. Services
	nearbyDefaults := service.NearbyDefaults{
		Center:   geo.NewPoint(cfg.Geo.DefaultLat, cfg.Geo.DefaultLng),
		RadiusKm: cfg.Geo.NearbyRadiusKm,
		Limit:    cfg.Geo.NearbyLimit,
	}
	nearbyService := service.NewNearbyService(poiRepo, store, nearbyDefaults, sysLogger)

	settings := workflow.DefaultSettings()
	settings.DefaultPoint = nearbyDefaults.Center
	settings.NearbyRadiusKm = cfg.Geo.NearbyRadiusKm
	settings.NearbyLimit = cfg.Geo.NearbyLimit
	settings.DefaultService = cfg.Geo.DefaultService
	settings.TopK = cfg.Rag.TopK
	settings.ClassifyTimeout = cfg.Ai.Timeout

	deps := workflow.Deps{
		Classifier: chat,
		Locations:  res,
		Router:     engine,
		Knowledge:  kb,
		Nearby:     nearbyService,
		Settings:   settings,
		Logger:     sysLogger,
	}
	orchestrator := workflow.NewOrchestrator(workflow.NewNodes(deps), sysLogger)

	queryService := service.NewQueryService(orchestrator, bus, sysLogger)
	routeService := service.NewRouteService(engine, graph, streamer, store, sysLogger)
	mapService := service.NewMapService(poiRepo, store, region, sysLogger)
	healthService := service.NewHealthService(
		func(ctx context.Context) error { return database.Ping(ctx, db) },
		store,
		service.AIInfo{
			LLMProvider:       cfg.Ai.LLMProvider,
			LLMModel:          cfg.Ai.LLMModel,
			LLMReady:          chat != nil,
			EmbeddingProvider: cfg.Ai.EmbeddingProvider,
			EmbeddingModel:    cfg.Ai.EmbeddingModel,
			EmbeddingReady:    poiEmbedder != nil || docEmbedder != nil,
		},
	)

	return &Container{
		QueryController:    controller.NewQueryController(queryService, sysLogger),
		RouteController:    controller.NewRouteController(routeService, sysLogger),
		NearbyController:   controller.NewNearbyController(nearbyService),
		MapController:      controller.NewMapController(mapService),
		LocationController: controller.NewLocationController(queryService),
		HealthController:   controller.NewHealthController(healthService),

		QueryLogConsumer: service.NewQueryLogConsumer(bus, queryLogRepo, mirror, logger.NewIsolatedLogger(cfg.App.EventLogFilePath)),

		Logger:    sysLogger,
		bus:       bus,
		publisher: publisher,
	}
}

// newLLM returns the chat provider behind the rate limiter, or nils when the
// provider cannot be built. The workflow then falls back to keyword rules.
func newLLM(cfg *config.Config, log logger.ILogger) (llm.LLMProvider, llm.StreamingProvider) {
	inner, err := llmFactory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.LLMBaseURL, cfg.Ai.LLMAPIKey)
	if err != nil {
		log.Error("BOOTSTRAP", "Failed to create LLM provider", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"error":    err.Error(),
		})
		return nil, nil
	}

	limited := llm.NewRateLimitedProvider(inner, cfg.Ai.RateLimit, cfg.Ai.RateBurst)
	var streamer llm.StreamingProvider
	if _, ok := inner.(llm.StreamingProvider); ok {
		streamer = limited
	}
	return limited, streamer
}

func newEmbedder(ctx context.Context, cfg *config.Config, apiKey, purpose string, log logger.ILogger) embedding.EmbeddingProvider {
	p, err := embeddingFactory.NewEmbeddingProvider(ctx, cfg.Ai.EmbeddingProvider, apiKey, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingBaseURL)
	if err != nil {
		log.Error("BOOTSTRAP", "Failed to create embedding provider", map[string]interface{}{
			"provider": cfg.Ai.EmbeddingProvider,
			"purpose":  purpose,
			"error":    err.Error(),
		})
		return nil
	}
	if p == nil {
		log.Warn("BOOTSTRAP", "No embedding key configured, semantic tier disabled", map[string]interface{}{"purpose": purpose})
	}
	return p
}

// Close releases the event bus and the NATS connection.
func (c *Container) Close() {
	if err := c.bus.Close(); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to close event bus", map[string]interface{}{"error": err.Error()})
	}
	if c.publisher != nil {
		c.publisher.Close()
	}
	_ = c.Logger.Sync()
}
