package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/knowledge"
	"astu-route-be/pkg/llm"
	"astu-route-be/pkg/resolver"
	"astu-route-be/pkg/routing"

	"github.com/go-playground/validator/v10"
)

const (
	NodeUserInput       = "user_input"
	NodeIntentClassify  = "intent_classifier"
	NodeRAGRetrieve     = "rag_retriever"
	NodeRAGGenerate     = "rag_generator"
	NodeGeoReason       = "geo_reasoning"
	NodeResponseCompose = "response_composer"
)

type LocationResolver interface {
	ExtractLocations(ctx context.Context, query string, current *geo.Point, fallback geo.Point) (*resolver.Endpoints, error)
}

type Router interface {
	Route(ctx context.Context, req routing.Request) (*entity.Route, error)
}

type KnowledgeBase interface {
	Retrieve(ctx context.Context, query string, topK int) ([]*entity.ScoredDocument, error)
	Generate(ctx context.Context, query string, docs []*entity.ScoredDocument) (*knowledge.Answer, error)
}

type NearbyFinder interface {
	FindNearby(ctx context.Context, center geo.Point, category string, radiusKm float64, limit int) ([]*entity.POI, error)
}

type Settings struct {
	DefaultPoint    geo.Point
	NearbyRadiusKm  float64
	NearbyLimit     int
	DefaultService  string
	TopK            int
	ClassifyTimeout time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		DefaultPoint:    geo.NewPoint(8.5569, 39.2911),
		NearbyRadiusKm:  5,
		NearbyLimit:     10,
		DefaultService:  "mosque",
		TopK:            5,
		ClassifyTimeout: 30 * time.Second,
	}
}

// Deps are the collaborators used by the nodes. Classifier may be nil, which
// leaves intent detection to the keyword rules.
type Deps struct {
	Classifier llm.LLMProvider
	Locations  LocationResolver
	Router     Router
	Knowledge  KnowledgeBase
	Nearby     NearbyFinder
	Settings   Settings
	Logger     logger.ILogger
}

type Nodes struct {
	deps     Deps
	validate *validator.Validate
}

func NewNodes(deps Deps) *Nodes {
	return &Nodes{deps: deps, validate: validator.New()}
}

func (n *Nodes) UserInput(ctx context.Context, q QueryContext) Patch {
	p := Patch{
		Query:     ptr(strings.TrimSpace(q.Query)),
		Mode:      ptr(ModeWalking),
		Urgency:   ptr(geo.ParseUrgency(string(q.Urgency))),
		Reasoning: []string{"Understanding your question..."},
	}
	if strings.EqualFold(q.Mode, ModeTaxi) {
		p.Mode = ptr(ModeTaxi)
	}

	if q.Lat == nil || q.Lng == nil || !geo.NewPoint(*q.Lat, *q.Lng).Valid() {
		def := n.deps.Settings.DefaultPoint
		p.Lat, p.Lng = ptr(def.Lat), ptr(def.Lng)
		p.LocationDefaulted = ptr(true)
		n.deps.Logger.Debug("WORKFLOW", "No location provided, using campus default", nil)
	}

	if *p.Query == "" {
		p.Error = errorInfo(apperror.Validation("Query cannot be empty"))
	}
	return p
}

type intentReply struct {
	Intent string `json:"intent" validate:"required,oneof=NAVIGATION NEARBY_SERVICE UNIVERSITY_INFO MIXED"`
}

func (n *Nodes) IntentClassify(ctx context.Context, q QueryContext) Patch {
	if q.ForcedIntent != "" {
		return intentPatch(q.ForcedIntent, knowledge.ConfidenceHigh)
	}

	intent, err := n.classify(ctx, q.Query)
	if err == nil {
		return intentPatch(intent, knowledge.ConfidenceHigh)
	}

	n.deps.Logger.Warn("WORKFLOW", "Intent classifier unavailable, using keyword rules", map[string]interface{}{
		"error": err.Error(),
	})
	intent, ok := ClassifyByRules(q.Query)
	if !ok {
		intent = IntentUniversityInfo
	}
	return intentPatch(intent, knowledge.ConfidenceLow)
}

func (n *Nodes) classify(ctx context.Context, query string) (Intent, error) {
	if n.deps.Classifier == nil {
		return "", fmt.Errorf("no intent classifier configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, n.deps.Settings.ClassifyTimeout)
	defer cancel()

	raw, err := n.deps.Classifier.Chat(callCtx, []llm.Message{
		{Role: llm.RoleSystem, Content: intentSystemPrompt},
		{Role: llm.RoleUser, Content: intentUserPrompt(query)},
	}, llm.WithTemperature(0), llm.WithJSON(), llm.WithMaxTokens(64))
	if err != nil {
		return "", err
	}

	var reply intentReply
	if err := llm.DecodeJSON(raw, &reply); err != nil {
		return "", fmt.Errorf("decode intent: %w", err)
	}
	reply.Intent = strings.ToUpper(strings.TrimSpace(reply.Intent))
	if err := n.validate.Struct(reply); err != nil {
		return "", fmt.Errorf("validate intent: %w", err)
	}
	return Intent(reply.Intent), nil
}

func intentPatch(intent Intent, confidence Confidence) Patch {
	var line string
	switch intent {
	case IntentNavigation:
		line = "Detected navigation request inside ASTU campus"
	case IntentNearby:
		line = "Detected nearby service discovery request"
	case IntentUniversityInfo:
		line = "Searching ASTU knowledge base"
	case IntentMixed:
		line = "Detected combined navigation and information request"
	}
	p := Patch{Intent: ptr(intent), Confidence: ptr(confidence)}
	if line != "" {
		p.Reasoning = []string{line}
	}
	return p
}

func (n *Nodes) RAGRetrieve(ctx context.Context, q QueryContext) Patch {
	docs, err := n.deps.Knowledge.Retrieve(ctx, q.Query, n.deps.Settings.TopK)
	if err != nil {
		n.deps.Logger.Error("RAG", "Retrieval failed", map[string]interface{}{"error": err.Error()})
		return Patch{
			RetrievedDocuments: []*entity.ScoredDocument{},
			Reasoning:          []string{"No verified information found"},
			Error:              errorInfo(err),
		}
	}
	if len(docs) == 0 {
		return Patch{
			RetrievedDocuments: []*entity.ScoredDocument{},
			Reasoning:          []string{"No verified information found"},
		}
	}
	return Patch{
		RetrievedDocuments: docs,
		Reasoning:          []string{fmt.Sprintf("Found %d relevant ASTU documents", len(docs))},
	}
}

func (n *Nodes) RAGGenerate(ctx context.Context, q QueryContext) Patch {
	answer, err := n.deps.Knowledge.Generate(ctx, q.Query, q.RetrievedDocuments)
	if answer == nil {
		answer = knowledge.NoAnswer()
	}

	p := Patch{
		RAGAnswer:     ptr(answer.Text),
		RAGSources:    answer.Sources,
		RAGConfidence: ptr(answer.Confidence),
		Error:         errorInfo(err),
	}
	if p.RAGSources == nil {
		p.RAGSources = []knowledge.Source{}
	}
	if answer.Grounded {
		p.Reasoning = []string{"Generated answer from verified ASTU sources"}
	} else {
		p.Reasoning = []string{"Unable to provide verified answer"}
	}
	if err != nil {
		n.deps.Logger.Warn("RAG", "Generation failed", map[string]interface{}{"error": err.Error()})
	}
	return p
}

func (n *Nodes) GeoReason(ctx context.Context, q QueryContext) Patch {
	if q.Intent == IntentNearby {
		return n.nearby(ctx, q)
	}
	return n.navigate(ctx, q)
}

func (n *Nodes) nearby(ctx context.Context, q QueryContext) Patch {
	s := n.deps.Settings
	category, ok := resolver.DetectServiceCategory(q.Query)
	if !ok {
		category = s.DefaultService
	}

	services, err := n.deps.Nearby.FindNearby(ctx, q.Point(), category, s.NearbyRadiusKm, s.NearbyLimit)
	if err != nil {
		n.deps.Logger.Error("GEO", "Nearby search failed", map[string]interface{}{
			"category": category,
			"error":    err.Error(),
		})
		return Patch{
			ServiceCategory: ptr(category),
			NearbyServices:  []*entity.POI{},
			RouteSummary:    ptr(fmt.Sprintf("Unable to search for nearby %s(s)", category)),
			GeoConfidence:   ptr(knowledge.ConfidenceLow),
			Error:           errorInfo(err),
		}
	}

	var (
		summary    string
		steps      []string
		confidence = knowledge.ConfidenceHigh
	)
	if len(services) > 0 {
		summary = fmt.Sprintf("Found %d %s(s) near ASTU", len(services), category)
		for i, svc := range services {
			if i == 5 {
				break
			}
			steps = append(steps, fmt.Sprintf("%d. %s - %s", i+1, svc.Name, distanceText(svc.DistanceKm)))
		}
	} else {
		summary = fmt.Sprintf("No %s(s) found within %gkm of ASTU", category, s.NearbyRadiusKm)
		steps = []string{"Try searching with a different category or larger radius"}
		confidence = knowledge.ConfidenceLow
	}

	reference := "Used your current location as reference point"
	if q.LocationDefaulted {
		reference = "Used ASTU location as reference point"
	}

	if services == nil {
		services = []*entity.POI{}
	}
	return Patch{
		ServiceCategory: ptr(category),
		NearbyServices:  services,
		RouteSummary:    ptr(summary),
		RouteSteps:      steps,
		GeoReasoning:    []string{reference},
		GeoConfidence:   ptr(confidence),
		Reasoning:       []string{fmt.Sprintf("Searched for nearby %s(s)", category), summary},
	}
}

func (n *Nodes) navigate(ctx context.Context, q QueryContext) Patch {
	var current *geo.Point
	if !q.LocationDefaulted {
		p := q.Point()
		current = &p
	}

	endpoints, err := n.deps.Locations.ExtractLocations(ctx, q.Query, current, n.deps.Settings.DefaultPoint)
	if err != nil {
		n.deps.Logger.Warn("GEO", "Could not resolve locations", map[string]interface{}{"error": err.Error()})
		return Patch{
			RouteSummary:  ptr("Unable to calculate route"),
			RouteSteps:    []string{"Try naming a campus building, block or office"},
			GeoConfidence: ptr(knowledge.ConfidenceLow),
			Reasoning:     []string{"Could not find the requested location"},
			Error:         errorInfo(err),
		}
	}

	route, err := n.deps.Router.Route(ctx, routing.Request{
		Start:   endpoints.Start.Point,
		End:     endpoints.End.Point,
		Mode:    q.Mode,
		Urgency: q.Urgency,
	})
	if err != nil {
		n.deps.Logger.Error("GEO", "Routing failed", map[string]interface{}{"error": err.Error()})
		return Patch{
			StartLocation: endpoints.Start,
			EndLocation:   endpoints.End,
			RouteSummary:  ptr("Unable to calculate route"),
			GeoConfidence: ptr(knowledge.ConfidenceLow),
			Error:         errorInfo(apperror.Route("route calculation failed", err)),
		}
	}

	summary := fmt.Sprintf("Route from %s to %s", endpoints.Start.Name, endpoints.End.Name)
	reasons := routing.Reasons(route)
	if endpoints.StartDefaulted {
		reasons = append(reasons, "No location shared, starting from the ASTU main gate area")
	}

	reasoning := []string{"Calculated campus route"}
	if route.Urgency == geo.UrgencyExam {
		reasoning = append(reasoning, "Applied exam urgency mode")
	}
	reasoning = append(reasoning, summary)

	return Patch{
		Route:            route,
		StartLocation:    endpoints.Start,
		EndLocation:      endpoints.End,
		RouteSummary:     ptr(summary),
		DistanceEstimate: ptr(distanceEstimate(route)),
		RouteSteps:       route.Instructions,
		GeoReasoning:     reasons,
		GeoConfidence:    ptr(geoConfidence(route, endpoints.StartDefaulted)),
		Reasoning:        reasoning,
	}
}

func (n *Nodes) ResponseCompose(ctx context.Context, q QueryContext) Patch {
	return Compose(q)
}

func geoConfidence(route *entity.Route, startDefaulted bool) Confidence {
	switch {
	case route.Strategy == entity.StrategyStraightLine:
		return knowledge.ConfidenceLow
	case startDefaulted || route.Hybrid:
		return knowledge.ConfidenceMedium
	default:
		return knowledge.ConfidenceHigh
	}
}

func distanceEstimate(route *entity.Route) string {
	walk := fmt.Sprintf("~%d min walk", route.DurationMinutes)
	if route.DistanceMeters >= 1000 {
		return fmt.Sprintf("%.2f km (%s)", route.DistanceKm(), walk)
	}
	return fmt.Sprintf("%.0f m (%s)", route.DistanceMeters, walk)
}
