// Package workflow runs a campus query through intent classification and the
// knowledge and geo pipelines, then composes the final answer. Nodes never
// mutate shared state: each returns a Patch that the orchestrator merges.
package workflow

import (
	"strings"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/entity"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/knowledge"
)

type Intent string

const (
	IntentNavigation     Intent = "NAVIGATION"
	IntentNearby         Intent = "NEARBY_SERVICE"
	IntentUniversityInfo Intent = "UNIVERSITY_INFO"
	IntentMixed          Intent = "MIXED"
)

// ParseIntent accepts the four known intents, case-insensitively.
func ParseIntent(s string) (Intent, bool) {
	switch i := Intent(strings.ToUpper(strings.TrimSpace(s))); i {
	case IntentNavigation, IntentNearby, IntentUniversityInfo, IntentMixed:
		return i, true
	default:
		return "", false
	}
}

type Confidence = knowledge.Confidence

const (
	ModeWalking = "walking"
	ModeTaxi    = "taxi"
)

type Input struct {
	RequestID string
	Query     string
	Lat       *float64
	Lng       *float64
	Mode      string
	Urgency   string
	// ForcedIntent skips classification when set.
	ForcedIntent Intent
}

type ErrorInfo struct {
	Code    apperror.Code `json:"code"`
	Message string        `json:"message"`
}

func errorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	appErr := apperror.From(err)
	return &ErrorInfo{Code: appErr.Code, Message: appErr.Message}
}

type QueryContext struct {
	RequestID         string
	Query             string
	Lat               *float64
	Lng               *float64
	LocationDefaulted bool
	Mode              string
	Urgency           geo.Urgency
	ForcedIntent      Intent

	Intent     Intent
	Confidence Confidence

	RetrievedDocuments []*entity.ScoredDocument
	RAGAnswer          string
	RAGSources         []knowledge.Source
	RAGConfidence      Confidence

	RouteSummary     string
	DistanceEstimate string
	RouteSteps       []string
	GeoReasoning     []string
	GeoConfidence    Confidence
	Route            *entity.Route
	StartLocation    *entity.Location
	EndLocation      *entity.Location

	ServiceCategory string
	NearbyServices  []*entity.POI

	Reasoning   []string
	FinalAnswer string
	Sources     []string
	Error       *ErrorInfo
}

func newQueryContext(in Input) *QueryContext {
	return &QueryContext{
		RequestID:    in.RequestID,
		Query:        in.Query,
		Lat:          in.Lat,
		Lng:          in.Lng,
		Mode:         in.Mode,
		Urgency:      geo.Urgency(in.Urgency),
		ForcedIntent: in.ForcedIntent,
	}
}

// Point is the user's position, or the zero point before UserInput ran.
func (q *QueryContext) Point() geo.Point {
	if q.Lat == nil || q.Lng == nil {
		return geo.Point{}
	}
	return geo.NewPoint(*q.Lat, *q.Lng)
}

// Patch is a partial update. Nil fields leave the context untouched and
// Reasoning lines are appended.
type Patch struct {
	Query             *string
	Lat               *float64
	Lng               *float64
	LocationDefaulted *bool
	Mode              *string
	Urgency           *geo.Urgency

	Intent     *Intent
	Confidence *Confidence

	RetrievedDocuments []*entity.ScoredDocument
	RAGAnswer          *string
	RAGSources         []knowledge.Source
	RAGConfidence      *Confidence

	RouteSummary     *string
	DistanceEstimate *string
	RouteSteps       []string
	GeoReasoning     []string
	GeoConfidence    *Confidence
	Route            *entity.Route
	StartLocation    *entity.Location
	EndLocation      *entity.Location

	ServiceCategory *string
	NearbyServices  []*entity.POI

	Reasoning   []string
	FinalAnswer *string
	Sources     []string
	Error       *ErrorInfo
}

func ptr[T any](v T) *T {
	return &v
}

// Apply merges p into q.
func (q *QueryContext) Apply(p Patch) {
	setIf(&q.Query, p.Query)
	if p.Lat != nil {
		q.Lat = p.Lat
	}
	if p.Lng != nil {
		q.Lng = p.Lng
	}
	setIf(&q.LocationDefaulted, p.LocationDefaulted)
	setIf(&q.Mode, p.Mode)
	setIf(&q.Urgency, p.Urgency)
	setIf(&q.Intent, p.Intent)
	setIf(&q.Confidence, p.Confidence)

	if p.RetrievedDocuments != nil {
		q.RetrievedDocuments = p.RetrievedDocuments
	}
	setIf(&q.RAGAnswer, p.RAGAnswer)
	if p.RAGSources != nil {
		q.RAGSources = p.RAGSources
	}
	setIf(&q.RAGConfidence, p.RAGConfidence)

	setIf(&q.RouteSummary, p.RouteSummary)
	setIf(&q.DistanceEstimate, p.DistanceEstimate)
	if p.RouteSteps != nil {
		q.RouteSteps = p.RouteSteps
	}
	if p.GeoReasoning != nil {
		q.GeoReasoning = p.GeoReasoning
	}
	setIf(&q.GeoConfidence, p.GeoConfidence)
	if p.Route != nil {
		q.Route = p.Route
	}
	if p.StartLocation != nil {
		q.StartLocation = p.StartLocation
	}
	if p.EndLocation != nil {
		q.EndLocation = p.EndLocation
	}

	setIf(&q.ServiceCategory, p.ServiceCategory)
	if p.NearbyServices != nil {
		q.NearbyServices = p.NearbyServices
	}

	q.Reasoning = append(q.Reasoning, p.Reasoning...)
	setIf(&q.FinalAnswer, p.FinalAnswer)
	if p.Sources != nil {
		q.Sources = p.Sources
	}
	if p.Error != nil {
		q.Error = p.Error
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Result is the caller-facing view of a finished context. Geo fields stay
// nil when the request never touched the geo pipeline.
type Result struct {
	RequestID        string      `json:"request_id,omitempty"`
	Answer           string      `json:"answer"`
	Intent           Intent      `json:"intent"`
	Confidence       Confidence  `json:"confidence"`
	Sources          []string    `json:"sources"`
	ReasoningSteps   []string    `json:"reasoning_steps"`
	StartName        string      `json:"start_name,omitempty"`
	EndName          string      `json:"end_name,omitempty"`
	StartCoordinates *geo.Point  `json:"start_coordinates"`
	EndCoordinates   *geo.Point  `json:"end_coordinates"`
	RouteCoords      []geo.Point `json:"route_coords"`
	DistanceEstimate *string     `json:"distance_estimate"`
	RAGConfidence    *Confidence `json:"rag_confidence"`
	GeoConfidence    *Confidence `json:"geo_confidence"`
	ServiceCategory  string      `json:"service_category,omitempty"`
	Error            *ErrorInfo  `json:"error,omitempty"`
}

func (q *QueryContext) Result() *Result {
	r := &Result{
		RequestID:       q.RequestID,
		Answer:          q.FinalAnswer,
		Intent:          q.Intent,
		Confidence:      q.Confidence,
		Sources:         q.Sources,
		ReasoningSteps:  q.Reasoning,
		ServiceCategory: q.ServiceCategory,
		Error:           q.Error,
	}
	if r.Sources == nil {
		r.Sources = []string{}
	}
	if q.StartLocation != nil {
		r.StartName = q.StartLocation.Name
		r.StartCoordinates = ptr(q.StartLocation.Point)
	}
	if q.EndLocation != nil {
		r.EndName = q.EndLocation.Name
		r.EndCoordinates = ptr(q.EndLocation.Point)
	}
	if q.Route != nil {
		r.RouteCoords = q.Route.Waypoints
	}
	if q.DistanceEstimate != "" {
		r.DistanceEstimate = ptr(q.DistanceEstimate)
	}
	if q.RAGConfidence != "" {
		r.RAGConfidence = ptr(q.RAGConfidence)
	}
	if q.GeoConfidence != "" {
		r.GeoConfidence = ptr(q.GeoConfidence)
	}
	return r
}
