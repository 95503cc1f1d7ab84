package resolver

import (
	"context"
	"math"
	"regexp"
	"strings"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/entity"
	"astu-route-be/pkg/geo"
)

const (
	CurrentLocationName = "Current location"
	// nearestCandidateQuery is the broad lookup used to snap user coordinates
	// onto the closest known POI.
	nearestCandidateQuery = "campus location"
	nearestCandidateLimit = 50
	nearestFallbackKm     = 2.0
)

var (
	fromToPattern      = regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+?)\s*(?:[?.!]|$)`)
	destinationPattern = regexp.MustCompile(`(?i)\b(?:navigate\s+to|directions?\s+to|go\s+to|get\s+to|walk\s+to|take\s+me\s+to|where\s+is|find|locate|to)\s+(?:the\s+)?(.+?)\s*(?:[?.!]|$)`)
)

type QueryShape string

const (
	ShapeFromTo      QueryShape = "from_to"
	ShapeDestination QueryShape = "destination"
	ShapeBare        QueryShape = "bare"
)

type Endpoints struct {
	Start *entity.Location
	End   *entity.Location
	// StartDefaulted is set when the start is the campus default rather than
	// anything the user supplied.
	StartDefaulted bool
	Shape          QueryShape
	StartTier      Tier
	EndTier        Tier
}

// SplitLocations pulls the start and destination mentions out of a query.
// from is empty unless the query has a "from X to Y" shape.
func SplitLocations(query string) (from, to string, shape QueryShape) {
	if m := fromToPattern.FindStringSubmatch(query); m != nil {
		return cleanMention(m[1]), cleanMention(m[2]), ShapeFromTo
	}
	if m := destinationPattern.FindStringSubmatch(query); m != nil {
		return "", cleanMention(m[1]), ShapeDestination
	}
	return "", cleanMention(query), ShapeBare
}

func cleanMention(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "?.! ")
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "the ") {
		s = strings.TrimSpace(s[4:])
	}
	return s
}

// ExtractLocations resolves both route endpoints for a navigation query.
// current is the user's position when they actually sent one; fallback is
// the campus default used otherwise.
func (r *Resolver) ExtractLocations(ctx context.Context, query string, current *geo.Point, fallback geo.Point) (*Endpoints, error) {
	from, to, shape := SplitLocations(query)
	if to == "" {
		return nil, apperror.Validation("could not find a destination in the question")
	}

	out := &Endpoints{Shape: shape}

	end, err := r.ResolvePOIs(ctx, to, 1)
	if err != nil {
		return nil, err
	}
	if end.First() == nil {
		return nil, apperror.LocationNotFound(to)
	}
	out.End = entity.LocationFromPOI(end.First())
	out.EndTier = end.Tier

	if from != "" {
		start, err := r.ResolvePOIs(ctx, from, 1)
		if err != nil {
			return nil, err
		}
		if start.First() != nil {
			out.Start = entity.LocationFromPOI(start.First())
			out.StartTier = start.Tier
			return out, nil
		}
		r.logger.Info("RESOLVER", "Start not found, using user position", map[string]interface{}{"start": from})
	}

	if current != nil {
		nearest, err := r.NearestPOI(ctx, *current)
		if err != nil {
			return nil, err
		}
		if nearest != nil {
			out.Start = entity.LocationFromPOI(nearest)
		} else {
			out.Start = &entity.Location{Name: CurrentLocationName, Point: *current}
		}
		return out, nil
	}

	out.Start = &entity.Location{Name: CurrentLocationName, Point: fallback}
	out.StartDefaulted = true
	return out, nil
}

// NearestPOI returns the stored POI closest to p, or nil when none is known.
func (r *Resolver) NearestPOI(ctx context.Context, p geo.Point) (*entity.POI, error) {
	candidates, err := r.ResolvePOIs(ctx, nearestCandidateQuery, nearestCandidateLimit)
	if err != nil {
		return nil, err
	}

	pois := candidates.POIs
	if len(pois) == 0 {
		pois, err = r.pois.FindNearby(ctx, p, nearestFallbackKm, nearestCandidateLimit)
		if err != nil {
			return nil, apperror.Database("find nearby pois", err)
		}
	}

	var (
		best     *entity.POI
		bestDist = math.Inf(1)
	)
	for _, poi := range pois {
		if d := geo.Haversine(p, poi.Point()); d < bestDist {
			best, bestDist = poi, d
		}
	}
	return best, nil
}
