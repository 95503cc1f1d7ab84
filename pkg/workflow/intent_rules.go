package workflow

import (
	"regexp"
	"strings"

	"astu-route-be/pkg/resolver"
)

var (
	navigationCue = regexp.MustCompile(`(?i)\b(where\s+is|where\s+are|how\s+(do|can)\s+i\s+(get|go|reach)|how\s+to\s+(get|go|reach)|navigate|directions?|route\s+to|way\s+to|take\s+me|go\s+to|get\s+to|walk\s+to|locate)\b|\bfrom\s+.+\s+to\s+`)
	infoCue       = regexp.MustCompile(`(?i)\b(hours?|when|open|close|requirements?|policy|policies|rules?|fees?|cost|schedule|contact|register|registration|what\s+is|what\s+are|who|tell\s+me\s+about|deadline)\b`)
	proximityCue  = regexp.MustCompile(`(?i)\b(near|nearby|nearest|closest|around|close\s+to)\b`)
)

// campusServices are service words that also name places on campus, so they
// only imply a nearby search when paired with a proximity word.
var campusServices = map[string]struct{}{
	"library": {},
	"cafe":    {},
	"clinic":  {},
}

// ClassifyByRules is the keyword fallback used when the classifier model is
// unavailable. ok is false when no rule matched.
func ClassifyByRules(query string) (Intent, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false
	}

	nav := navigationCue.MatchString(query)
	info := infoCue.MatchString(query)

	if category, found := resolver.DetectServiceCategory(query); found {
		_, onCampus := campusServices[category]
		if proximityCue.MatchString(query) || (!onCampus && !nav) {
			return IntentNearby, true
		}
	}

	switch {
	case nav && info:
		return IntentMixed, true
	case nav:
		return IntentNavigation, true
	default:
		return "", false
	}
}
