package workflow

import (
	"fmt"
	"strings"
)

const (
	noInformationText = "No information available"
	unclassifiedText  = "I'm not sure how to help with that. Please try rephrasing your question."
	apologyText       = "Sorry, something went wrong while answering your question. Please try again."
	maxListedServices = 5
)

// Compose renders the final answer for the detected intent. It reads nothing
// but q and tolerates any field being empty.
func Compose(q QueryContext) Patch {
	var (
		answer  string
		sources []string
		line    string
	)

	switch q.Intent {
	case IntentNavigation:
		answer = navigationText(q)
		line = "Here is your recommended path"
	case IntentNearby:
		answer = nearbyText(q)
		line = "Here are the nearby services"
	case IntentUniversityInfo:
		answer = q.RAGAnswer
		if answer == "" {
			answer = noInformationText
		}
		sources = sourceTitles(q)
		line = "Answer based on verified ASTU sources"
	case IntentMixed:
		knowledge := q.RAGAnswer
		if knowledge == "" {
			knowledge = noInformationText
		}
		answer = knowledge + "\n\n" + navigationText(q)
		sources = sourceTitles(q)
		line = "Combined information and navigation guidance"
	default:
		answer = unclassifiedText
		line = "Unable to classify request"
	}

	if sources == nil {
		sources = []string{}
	}
	return Patch{
		FinalAnswer: ptr(answer),
		Sources:     sources,
		Reasoning:   []string{line},
	}
}

func navigationText(q QueryContext) string {
	summary := q.RouteSummary
	if summary == "" {
		summary = "No route available"
	}
	distance := q.DistanceEstimate
	if distance == "" {
		distance = "Unknown distance"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", summary)
	fmt.Fprintf(&b, "**Estimated Distance:** %s\n\n", distance)
	if len(q.RouteSteps) > 0 {
		b.WriteString("**Route Steps:**\n")
		for _, step := range q.RouteSteps {
			fmt.Fprintf(&b, "- %s\n", step)
		}
	}
	if len(q.GeoReasoning) > 0 {
		b.WriteString("\n**Why this route:**\n")
		for _, reason := range q.GeoReasoning {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
	}
	return strings.TrimSpace(b.String())
}

func nearbyText(q QueryContext) string {
	category := q.ServiceCategory
	if category == "" {
		category = "services"
	}
	summary := q.RouteSummary
	if summary == "" {
		summary = fmt.Sprintf("No %s found nearby", category)
	}
	if len(q.NearbyServices) == 0 {
		return summary
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", summary)
	fmt.Fprintf(&b, "**Top %ss near ASTU:**\n\n", titleCase(category))
	for i, svc := range q.NearbyServices {
		if i == maxListedServices {
			break
		}
		if svc == nil {
			continue
		}
		fmt.Fprintf(&b, "%d. **%s** - %s\n", i+1, svc.Name, distanceText(svc.DistanceKm))
	}
	return strings.TrimSpace(b.String())
}

func sourceTitles(q QueryContext) []string {
	titles := make([]string, 0, len(q.RAGSources))
	for _, s := range q.RAGSources {
		titles = append(titles, s.Title)
	}
	return titles
}

func distanceText(km *float64) string {
	if km == nil {
		return "distance unknown"
	}
	return fmt.Sprintf("%.2fkm away", *km)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
