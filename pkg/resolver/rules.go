package resolver

import (
	"strings"
	"unicode"
)

// CategoryRule maps query words onto a stored POI category. Rules are tried
// in order and the first rule owning a word wins.
type CategoryRule struct {
	Category string
	Keywords []string
}

var CategoryRules = []CategoryRule{
	{Category: "library", Keywords: []string{"library", "libraries", "books", "reading"}},
	{Category: "lab", Keywords: []string{"lab", "labs", "laboratory", "laboratories", "workshop"}},
	{Category: "cafe", Keywords: []string{"cafe", "cafeteria", "canteen", "coffee", "lounge"}},
	{Category: "mosque", Keywords: []string{"mosque", "masjid", "prayer"}},
	{Category: "dormitory", Keywords: []string{"dorm", "dorms", "dormitory", "hostel", "residence"}},
	{Category: "office", Keywords: []string{"office", "registrar", "administration", "admin", "dean"}},
	{Category: "gate", Keywords: []string{"gate", "entrance"}},
	{Category: "classroom", Keywords: []string{"classroom", "lecture", "class"}},
	{Category: "clinic", Keywords: []string{"clinic", "health", "medical", "doctor"}},
	{Category: "sports", Keywords: []string{"stadium", "gym", "sports", "field", "pitch"}},
	{Category: "bank", Keywords: []string{"bank", "atm", "cash"}},
}

// ServiceCategories are the nearby-service kinds accepted by the API.
var ServiceCategories = []string{
	"mosque", "pharmacy", "salon", "cafe", "restaurant", "bank", "atm", "hospital",
	"clinic", "market", "supermarket", "bakery", "library", "hotel", "taxi",
}

// ServiceRules detect a service category in free text. Order matters: "atm"
// is checked before "bank" so cash machine queries stay specific.
var ServiceRules = []CategoryRule{
	{Category: "mosque", Keywords: []string{"mosque", "mosques", "masjid", "pray", "prayer"}},
	{Category: "pharmacy", Keywords: []string{"pharmacy", "pharmacies", "drugstore", "chemist", "medicine"}},
	{Category: "salon", Keywords: []string{"salon", "salons", "barber", "haircut", "hair"}},
	{Category: "cafe", Keywords: []string{"cafe", "cafes", "coffee"}},
	{Category: "restaurant", Keywords: []string{"restaurant", "restaurants", "food", "eat", "lunch", "dinner"}},
	{Category: "atm", Keywords: []string{"atm", "atms", "cash"}},
	{Category: "bank", Keywords: []string{"bank", "banks"}},
	{Category: "hospital", Keywords: []string{"hospital", "hospitals", "emergency"}},
	{Category: "clinic", Keywords: []string{"clinic", "clinics", "doctor"}},
	{Category: "supermarket", Keywords: []string{"supermarket", "supermarkets", "grocery", "groceries"}},
	{Category: "market", Keywords: []string{"market", "markets", "shop", "shops"}},
	{Category: "bakery", Keywords: []string{"bakery", "bakeries", "bread"}},
	{Category: "library", Keywords: []string{"library", "libraries"}},
	{Category: "hotel", Keywords: []string{"hotel", "hotels", "lodge", "guesthouse"}},
	{Category: "taxi", Keywords: []string{"taxi", "taxis", "cab", "bajaj", "transport"}},
}

var stopwords = map[string]struct{}{
	"the": {}, "where": {}, "how": {}, "get": {}, "find": {}, "from": {}, "and": {},
	"near": {}, "what": {}, "which": {}, "for": {}, "with": {}, "located": {}, "there": {},
	"this": {}, "that": {}, "can": {}, "you": {}, "does": {}, "campus": {}, "astu": {},
	"please": {}, "show": {}, "take": {}, "need": {}, "want": {}, "going": {}, "nearest": {},
	"closest": {}, "location": {}, "way": {}, "route": {}, "directions": {}, "navigate": {},
}

// Tokenize lowercases text and splits on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matchRule(rules []CategoryRule, token string) (string, bool) {
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if kw == token {
				return rule.Category, true
			}
		}
	}
	return "", false
}

// CategoryCandidates turns a query into ordered, de-duplicated category terms.
// Known synonyms map to their category; other words are kept as they are.
func CategoryCandidates(query string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, token := range Tokenize(query) {
		if len(token) < 3 {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		term := token
		if category, ok := matchRule(CategoryRules, token); ok {
			term = category
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

// DetectServiceCategory finds the first service rule mentioned in query.
func DetectServiceCategory(query string) (string, bool) {
	tokens := make(map[string]struct{})
	for _, t := range Tokenize(query) {
		tokens[t] = struct{}{}
	}
	for _, rule := range ServiceRules {
		for _, kw := range rule.Keywords {
			if _, ok := tokens[kw]; ok {
				return rule.Category, true
			}
		}
	}
	return "", false
}

func IsServiceCategory(category string) bool {
	category = strings.ToLower(strings.TrimSpace(category))
	for _, c := range ServiceCategories {
		if c == category {
			return true
		}
	}
	return false
}
