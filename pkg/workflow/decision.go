package workflow

type Branch int

const (
	BranchCompose Branch = iota
	BranchGeo
	BranchKnowledge
)

func (b Branch) String() string {
	switch b {
	case BranchGeo:
		return "geo"
	case BranchKnowledge:
		return "knowledge"
	default:
		return "compose"
	}
}

// DecideAfterIntent picks the first pipeline. Knowledge runs first for mixed
// requests so the answer text leads the directions.
func DecideAfterIntent(intent Intent) Branch {
	switch intent {
	case IntentNavigation, IntentNearby:
		return BranchGeo
	case IntentUniversityInfo, IntentMixed:
		return BranchKnowledge
	default:
		return BranchCompose
	}
}

func DecideAfterGeneration(intent Intent) Branch {
	if intent == IntentMixed {
		return BranchGeo
	}
	return BranchCompose
}
