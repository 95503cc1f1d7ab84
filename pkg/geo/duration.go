package geo

import (
	"math"
	"strings"
)

type Urgency string

const (
	UrgencyNormal        Urgency = "normal"
	UrgencyExam          Urgency = "exam"
	UrgencyAccessibility Urgency = "accessibility"
)

// ParseUrgency falls back to normal for unknown values.
func ParseUrgency(s string) Urgency {
	switch Urgency(strings.ToLower(strings.TrimSpace(s))) {
	case UrgencyExam:
		return UrgencyExam
	case UrgencyAccessibility:
		return UrgencyAccessibility
	default:
		return UrgencyNormal
	}
}

func (u Urgency) Factor() float64 {
	switch u {
	case UrgencyExam:
		return 0.8
	case UrgencyAccessibility:
		return 1.3
	default:
		return 1.0
	}
}

// WalkingSeconds converts meters to seconds at the given speed. A non-positive
// speed uses WalkingSpeed.
func WalkingSeconds(meters, speed float64) float64 {
	if speed <= 0 {
		speed = WalkingSpeed
	}
	return meters / speed
}

// AdjustedDuration applies the urgency factor and returns the adjusted seconds
// and whole minutes. Minutes never drop below 1.
func AdjustedDuration(seconds float64, urgency Urgency) (float64, int) {
	adjusted := seconds * urgency.Factor()
	minutes := int(math.Ceil(adjusted / 60))
	if minutes < 1 {
		minutes = 1
	}
	return adjusted, minutes
}
