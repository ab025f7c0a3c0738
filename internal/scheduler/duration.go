package scheduler

import (
	"math"

	"github.com/example/workshop-planner/internal/catalog"
)

const (
	// DurationStep is the quantum all activity durations are rounded up to.
	DurationStep = 5
	// float noise below this is ignored before rounding up
	durationEpsilon = 1e-9
)

// ActivityDuration returns the minutes an activity takes for a group size:
// baseTime plus scalingFactor per participant, rounded up to the next
// multiple of five and never below five.
func ActivityDuration(a catalog.Activity, participants int) int {
	raw := float64(a.BaseTime) + a.ScalingFactor*float64(participants)
	steps := int(math.Ceil(raw/DurationStep - durationEpsilon))
	minutes := steps * DurationStep
	if minutes < DurationStep {
		return DurationStep
	}
	return minutes
}

// BookendDuration returns the welcome and closing length for a workshop of
// the given number of hours.
func BookendDuration(hours int) int {
	switch {
	case hours <= 2:
		return 10
	case hours <= 4:
		return 15
	case hours <= 6:
		return 20
	default:
		return 30
	}
}

// breakDuration returns the length of a break inserted after sinceLast
// minutes of work.
func breakDuration(sinceLast int) (int, string) {
	if sinceLast >= 120 {
		return 15, catalog.LongBreakID
	}
	return 10, catalog.ShortBreakID
}
