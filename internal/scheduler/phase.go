package scheduler

import "github.com/example/workshop-planner/internal/catalog"

var middlePhases = [3]Phase{PhaseDiverge, PhaseExplore, PhaseConverge}

// ClassifyPhase maps a session position to its phase. Welcome is always
// Open and closing always Commit; everything else, breaks included, falls
// into one of three equal buckets of the full session count.
func ClassifyPhase(index, total int, activityID string) Phase {
	switch activityID {
	case catalog.WelcomeID:
		return PhaseOpen
	case catalog.ClosingID:
		return PhaseCommit
	}
	if total <= 0 || index < 0 {
		return PhaseDiverge
	}
	bucket := index * 3 / total
	if bucket > 2 {
		bucket = 2
	}
	return middlePhases[bucket]
}

// AssignPhases classifies every session against the final session count.
func AssignPhases(sessions []Session) {
	for i := range sessions {
		sessions[i].Phase = ClassifyPhase(i, len(sessions), sessions[i].Activity.ID)
	}
}
