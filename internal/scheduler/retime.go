package scheduler

import "github.com/example/workshop-planner/internal/timeline"

// Retime recomputes start and end times left to right from index from,
// using each session's own duration. Sessions before from are untouched.
func Retime(sessions []Session, start timeline.Clock, from int) {
	durations := make([]int, len(sessions))
	for i, s := range sessions {
		durations[i] = s.Duration
	}
	if from < 0 {
		from = 0
	}
	spans := timeline.LayoutFrom(start, durations, from)
	for i, span := range spans {
		sessions[from+i].StartTime = span.Start.String()
		sessions[from+i].EndTime = span.End.String()
	}
}

// Entries converts sessions into timeline entries for verification.
func Entries(sessions []Session) []timeline.Entry {
	entries := make([]timeline.Entry, 0, len(sessions))
	for _, s := range sessions {
		entries = append(entries, timeline.Entry{
			ID:        s.ID,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Duration:  s.Duration,
		})
	}
	return entries
}
