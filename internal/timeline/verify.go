package timeline

// Entry is a rendered agenda slot as persisted: wall-clock strings plus the
// declared duration.
type Entry struct {
	ID        string
	StartTime string
	EndTime   string
	Duration  int
}

// IssueType describes the kind of timing inconsistency found between entries.
type IssueType string

const (
	// IssueGap indicates idle time between an entry and its predecessor.
	IssueGap IssueType = "gap"
	// IssueOverlap indicates an entry starts before its predecessor ends.
	IssueOverlap IssueType = "overlap"
	// IssueDurationMismatch indicates end minus start differs from the declared duration.
	IssueDurationMismatch IssueType = "duration_mismatch"
	// IssueMalformed indicates a start or end string that cannot be parsed.
	IssueMalformed IssueType = "malformed"
)

// Issue details a single inconsistency. Minutes carries the gap, overlap or
// mismatch size where applicable.
type Issue struct {
	Index   int
	EntryID string
	Type    IssueType
	Minutes int
}

// Verify checks that entries are contiguous and that each entry's clock span
// matches its declared duration. An empty result means the agenda is sound.
func Verify(entries []Entry) []Issue {
	issues := make([]Issue, 0)
	var (
		prevEnd  Clock
		havePrev bool
	)
	for i, e := range entries {
		start, errStart := ParseClock(e.StartTime)
		end, errEnd := ParseClock(e.EndTime)
		if errStart != nil || errEnd != nil {
			issues = append(issues, Issue{Index: i, EntryID: e.ID, Type: IssueMalformed})
			havePrev = false
			continue
		}

		if span := wrapDiff(end, start); span != wrapMinutes(e.Duration) {
			issues = append(issues, Issue{Index: i, EntryID: e.ID, Type: IssueDurationMismatch, Minutes: span - wrapMinutes(e.Duration)})
		}

		if havePrev && start.Minutes() != prevEnd.Minutes() {
			delta := wrapDiff(start, prevEnd)
			if delta < minutesPerDay/2 {
				issues = append(issues, Issue{Index: i, EntryID: e.ID, Type: IssueGap, Minutes: delta})
			} else {
				issues = append(issues, Issue{Index: i, EntryID: e.ID, Type: IssueOverlap, Minutes: minutesPerDay - delta})
			}
		}
		prevEnd = end
		havePrev = true
	}
	return issues
}

func wrapDiff(later, earlier Clock) int {
	return wrapMinutes(later.Minutes() - earlier.Minutes())
}

func wrapMinutes(m int) int {
	m %= minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return m
}
