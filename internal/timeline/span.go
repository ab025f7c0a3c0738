package timeline

// Span is a contiguous interval on the agenda.
type Span struct {
	Start Clock
	End   Clock
}

// Duration returns the span length in minutes, counting across midnight.
func (s Span) Duration() int {
	return wrapDiff(s.End, s.Start)
}

// Layout places durations back to back starting at start.
func Layout(start Clock, durations []int) []Span {
	spans := make([]Span, 0, len(durations))
	cursor := start
	for _, d := range durations {
		spans = append(spans, Span{Start: cursor, End: cursor.Add(d)})
		cursor = cursor.Add(d)
	}
	return spans
}

// LayoutFrom recomputes spans from index from onward, keeping earlier spans
// as they are. The cursor for index from is start plus the durations before it.
func LayoutFrom(start Clock, durations []int, from int) []Span {
	if from < 0 {
		from = 0
	}
	if from > len(durations) {
		from = len(durations)
	}
	cursor := start
	for _, d := range durations[:from] {
		cursor = cursor.Add(d)
	}
	return Layout(cursor, durations[from:])
}
