package scheduler

import (
	"fmt"

	"github.com/example/workshop-planner/internal/catalog"
)

// Phase is the narrative stage a session belongs to.
type Phase string

const (
	PhaseOpen     Phase = "Open"
	PhaseDiverge  Phase = "Diverge"
	PhaseExplore  Phase = "Explore"
	PhaseConverge Phase = "Converge"
	PhaseCommit   Phase = "Commit"
)

var phaseOrder = map[Phase]int{
	PhaseOpen:     0,
	PhaseDiverge:  1,
	PhaseExplore:  2,
	PhaseConverge: 3,
	PhaseCommit:   4,
}

// Valid reports whether p is one of the five known phases.
func (p Phase) Valid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// Order returns the position of p in the narrative arc, or -1 when unknown.
func (p Phase) Order() int {
	if o, ok := phaseOrder[p]; ok {
		return o
	}
	return -1
}

// BreakType distinguishes short and long breaks.
type BreakType string

const (
	BreakShort BreakType = "short"
	BreakLong  BreakType = "long"
)

// CustomData holds facilitator overrides for a session's narrative fields.
// Empty fields leave the generated text in place.
type CustomData struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Purpose      string `json:"purpose,omitempty"`
	Output       string `json:"output,omitempty"`
	Transition   string `json:"transition,omitempty"`
	Risks        string `json:"risks,omitempty"`
	Mitigation   string `json:"mitigation,omitempty"`
}

// IsZero reports whether no override is set.
func (c CustomData) IsZero() bool {
	return c == CustomData{}
}

// Merge overlays the non-empty fields of other onto c.
func (c CustomData) Merge(other CustomData) CustomData {
	pick := func(current, next string) string {
		if next != "" {
			return next
		}
		return current
	}
	return CustomData{
		Title:        pick(c.Title, other.Title),
		Description:  pick(c.Description, other.Description),
		Instructions: pick(c.Instructions, other.Instructions),
		Purpose:      pick(c.Purpose, other.Purpose),
		Output:       pick(c.Output, other.Output),
		Transition:   pick(c.Transition, other.Transition),
		Risks:        pick(c.Risks, other.Risks),
		Mitigation:   pick(c.Mitigation, other.Mitigation),
	}
}

// Session is one scheduled activity with concrete wall-clock timing. Its JSON
// form is the persisted record shape.
type Session struct {
	ID           string           `json:"id"`
	Activity     catalog.Activity `json:"structure"`
	Duration     int              `json:"duration"`
	StartTime    string           `json:"startTime"`
	EndTime      string           `json:"endTime"`
	Phase        Phase            `json:"phase"`
	Purpose      string           `json:"purpose"`
	Output       string           `json:"output"`
	Transition   string           `json:"transition"`
	Risks        string           `json:"risks"`
	Mitigation   string           `json:"mitigation"`
	CustomData   *CustomData      `json:"customData,omitempty"`
	IsCustomized bool             `json:"isCustomized,omitempty"`
	IsBreak      bool             `json:"isBreak,omitempty"`
	BreakType    BreakType        `json:"breakType,omitempty"`
}

// sessionID renders the positional identifier used for generated sessions.
func sessionID(index int) string {
	return fmt.Sprintf("session-%d", index)
}

// CloneSessions returns a deep copy of sessions.
func CloneSessions(sessions []Session) []Session {
	if sessions == nil {
		return nil
	}
	out := make([]Session, len(sessions))
	copy(out, sessions)
	for i := range out {
		if out[i].CustomData != nil {
			cd := *out[i].CustomData
			out[i].CustomData = &cd
		}
	}
	return out
}

// TotalDuration sums session durations.
func TotalDuration(sessions []Session) int {
	total := 0
	for _, s := range sessions {
		total += s.Duration
	}
	return total
}

// ActivityIDs lists the activity id of each session in order.
func ActivityIDs(sessions []Session) []string {
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.Activity.ID)
	}
	return ids
}
