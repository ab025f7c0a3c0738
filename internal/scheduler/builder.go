package scheduler

import (
	"github.com/example/workshop-planner/internal/catalog"
	"github.com/example/workshop-planner/internal/timeline"
)

const (
	// the fill loop stops once this little budget is left
	minRemainingBudget = 20
	breakInterval      = 60
)

// Request carries the generation parameters. Values are taken as given;
// callers clamp them to the supported ranges first.
type Request struct {
	Hours        int
	Participants int
	Purposes     []string
	Context      string
	Goals        string
	Start        timeline.Clock
}

// Plan is the output of one generation run.
type Plan struct {
	Sessions  []Session
	TotalTime int
}

// Builder turns a Request into a timed session list. It keeps no state
// between calls and is safe for concurrent use when its RandomSource is.
type Builder struct {
	catalog *catalog.Catalog
	random  RandomSource
}

// NewBuilder constructs a builder over an immutable catalog. A nil random
// source falls back to DefaultRandom.
func NewBuilder(cat *catalog.Catalog, random RandomSource) *Builder {
	if random == nil {
		random = DefaultRandom()
	}
	return &Builder{catalog: cat, random: random}
}

// Catalog exposes the catalog the builder draws from.
func (b *Builder) Catalog() *catalog.Catalog {
	if b == nil {
		return nil
	}
	return b.catalog
}

// Pool returns the candidate activities for a request: feasible for the
// group size and, when purposes are given, narrowed to their recommended
// structures unless that leaves nothing.
func (b *Builder) Pool(participants int, purposes []string) []catalog.Activity {
	feasible := b.catalog.Feasible(participants)
	if len(purposes) == 0 {
		return feasible
	}
	recommended := b.catalog.Recommended(purposes)
	narrowed := make([]catalog.Activity, 0, len(feasible))
	for _, a := range feasible {
		if _, ok := recommended[a.ID]; ok {
			narrowed = append(narrowed, a)
		}
	}
	if len(narrowed) == 0 {
		return feasible
	}
	return narrowed
}

// Build runs one randomized generation.
func (b *Builder) Build(req Request) Plan {
	bookend := BookendDuration(req.Hours)
	remaining := req.Hours*60 - 2*bookend

	sessions := make([]Session, 0, 16)
	cursor := 0
	appendSession := func(a catalog.Activity, duration int) {
		s := Session{
			Activity: a,
			Duration: duration,
		}
		if catalog.IsBreak(a.ID) {
			s.IsBreak = true
			s.BreakType = BreakShort
			if a.ID == catalog.LongBreakID {
				s.BreakType = BreakLong
			}
		}
		sessions = append(sessions, s)
		cursor += duration
	}

	appendSession(b.catalog.MustActivity(catalog.WelcomeID), bookend)
	lastBreak := cursor

	pool := b.Pool(req.Participants, req.Purposes)
	for remaining > minRemainingBudget && len(pool) > 0 {
		if since := cursor - lastBreak; since >= breakInterval {
			minutes, breakID := breakDuration(since)
			appendSession(b.catalog.MustActivity(breakID), minutes)
			lastBreak = cursor
			remaining -= minutes
		}

		idx := b.random.IntN(len(pool))
		picked := pool[idx]
		if minutes := ActivityDuration(picked, req.Participants); minutes <= remaining {
			appendSession(picked, minutes)
			remaining -= minutes
		}
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	appendSession(b.catalog.MustActivity(catalog.ClosingID), bookend)

	AssignPhases(sessions)
	for i := range sessions {
		sessions[i].ID = sessionID(i)
		Narrate(&sessions[i], req.Context)
	}
	Retime(sessions, req.Start, 0)
	LinkTransitions(sessions)

	return Plan{Sessions: sessions, TotalTime: cursor}
}
