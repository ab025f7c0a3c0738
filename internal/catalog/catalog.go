package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Reserved activity identifiers. The schedule builder places these itself and
// never draws them from the random pool.
const (
	WelcomeID    = "welcome"
	ClosingID    = "closing"
	ShortBreakID = "short-break"
	LongBreakID  = "long-break"
)

var reservedIDs = []string{WelcomeID, ClosingID, ShortBreakID, LongBreakID}

var (
	// ErrUnknownActivity is returned when an activity id is not part of the catalog.
	ErrUnknownActivity = errors.New("catalog: unknown activity")
	// ErrUnknownPurpose is returned when a purpose id is not part of the catalog.
	ErrUnknownPurpose = errors.New("catalog: unknown purpose")
)

// Category groups activities by intent.
type Category string

const (
	CategoryFoundation Category = "Foundation"
	CategoryPlanning   Category = "Planning"
	CategoryDeciding   Category = "Deciding"
	CategoryConnecting Category = "Connecting"
	CategoryLearning   Category = "Learning"
)

// Activity describes one facilitation structure.
type Activity struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Category        Category `json:"category" yaml:"category"`
	BaseTime        int      `json:"baseTime" yaml:"base_time"`
	ScalingFactor   float64  `json:"scalingFactor" yaml:"scaling_factor"`
	MinParticipants int      `json:"minParticipants" yaml:"min_participants"`
	MaxParticipants int      `json:"maxParticipants" yaml:"max_participants"`
	Description     string   `json:"description,omitempty" yaml:"description"`
	Instructions    string   `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Icon            string   `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Supports reports whether the activity can run with the given group size.
func (a Activity) Supports(participants int) bool {
	return participants >= a.MinParticipants && participants <= a.MaxParticipants
}

// Purpose is a workshop intent that biases activity selection.
type Purpose struct {
	ID                    string   `json:"id" yaml:"id"`
	Name                  string   `json:"name" yaml:"name"`
	Description           string   `json:"description,omitempty" yaml:"description"`
	RecommendedStructures []string `json:"recommendedStructures" yaml:"recommended_structures"`
}

// IsReserved reports whether id names one of the builder-managed activities.
func IsReserved(id string) bool {
	for _, reserved := range reservedIDs {
		if id == reserved {
			return true
		}
	}
	return false
}

// IsBreak reports whether id names a break activity.
func IsBreak(id string) bool {
	return id == ShortBreakID || id == LongBreakID
}

// Catalog is an immutable, indexed set of activities and purposes.
type Catalog struct {
	activities []Activity
	purposes   []Purpose
	byID       map[string]int
	purposeIdx map[string]int
}

// New validates the supplied definitions and builds a catalog. The slices are
// copied; later mutation by the caller does not affect the catalog.
func New(activities []Activity, purposes []Purpose) (*Catalog, error) {
	c := &Catalog{
		activities: make([]Activity, 0, len(activities)),
		purposes:   make([]Purpose, 0, len(purposes)),
		byID:       make(map[string]int, len(activities)),
		purposeIdx: make(map[string]int, len(purposes)),
	}

	problems := make([]string, 0)
	for _, a := range activities {
		a.ID = strings.TrimSpace(a.ID)
		switch {
		case a.ID == "":
			problems = append(problems, "activity with empty id")
			continue
		case a.BaseTime < 0:
			problems = append(problems, fmt.Sprintf("%s: negative base time", a.ID))
			continue
		case a.ScalingFactor < 0:
			problems = append(problems, fmt.Sprintf("%s: negative scaling factor", a.ID))
			continue
		case a.MinParticipants > a.MaxParticipants:
			problems = append(problems, fmt.Sprintf("%s: min participants exceeds max", a.ID))
			continue
		}
		if _, dup := c.byID[a.ID]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate id", a.ID))
			continue
		}
		c.byID[a.ID] = len(c.activities)
		c.activities = append(c.activities, a)
	}

	for _, id := range reservedIDs {
		if _, ok := c.byID[id]; !ok {
			problems = append(problems, fmt.Sprintf("missing reserved activity %q", id))
		}
	}

	for _, p := range purposes {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			problems = append(problems, "purpose with empty id")
			continue
		}
		if _, dup := c.purposeIdx[p.ID]; dup {
			problems = append(problems, fmt.Sprintf("purpose %s: duplicate id", p.ID))
			continue
		}
		p.RecommendedStructures = append([]string(nil), p.RecommendedStructures...)
		c.purposeIdx[p.ID] = len(c.purposes)
		c.purposes = append(c.purposes, p)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("catalog: invalid definitions: %s", strings.Join(problems, "; "))
	}
	return c, nil
}

// Activity looks up an activity by id.
func (c *Catalog) Activity(id string) (Activity, error) {
	if c == nil {
		return Activity{}, ErrUnknownActivity
	}
	idx, ok := c.byID[id]
	if !ok {
		return Activity{}, fmt.Errorf("%w: %s", ErrUnknownActivity, id)
	}
	return c.activities[idx], nil
}

// MustActivity is Activity for ids the catalog is known to contain, such as
// the reserved ones validated by New.
func (c *Catalog) MustActivity(id string) Activity {
	a, err := c.Activity(id)
	if err != nil {
		panic(err)
	}
	return a
}

// Activities returns every activity in catalog order.
func (c *Catalog) Activities() []Activity {
	if c == nil {
		return nil
	}
	return append([]Activity(nil), c.activities...)
}

// Purpose looks up a purpose tag by id.
func (c *Catalog) Purpose(id string) (Purpose, error) {
	if c == nil {
		return Purpose{}, ErrUnknownPurpose
	}
	idx, ok := c.purposeIdx[id]
	if !ok {
		return Purpose{}, fmt.Errorf("%w: %s", ErrUnknownPurpose, id)
	}
	p := c.purposes[idx]
	p.RecommendedStructures = append([]string(nil), p.RecommendedStructures...)
	return p, nil
}

// Purposes returns every purpose tag in catalog order.
func (c *Catalog) Purposes() []Purpose {
	if c == nil {
		return nil
	}
	out := make([]Purpose, 0, len(c.purposes))
	for _, p := range c.purposes {
		p.RecommendedStructures = append([]string(nil), p.RecommendedStructures...)
		out = append(out, p)
	}
	return out
}

// Feasible returns the non-reserved activities whose participant range
// includes participants, in catalog order.
func (c *Catalog) Feasible(participants int) []Activity {
	if c == nil {
		return nil
	}
	out := make([]Activity, 0, len(c.activities))
	for _, a := range c.activities {
		if IsReserved(a.ID) || !a.Supports(participants) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Recommended returns the union of recommended activity ids for the given
// purposes. Unknown purpose ids contribute nothing.
func (c *Catalog) Recommended(purposeIDs []string) map[string]struct{} {
	out := make(map[string]struct{})
	if c == nil {
		return out
	}
	for _, id := range purposeIDs {
		idx, ok := c.purposeIdx[id]
		if !ok {
			continue
		}
		for _, structureID := range c.purposes[idx].RecommendedStructures {
			out[structureID] = struct{}{}
		}
	}
	return out
}
