package testfixtures

import (
	"testing"

	"github.com/example/workshop-planner/internal/catalog"
)

// ReservedActivities returns the four structural entries every catalog needs.
func ReservedActivities() []catalog.Activity {
	return []catalog.Activity{
		{ID: catalog.WelcomeID, Name: "Welcome", Category: catalog.CategoryFoundation, BaseTime: 15, MinParticipants: 1, MaxParticipants: 1000},
		{ID: catalog.ClosingID, Name: "Closing", Category: catalog.CategoryFoundation, BaseTime: 15, MinParticipants: 1, MaxParticipants: 1000},
		{ID: catalog.ShortBreakID, Name: "Short break", Category: catalog.CategoryFoundation, BaseTime: 10, MinParticipants: 1, MaxParticipants: 1000},
		{ID: catalog.LongBreakID, Name: "Long break", Category: catalog.CategoryFoundation, BaseTime: 15, MinParticipants: 1, MaxParticipants: 1000},
	}
}

// ActivityOption configures a synthetic activity.
type ActivityOption func(*catalog.Activity)

// NewActivity returns a content activity with a fixed base time, no scaling
// and a participant range of [1, 1000].
func NewActivity(id string, baseTime int, opts ...ActivityOption) catalog.Activity {
	a := catalog.Activity{
		ID:              id,
		Name:            "Activity " + id,
		Category:        catalog.CategoryPlanning,
		BaseTime:        baseTime,
		MinParticipants: 1,
		MaxParticipants: 1000,
		Description:     "Description of " + id,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// WithScaling sets the per-participant scaling factor.
func WithScaling(factor float64) ActivityOption {
	return func(a *catalog.Activity) {
		a.ScalingFactor = factor
	}
}

// WithParticipantRange sets the feasible group size.
func WithParticipantRange(min, max int) ActivityOption {
	return func(a *catalog.Activity) {
		a.MinParticipants = min
		a.MaxParticipants = max
	}
}

// NewCatalog builds a catalog from the reserved entries followed by
// activities, failing the test on invalid input.
func NewCatalog(tb testing.TB, activities []catalog.Activity, purposes []catalog.Purpose) *catalog.Catalog {
	tb.Helper()
	all := append(ReservedActivities(), activities...)
	cat, err := catalog.New(all, purposes)
	if err != nil {
		tb.Fatalf("build catalog: %v", err)
	}
	return cat
}

// DefaultCatalog returns the embedded production catalog.
func DefaultCatalog(tb testing.TB) *catalog.Catalog {
	tb.Helper()
	cat, err := catalog.Default()
	if err != nil {
		tb.Fatalf("load default catalog: %v", err)
	}
	return cat
}
