package application

import (
	"fmt"
	"time"

	"github.com/example/workshop-planner/internal/scheduler"
)

// Supported generation ranges. Values outside them are clamped.
const (
	MinHours        = 1
	MaxHours        = 8
	MinParticipants = 3
	MaxParticipants = 200
	MaxPurposes     = 5
)

// GenerateParams captures caller provided generation fields.
type GenerateParams struct {
	Hours        int
	Participants int
	Purposes     []string
	Context      string
	Goals        string
	StartTime    string
}

// Workshop is a generated agenda plus the framing it was generated for.
type Workshop struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Duration     int                 `json:"duration"`
	Participants int                 `json:"participants"`
	Purposes     []string            `json:"purposes"`
	Context      string              `json:"context"`
	Goals        string              `json:"goals"`
	StartTime    string              `json:"startTime"`
	Sessions     []scheduler.Session `json:"sessions"`
	TotalTime    int                 `json:"totalTime"`
}

// Params returns the generation parameters the workshop was built from.
func (w Workshop) Params() GenerateParams {
	return GenerateParams{
		Hours:        w.Duration,
		Participants: w.Participants,
		Purposes:     append([]string(nil), w.Purposes...),
		Context:      w.Context,
		Goals:        w.Goals,
		StartTime:    w.StartTime,
	}
}

func (w Workshop) clone() Workshop {
	out := w
	out.Purposes = append([]string(nil), w.Purposes...)
	out.Sessions = scheduler.CloneSessions(w.Sessions)
	return out
}

// DefaultTitle names a workshop after its length and group size.
func DefaultTitle(hours, participants int) string {
	return fmt.Sprintf("Workshop %dh - %d participants", hours, participants)
}

// FormData is the form a facilitator filled in.
type FormData struct {
	Hours        int      `json:"hours"`
	Participants int      `json:"participants"`
	Purposes     []string `json:"purposes"`
	Context      string   `json:"context"`
	Goals        string   `json:"goals"`
	StartTime    string   `json:"startTime"`
}

// Params converts the form into generation parameters.
func (f FormData) Params() GenerateParams {
	return GenerateParams{
		Hours:        f.Hours,
		Participants: f.Participants,
		Purposes:     append([]string(nil), f.Purposes...),
		Context:      f.Context,
		Goals:        f.Goals,
		StartTime:    f.StartTime,
	}
}

// SavedStatus distinguishes drafts from completed workshops.
type SavedStatus string

const (
	StatusDraft     SavedStatus = "draft"
	StatusCompleted SavedStatus = "completed"
)

// SavedWorkshop is one entry of the workshop library.
type SavedWorkshop struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Status       SavedStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastModified time.Time   `json:"lastModified"`
	Form         FormData    `json:"formData"`
	Workshop     *Workshop   `json:"workshop,omitempty"`
}

// SavedWorkshopUpdate carries the fields an update may change. Nil fields are
// left alone.
type SavedWorkshopUpdate struct {
	Name     *string
	Status   *SavedStatus
	Form     *FormData
	Workshop *Workshop
}

// AutoSavedForm is the most recently auto-saved form.
type AutoSavedForm struct {
	Form      FormData
	LastSaved time.Time
}
