package persistence

import (
	"time"

	"github.com/example/workshop-planner/internal/scheduler"
)

// WorkshopRecord is the stored form of a generated workshop.
type WorkshopRecord struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Hours        int                 `json:"duration"`
	Participants int                 `json:"participants"`
	Purposes     []string            `json:"purposes"`
	Context      string              `json:"context"`
	Goals        string              `json:"goals"`
	StartTime    string              `json:"startTime"`
	Sessions     []scheduler.Session `json:"sessions"`
	TotalTime    int                 `json:"totalTime"`
}

// FormRecord is the stored form of the generation parameters a user entered.
type FormRecord struct {
	Hours        int        `json:"hours"`
	Participants int        `json:"participants"`
	Purposes     []string   `json:"purposes"`
	Context      string     `json:"context"`
	Goals        string     `json:"goals"`
	StartTime    string     `json:"startTime"`
	LastSaved    *time.Time `json:"lastSaved,omitempty"`
}

// SavedWorkshopRecord is one entry of the saved-workshop library.
type SavedWorkshopRecord struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	LastModified time.Time       `json:"lastModified"`
	Form         FormRecord      `json:"formData"`
	Workshop     *WorkshopRecord `json:"workshop,omitempty"`
}
