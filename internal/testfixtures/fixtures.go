package testfixtures

import (
	"github.com/example/workshop-planner/internal/application"
)

// ParamsOption configures generation parameters.
type ParamsOption func(*application.GenerateParams)

// NewGenerateParams returns the onboarding workshop used across tests:
// four hours, twelve participants, one purpose, starting at 09:00.
func NewGenerateParams(opts ...ParamsOption) application.GenerateParams {
	params := application.GenerateParams{
		Hours:        4,
		Participants: 12,
		Purposes:     []string{"articulate-challenge"},
		Context:      "Improve onboarding. Second clause",
		Goals:        "Define next steps",
		StartTime:    "09:00",
	}
	for _, opt := range opts {
		opt(&params)
	}
	return params
}

// WithHours overrides the requested length.
func WithHours(hours int) ParamsOption {
	return func(p *application.GenerateParams) {
		p.Hours = hours
	}
}

// WithParticipants overrides the group size.
func WithParticipants(n int) ParamsOption {
	return func(p *application.GenerateParams) {
		p.Participants = n
	}
}

// WithPurposes overrides the purpose filter.
func WithPurposes(ids ...string) ParamsOption {
	return func(p *application.GenerateParams) {
		p.Purposes = ids
	}
}

// WithContext overrides the context text.
func WithContext(context string) ParamsOption {
	return func(p *application.GenerateParams) {
		p.Context = context
	}
}

// WithGoals overrides the goals text.
func WithGoals(goals string) ParamsOption {
	return func(p *application.GenerateParams) {
		p.Goals = goals
	}
}

// WithStartTime overrides the start time.
func WithStartTime(start string) ParamsOption {
	return func(p *application.GenerateParams) {
		p.StartTime = start
	}
}

// FormFor converts parameters into the form a facilitator would have filled in.
func FormFor(params application.GenerateParams) application.FormData {
	return application.FormData{
		Hours:        params.Hours,
		Participants: params.Participants,
		Purposes:     append([]string(nil), params.Purposes...),
		Context:      params.Context,
		Goals:        params.Goals,
		StartTime:    params.StartTime,
	}
}
