package scheduler

import (
	"fmt"
	"strings"

	"github.com/example/workshop-planner/internal/catalog"
)

// fixedText is the canned narrative for a reserved activity.
type fixedText struct {
	purpose    string
	output     string
	risks      string
	mitigation string
}

// welcome purpose is the only fixed text that embeds the context clause.
const welcomePurposeFormat = "Create safety and clarity around the purpose of the workshop. Establish a shared understanding of %s."

var reservedText = map[string]fixedText{
	catalog.WelcomeID: {
		output:     "A shared understanding of the workshop purpose, agenda and expectations.",
		risks:      "Participants feel unsure about the purpose or arrive with different expectations.",
		mitigation: "Be explicit about the agenda and leave room for questions. Check for understanding.",
	},
	catalog.ClosingID: {
		purpose:    "Make sure everyone knows what happens next and feels committed to carrying out the agreed actions.",
		output:     "Clear commitments and next steps for every participant.",
		risks:      "Commitments stay vague or nobody takes ownership of the follow-up.",
		mitigation: "Capture concrete commitments with names and dates. Book the follow-up meeting before everyone leaves.",
	},
	catalog.ShortBreakID: {
		purpose:    "Give participants time to digest what they heard and recharge before the next phase.",
		output:     "Rested and focused participants.",
		risks:      "The break runs over and the group loses momentum.",
		mitigation: "Announce the restart time clearly and start again on time.",
	},
	catalog.LongBreakID: {
		purpose:    "Give participants time for reflection and informal conversations that deepen understanding.",
		output:     "Deeper reflection and stronger relationships between participants.",
		risks:      "The break runs over and the group loses momentum.",
		mitigation: "Announce the restart time clearly and start again on time.",
	},
}

var phasePurpose = map[Phase]string{
	PhaseDiverge:  "Open up perspectives and gather different viewpoints on %s.",
	PhaseExplore:  "Deepen the understanding and explore possible solutions and ways of working.",
	PhaseConverge: "Focus on the most promising ideas and turn them into concrete action plans.",
}

var phaseOutput = map[Phase]string{
	PhaseDiverge:  "A broad collection of perspectives, challenges and opportunities.",
	PhaseExplore:  "A deeper understanding and concrete solution proposals.",
	PhaseConverge: "Prioritised actions and a clear plan.",
}

const defaultOutput = "Insights and ideas from the group's discussions."

var phaseRisk = map[Phase]fixedText{
	PhaseDiverge: {
		risks:      "The discussion becomes too broad or participants hold back their views.",
		mitigation: "Keep the focus on the central question. Encourage everyone to take part by starting in small groups.",
	},
	PhaseExplore: {
		risks:      "The group gets stuck analysing the problem without reaching solutions.",
		mitigation: "Set clear time limits and remind the group that the goal is an action plan.",
	},
	PhaseConverge: {
		risks:      "Agreement is hard to reach or decisions end up too vague.",
		mitigation: "Use structured decision methods and confirm everyone understands what was decided.",
	},
}

var defaultRisk = fixedText{
	risks:      "The activity takes longer than planned or engagement drops.",
	mitigation: "Keep an eye on time and energy levels. Adapt as needed.",
}

type phasePair struct{ from, to Phase }

var phaseTransition = map[phasePair]string{
	{PhaseDiverge, PhaseExplore}:  "Now that we have gathered many perspectives, let's dig into the most interesting areas.",
	{PhaseExplore, PhaseConverge}: "With all this understanding, let's focus on what we will actually do about it.",
	{PhaseConverge, PhaseCommit}:  "Now that we have decided what to do, let's make sure everyone is ready to act.",
}

const (
	afterWelcomeTransition  = "Now that we share a picture of our purpose, let's start exploring the challenge from different perspectives."
	beforeClosingTransition = "Based on everything we have explored and decided, let's make sure we all know what happens next."
	samePhaseTransition     = "Let's build on what we just discovered."
	genericTransition       = "Let's continue with the next activity."
	defaultContextClause    = "the challenge"
)

// ContextClause extracts the first clause of context, up to the first period,
// trimmed and lower-cased.
func ContextClause(context string) string {
	clause, _, _ := strings.Cut(context, ".")
	clause = strings.ToLower(strings.TrimSpace(clause))
	if clause == "" {
		return defaultContextClause
	}
	return clause
}

// PurposeText returns the purpose narrative for an activity in a phase.
func PurposeText(a catalog.Activity, phase Phase, context string) string {
	if a.ID == catalog.WelcomeID {
		return fmt.Sprintf(welcomePurposeFormat, ContextClause(context))
	}
	if text, ok := reservedText[a.ID]; ok {
		return text.purpose
	}
	if tmpl, ok := phasePurpose[phase]; ok {
		if strings.Contains(tmpl, "%s") {
			return fmt.Sprintf(tmpl, ContextClause(context))
		}
		return tmpl
	}
	return a.Description
}

// OutputText returns the expected outcome narrative.
func OutputText(a catalog.Activity, phase Phase) string {
	if text, ok := reservedText[a.ID]; ok {
		return text.output
	}
	if out, ok := phaseOutput[phase]; ok {
		return out
	}
	return defaultOutput
}

// RiskText returns the risk and mitigation narrative.
func RiskText(a catalog.Activity, phase Phase) (string, string) {
	if text, ok := reservedText[a.ID]; ok {
		return text.risks, text.mitigation
	}
	if text, ok := phaseRisk[phase]; ok {
		return text.risks, text.mitigation
	}
	return defaultRisk.risks, defaultRisk.mitigation
}

// TransitionText describes the hand-off from current to next. A nil next
// means current is the last session.
func TransitionText(current catalog.Activity, next *catalog.Activity, currentPhase, nextPhase Phase) string {
	switch {
	case next == nil:
		return ""
	case current.ID == catalog.WelcomeID:
		return afterWelcomeTransition
	case next.ID == catalog.ClosingID:
		return beforeClosingTransition
	case currentPhase == nextPhase:
		return samePhaseTransition
	}
	if text, ok := phaseTransition[phasePair{currentPhase, nextPhase}]; ok {
		return text
	}
	return genericTransition
}

// Narrate fills the purpose, output, risks and mitigation fields of s from
// its activity and phase.
func Narrate(s *Session, context string) {
	s.Purpose = PurposeText(s.Activity, s.Phase, context)
	s.Output = OutputText(s.Activity, s.Phase)
	s.Risks, s.Mitigation = RiskText(s.Activity, s.Phase)
}

// LinkTransitions sets the transition of every session from its successor.
// Customised transitions are left alone.
func LinkTransitions(sessions []Session) {
	for i := range sessions {
		if sessions[i].CustomData != nil && sessions[i].CustomData.Transition != "" {
			continue
		}
		sessions[i].Transition = transitionAt(sessions, i)
	}
}

func transitionAt(sessions []Session, i int) string {
	if i+1 >= len(sessions) {
		return TransitionText(sessions[i].Activity, nil, sessions[i].Phase, "")
	}
	next := sessions[i+1]
	return TransitionText(sessions[i].Activity, &next.Activity, sessions[i].Phase, next.Phase)
}

// RefreshTransitions recomputes the transitions of the sessions at the given
// indexes. Out-of-range indexes and customised transitions are skipped.
func RefreshTransitions(sessions []Session, indexes ...int) {
	for _, i := range indexes {
		if i < 0 || i >= len(sessions) {
			continue
		}
		if sessions[i].CustomData != nil && sessions[i].CustomData.Transition != "" {
			continue
		}
		sessions[i].Transition = transitionAt(sessions, i)
	}
}
