package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/workshop-planner/internal/application"
	"github.com/example/workshop-planner/internal/scheduler"
	"github.com/example/workshop-planner/internal/timeline"
)

var phaseColors = map[scheduler.Phase]*color.Color{
	scheduler.PhaseOpen:     color.New(color.FgCyan),
	scheduler.PhaseDiverge:  color.New(color.FgYellow),
	scheduler.PhaseExplore:  color.New(color.FgMagenta),
	scheduler.PhaseConverge: color.New(color.FgBlue),
	scheduler.PhaseCommit:   color.New(color.FgGreen),
}

func phaseLabel(phase scheduler.Phase) string {
	if c, ok := phaseColors[phase]; ok {
		return c.Sprint(string(phase))
	}
	return string(phase)
}

func printWorkshop(w io.Writer, ws application.Workshop) {
	fmt.Fprintf(w, "%s\n", color.New(color.Bold).Sprint(ws.Title))
	fmt.Fprintf(w, "  ID: %s\n", ws.ID)
	if ws.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", ws.Context)
	}
	if ws.Goals != "" {
		fmt.Fprintf(w, "  Goals: %s\n", ws.Goals)
	}
	fmt.Fprintln(w)
	printAgenda(w, ws.Sessions)
}

func printAgenda(w io.Writer, sessions []scheduler.Session) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTIME\tPHASE\tACTIVITY\tDURATION")
	fmt.Fprintln(tw, "-\t----\t-----\t--------\t--------")
	for i, s := range sessions {
		name := s.Activity.Name
		if s.CustomData != nil && s.CustomData.Title != "" {
			name = s.CustomData.Title
		}
		if s.IsCustomized {
			name += " *"
		}
		fmt.Fprintf(tw, "%d\t%s-%s\t%s\t%s\t%s\n",
			i, s.StartTime, s.EndTime, phaseLabel(s.Phase), name, timeline.FormatDuration(s.Duration))
	}
	tw.Flush()

	fmt.Fprintf(w, "\nTotal: %s\n", timeline.FormatDuration(scheduler.TotalDuration(sessions)))
	for _, issue := range application.CheckTimeline(sessions) {
		fmt.Fprintf(w, "%s session %d: %s (%d min)\n", color.New(color.FgRed).Sprint("!"), issue.Index, issue.Type, issue.Minutes)
	}
}
