package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/workshop-planner/internal/application"
	"github.com/example/workshop-planner/internal/scheduler"
)

func generateCmd(rt *runtime) *cobra.Command {
	var (
		params application.GenerateParams
		fresh  bool
		once   bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a workshop agenda",
		Long: `Generate an agenda for the given parameters. By default the agenda is
stored under an id derived from the parameters, so repeating the command shows
the same agenda. --fresh always builds a new one; --once builds without storing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fresh && once {
				return fmt.Errorf("--fresh and --once cannot be combined")
			}

			var (
				ws  application.Workshop
				err error
			)
			switch {
			case once:
				ws, err = rt.workshops.Generate(cmd.Context(), params)
			case fresh:
				ws, err = rt.workshops.Regenerate(cmd.Context(), params)
			default:
				ws, err = rt.workshops.Preview(cmd.Context(), params)
			}
			if err != nil {
				return fmt.Errorf("failed to generate workshop: %w", err)
			}

			printWorkshop(cmd.OutOrStdout(), ws)
			return nil
		},
	}

	cmd.Flags().IntVar(&params.Hours, "hours", 4, "workshop length in hours (1-8)")
	cmd.Flags().IntVar(&params.Participants, "participants", 12, "group size (3-200)")
	cmd.Flags().StringArrayVar(&params.Purposes, "purpose", nil, "purpose id, repeatable (up to 5)")
	cmd.Flags().StringVar(&params.Context, "context", "", "what the workshop is about")
	cmd.Flags().StringVar(&params.Goals, "goals", "", "what the workshop should achieve")
	cmd.Flags().StringVar(&params.StartTime, "start", "", "start time HH:MM (default from PLANNER_DEFAULT_START)")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "build a new agenda under a fresh id")
	cmd.Flags().BoolVar(&once, "once", false, "build without storing")
	return cmd
}

func showCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <workshop-id>",
		Short: "Show a stored agenda",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := rt.workshops.Sessions(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load workshop %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workshop %s\n\n", args[0])
			printAgenda(cmd.OutOrStdout(), sessions)
			return nil
		},
	}
}

// agendaFlags identify a stored agenda plus the workshop fields edits need.
type agendaFlags struct {
	participants int
	context      string
}

func (f *agendaFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.participants, "participants", 12, "group size used to size replacement activities")
	cmd.Flags().StringVar(&f.context, "context", "", "workshop context used in regenerated narrative")
}

func (rt *runtime) storedWorkshop(ctx context.Context, id string, flags agendaFlags) (application.Workshop, error) {
	sessions, err := rt.workshops.Sessions(ctx, id)
	if err != nil {
		return application.Workshop{}, fmt.Errorf("failed to load workshop %s: %w", id, err)
	}
	total := scheduler.TotalDuration(sessions)
	hours := (total + 59) / 60
	return application.Workshop{
		ID:           id,
		Title:        application.DefaultTitle(hours, flags.participants),
		Duration:     hours,
		Participants: flags.participants,
		Context:      flags.context,
		StartTime:    sessions[0].StartTime,
		Sessions:     sessions,
		TotalTime:    total,
	}, nil
}

func replaceCmd(rt *runtime) *cobra.Command {
	var (
		flags      agendaFlags
		index      int
		activityID string
	)

	cmd := &cobra.Command{
		Use:   "replace <workshop-id>",
		Short: "Replace the activity of one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := rt.storedWorkshop(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}
			updated, err := rt.workshops.ReplaceActivity(cmd.Context(), ws, index, activityID)
			if err != nil {
				return fmt.Errorf("failed to replace activity: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Session %d is now %s\n\n", index, updated.Sessions[index].Activity.Name)
			printAgenda(cmd.OutOrStdout(), updated.Sessions)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&index, "index", 0, "session position (welcome is 0)")
	cmd.Flags().StringVar(&activityID, "activity", "", "catalog id of the new activity")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("activity")
	return cmd
}

func editCmd(rt *runtime) *cobra.Command {
	var (
		flags    agendaFlags
		index    int
		duration int
		custom   scheduler.CustomData
	)

	cmd := &cobra.Command{
		Use:   "edit <workshop-id>",
		Short: "Override the narrative or duration of one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := rt.storedWorkshop(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}
			var minutes *int
			if cmd.Flags().Changed("duration") {
				minutes = &duration
			}
			updated, err := rt.workshops.EditActivity(cmd.Context(), ws, index, custom, minutes)
			if err != nil {
				return fmt.Errorf("failed to edit session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Session %d updated\n\n", index)
			printAgenda(cmd.OutOrStdout(), updated.Sessions)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&index, "index", 0, "session position (welcome is 0)")
	cmd.Flags().IntVar(&duration, "duration", 0, "new duration in minutes, rounded to 5 (5-180)")
	cmd.Flags().StringVar(&custom.Title, "title", "", "custom title")
	cmd.Flags().StringVar(&custom.Description, "description", "", "custom description")
	cmd.Flags().StringVar(&custom.Instructions, "instructions", "", "custom instructions")
	cmd.Flags().StringVar(&custom.Purpose, "purpose", "", "custom purpose text")
	cmd.Flags().StringVar(&custom.Output, "output", "", "custom expected output")
	cmd.Flags().StringVar(&custom.Transition, "transition", "", "custom transition text")
	cmd.Flags().StringVar(&custom.Risks, "risks", "", "custom risks")
	cmd.Flags().StringVar(&custom.Mitigation, "mitigation", "", "custom mitigation")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func retimeCmd(rt *runtime) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "retime <workshop-id>",
		Short: "Move a stored agenda to a new start time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := rt.storedWorkshop(cmd.Context(), args[0], agendaFlags{})
			if err != nil {
				return err
			}
			updated, err := rt.workshops.ChangeStartTime(cmd.Context(), ws, start)
			if err != nil {
				return fmt.Errorf("failed to change start time: %w", err)
			}
			printAgenda(cmd.OutOrStdout(), updated.Sessions)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "new start time HH:MM")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func discardCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "discard <workshop-id>",
		Short: "Delete a stored agenda",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.workshops.Discard(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to discard workshop %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Discarded agenda %s\n", args[0])
			return nil
		},
	}
}
