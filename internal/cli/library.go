package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/workshop-planner/internal/application"
)

func libraryCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage saved workshops",
	}
	cmd.AddCommand(libraryListCmd(rt))
	cmd.AddCommand(libraryShowCmd(rt))
	cmd.AddCommand(librarySaveCmd(rt))
	cmd.AddCommand(libraryDeleteCmd(rt))
	cmd.AddCommand(libraryShareCmd(rt))
	return cmd
}

func statusLabel(status application.SavedStatus) string {
	if status == application.StatusCompleted {
		return color.New(color.FgGreen).Sprint(string(status))
	}
	return color.New(color.FgYellow).Sprint(string(status))
}

func libraryListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved workshops, most recently modified first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := rt.library.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list library: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved workshops")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tMODIFIED")
			fmt.Fprintln(w, "--\t----\t------\t--------")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Name, statusLabel(e.Status), e.LastModified.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func libraryShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved workshop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := rt.library.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s [%s]\n", entry.Name, statusLabel(entry.Status))
			fmt.Fprintf(out, "  Created: %s\n", entry.CreatedAt.Local().Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "  Form: %dh, %d participants, start %s\n", entry.Form.Hours, entry.Form.Participants, entry.Form.StartTime)
			if entry.Workshop == nil {
				fmt.Fprintln(out, "  (draft, no agenda)")
				return nil
			}
			fmt.Fprintln(out)
			printWorkshop(out, *entry.Workshop)
			return nil
		},
	}
}

func librarySaveCmd(rt *runtime) *cobra.Command {
	var (
		flags agendaFlags
		name  string
	)

	cmd := &cobra.Command{
		Use:   "save <workshop-id>",
		Short: "Save a stored agenda to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := rt.storedWorkshop(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}
			form := application.FormData{
				Hours:        ws.Duration,
				Participants: ws.Participants,
				Context:      ws.Context,
				StartTime:    ws.StartTime,
			}
			saved, err := rt.library.SaveWorkshop(cmd.Context(), ws, form)
			if err != nil {
				return fmt.Errorf("failed to save workshop: %w", err)
			}
			if name != "" {
				if saved, err = rt.library.Update(cmd.Context(), saved.ID, application.SavedWorkshopUpdate{Name: &name}); err != nil {
					return fmt.Errorf("failed to name workshop: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s as %s\n", saved.Name, saved.ID)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "library entry name")
	return cmd
}

func libraryDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved workshop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.library.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", args[0])
			return nil
		},
	}
}

func libraryShareCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "share <id>",
		Short: "Print a share token for a saved workshop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := rt.library.ShareToken(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to share %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func cleanupCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove duplicate library entries and agendas no saved workshop references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			duplicates, err := rt.library.CleanupDuplicates(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to remove duplicates: %w", err)
			}
			keep, err := rt.library.WorkshopIDs(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list saved workshops: %w", err)
			}
			orphans, err := rt.workshops.CleanupOrphanedSessions(cmd.Context(), keep)
			if err != nil {
				return fmt.Errorf("failed to remove orphaned agendas: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d duplicate entries and %d orphaned agendas\n", len(duplicates), len(orphans))
			return nil
		},
	}
}
