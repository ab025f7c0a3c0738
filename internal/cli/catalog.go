package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/workshop-planner/internal/catalog"
)

func catalogCmd(rt *runtime) *cobra.Command {
	var participants int

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List facilitation activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			activities := rt.catalog.Activities()
			if participants > 0 {
				activities = rt.catalog.Feasible(participants)
			}
			if len(activities) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No activities found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tBASE\tGROUP")
			fmt.Fprintln(w, "--\t----\t--------\t----\t-----")
			for _, a := range activities {
				id := a.ID
				if catalog.IsReserved(a.ID) {
					id += " (reserved)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%dmin\t%d-%d\n", id, a.Name, a.Category, a.BaseTime, a.MinParticipants, a.MaxParticipants)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&participants, "participants", 0, "only list activities that fit this group size")
	return cmd
}

func purposesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "purposes",
		Short: "List purpose tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tRECOMMENDS")
			fmt.Fprintln(w, "--\t----\t----------")
			for _, p := range rt.catalog.Purposes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, strings.Join(p.RecommendedStructures, ", "))
			}
			return w.Flush()
		},
	}
}
