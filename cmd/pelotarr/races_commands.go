package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pelotarr/internal/races"
)

func newRacesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "races",
		Short: "List monitored race ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().ListRaces(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(resp.IDs) == 0 {
				fmt.Fprintln(out, "No races monitored")
				return nil
			}
			for _, id := range resp.IDs {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
}

func newMonitorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor <race-id>",
		Short: "Monitor a race from the season catalog",
		Long: "Monitor a race from the season catalog. A bare id monitors a one-day race\n" +
			"or every stage of a stage race; an id of the form <id>::<stage> monitors a\n" +
			"single stage.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !races.ValidID(id) {
				return fmt.Errorf("invalid race id %q", id)
			}
			resp, err := ctx.client().Monitor(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Monitoring %s (%d entries added); scan requested\n", id, resp.Added)
			return nil
		},
	}
}

func newUnmonitorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unmonitor <race-id>",
		Short: "Stop monitoring a race",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !races.ValidID(id) {
				return fmt.Errorf("invalid race id %q", id)
			}
			resp, err := ctx.client().Unmonitor(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries for %s\n", resp.Deleted, id)
			return nil
		},
	}
}
