package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pelotarr/internal/status"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of every monitored race",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			if len(resp.Races) == 0 {
				fmt.Fprintln(out, "No races monitored")
				return nil
			}

			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(resp.Races))
			for _, rs := range resp.Races {
				rows = append(rows, []string{rs.ID, renderStatusValue(rs.Status, colorize)})
			}
			fmt.Fprintln(out, renderTable([]string{"Race", "Status"}, rows, []columnAlignment{alignLeft, alignLeft}))
			if resp.Scanning {
				fmt.Fprintln(out, "A scan is currently running")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderStatusValue(v status.Value, colorize bool) string {
	if !colorize {
		return string(v)
	}
	switch v {
	case status.Downloaded:
		return ansiGreen + string(v) + ansiReset
	case status.Downloading:
		return ansiBlue + string(v) + ansiReset
	case status.Future:
		return ansiYellow + string(v) + ansiReset
	case status.Missing:
		return ansiRed + string(v) + ansiReset
	default:
		return string(v)
	}
}
