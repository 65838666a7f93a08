package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Request an immediate scan for unacquired races",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.client().Scan(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Scan requested")
			return nil
		},
	}
}

func newFeedsCommand(ctx *commandContext) *cobra.Command {
	feedsCmd := &cobra.Command{
		Use:   "feeds",
		Short: "Manage the cached category feeds",
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh every category feed now",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().RefreshFeeds(cmd.Context())
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(resp.Categories))
			for key := range resp.Categories {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				res := resp.Categories[key]
				note := ""
				if res.Error != "" {
					note = res.Error
				}
				rows = append(rows, []string{
					key,
					fmt.Sprintf("%d", res.Added),
					fmt.Sprintf("%d", res.Total),
					note,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Category", "Added", "Total", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	feedsCmd.AddCommand(refreshCmd)
	return feedsCmd
}
