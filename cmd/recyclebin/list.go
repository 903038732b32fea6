package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pyhumph/jriit-cms-sub001/internal/app"
	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every soft-deleted item, most recently deleted first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCore(cmd, nil, func(ctx context.Context, core *app.Core) error {
			items, err := core.RecycleBin.List(ctx)
			if err != nil {
				return err
			}
			if listJSON {
				return printJSON(cmd, model.RecycleBinListData{Items: items})
			}
			return printEntries(cmd, items)
		})
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the listing as JSON")
	rootCmd.AddCommand(listCmd)
}

func printEntries(cmd *cobra.Command, items []model.RecycleBinEntry) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tID\tNAME\tDELETED AT\tDELETED BY")
	for _, item := range items {
		deletedBy := "-"
		if item.DeletedBy != nil {
			deletedBy = *item.DeletedBy
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			item.ItemType, item.ItemID, item.ItemName, item.DeletedAt.Format(time.RFC3339), deletedBy)
	}
	return tw.Flush()
}
