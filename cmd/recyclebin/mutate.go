package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyhumph/jriit-cms-sub001/internal/app"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <item-type> <item-id>",
	Short: "Move an item out of the recycle bin",
	Example: `  recyclebin restore news 2f6c1c4e-5d0b-4c1f-9a55-0b7e3f1d9a10
  recyclebin restore media 7d1e... --actor 0c1d...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, nil, func(ctx context.Context, core *app.Core) error {
			if err := core.RecycleBin.Restore(ctx, args[0], args[1], cliActor()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s/%s\n", args[0], args[1])
			return nil
		})
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge <item-type> <item-id>",
	Short: "Permanently delete an item in the recycle bin, removing stored media files first",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, nil, func(ctx context.Context, core *app.Core) error {
			if err := core.RecycleBin.PermanentDelete(ctx, args[0], args[1], cliActor()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %s/%s\n", args[0], args[1])
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <item-type> <item-id>",
	Short: "Soft-delete a live item into the recycle bin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, nil, func(ctx context.Context, core *app.Core) error {
			if err := core.RecycleBin.SoftDelete(ctx, args[0], args[1], cliActor()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", args[0], args[1])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd, purgeCmd, deleteCmd)
}
