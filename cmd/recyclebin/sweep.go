package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pyhumph/jriit-cms-sub001/internal/app"
	"github.com/pyhumph/jriit-cms-sub001/internal/config"
)

var sweepDryRun bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove uploaded files that no media record references",
	Long: `Walk UPLOAD_ROOT and remove every file that no media record points at.

Files left behind by a purge whose file cleanup failed or timed out are
picked up here. Files modified within the last hour are kept. Use
--dry-run to only report what would be removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		setDryRun := func(cfg *config.Config) { cfg.OrphanSweepDryRun = sweepDryRun }

		return withCore(cmd, setDryRun, func(ctx context.Context, core *app.Core) error {
			result, err := core.Sweeper.Sweep(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		})
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "report orphaned files without removing them")
	rootCmd.AddCommand(sweepCmd)
}
