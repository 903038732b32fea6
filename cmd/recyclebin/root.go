package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyhumph/jriit-cms-sub001/internal/app"
	"github.com/pyhumph/jriit-cms-sub001/internal/config"
	"github.com/pyhumph/jriit-cms-sub001/internal/logger"
	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

var version = "dev"

var actorID string

var rootCmd = &cobra.Command{
	Use:   "recyclebin",
	Short: "Operate the CMS recycle bin from the command line",
	Long: `Operate the CMS recycle bin without going through the HTTP API.

Reads the same environment as the server (DATABASE_URL, UPLOAD_ROOT,
CLEANUP_TIMEOUT, JWT_SECRET). Every mutation is written to the audit
trail like its HTTP counterpart.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "", "user id recorded as the actor of mutations")
}

// withCore loads configuration, opens the recycle bin core and runs fn.
// mutate lets a command adjust configuration before the core is built.
func withCore(cmd *cobra.Command, mutate func(cfg *config.Config), fn func(ctx context.Context, core *app.Core) error) error {
	cfg, err := config.LoadForCLI()
	if err != nil {
		return err
	}
	if mutate != nil {
		mutate(cfg)
	}

	slog.SetDefault(logger.New(os.Stderr, cfg.LogFormat, cfg.LogLevel))

	ctx := cmd.Context()
	core, err := app.BuildCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer core.Close()

	return fn(ctx, core)
}

func cliActor() model.AuditActor {
	return model.AuditActor{UserID: actorID, Username: "recyclebin-cli", IP: "local"}
}

func printJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
