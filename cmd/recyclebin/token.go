package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pyhumph/jriit-cms-sub001/internal/config"
	"github.com/pyhumph/jriit-cms-sub001/internal/model"
	"github.com/pyhumph/jriit-cms-sub001/internal/service"
)

var (
	tokenUserID   string
	tokenUsername string
	tokenRole     string
	tokenTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an operator access token signed with JWT_SECRET",
	Long: `Issue a short lived access token for local testing of the HTTP API.

  recyclebin token --user 0c1d... --username ops --role admin --ttl 1h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadForCLI()
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is required")
		}

		token, err := service.NewTokenService(cfg.JWTSecret, tokenTTL).IssueAccessToken(tokenUserID, tokenUsername, tokenRole)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "user id placed in the sub claim")
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "operator", "username claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", model.RoleAdmin, "role claim (admin, editor or viewer)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 15*time.Minute, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}
