/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"time"

	"github.com/mautops/timesheet-gin/internal/auth"
	"github.com/spf13/cobra"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a user",
	Long: `Issue an HS256 bearer token for local testing when auth.mode is jwt.
The token is signed with auth.jwt_secret and carries the user id as subject.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cmd)
		if err != nil {
			return err
		}

		userID, _ := cmd.Flags().GetInt64("user-id")
		if userID <= 0 {
			return fmt.Errorf("--user-id must be a positive integer")
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")

		validator, err := auth.NewTokenValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			return err
		}
		token, err := validator.IssueToken(userID, ttl)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().Int64("user-id", 0, "User id to put in the token subject")
	tokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
}
