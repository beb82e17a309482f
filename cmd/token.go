package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a user id",
	Long:  "Mint an HS256 bearer token signed with INTERVIEW_AUTH_JWT_SECRET. The user id becomes the token subject.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return errors.New("INTERVIEW_AUTH_JWT_SECRET is required")
		}

		user, _ := cmd.Flags().GetString("user")
		ttl := cfg.Auth.TokenTTL
		if cmd.Flags().Changed("ttl") {
			ttl, _ = cmd.Flags().GetDuration("ttl")
		}

		tok, err := server.IssueToken(cfg.Auth.JWTSecret, user, ttl)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringP("user", "u", "", "User id to place in the token subject")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default from auth.token_ttl)")
	_ = tokenCmd.MarkFlagRequired("user")
}
