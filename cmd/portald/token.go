package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mundox-portal-bff/internal/auth"
)

var (
	tokenSub   string
	tokenRole  string
	tokenEmail string
	tokenTTL   time.Duration
)

// tokenCmd mints a development token signed with the configured secret.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed auth token for local development",
	Example: `  portald token --sub u1 --role admin --email admin@centromundox.org
  curl -H "Cookie: auth-token=$(portald token --sub u1)" localhost:8080/api/auth/me`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret (or JWT_SECRET) must be set")
		}
		token, err := auth.NewVerifier(cfg.Auth.JWTSecret).Issue(tokenSub, tokenEmail, tokenRole, tokenTTL)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSub, "sub", "dev-user", "user id claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "student", "role claim")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 8*time.Hour, "token lifetime")
}
