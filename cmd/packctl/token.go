package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/packlist/backend/internal/auth"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "user id the token authenticates")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token for local development",
	Long: `Sign an HS256 bearer token with JWT_SECRET for use against a local API.

Examples:
  curl -H "Authorization: Bearer $(packctl token --subject alice)" localhost:8080/trips`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tokenTTL <= 0 {
			return fmt.Errorf("--ttl must be positive")
		}
		tok, err := auth.NewVerifier(cfg.JWTSecret).Issue(tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}
