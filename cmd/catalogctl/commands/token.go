package commands

import (
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/config"
	"catalog-api/pkg/jwt"

	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	token := &cobra.Command{
		Use:   "token",
		Short: "Manage API access tokens",
	}

	var (
		subject string
		role    string
		ttl     time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Print a signed access token for the write endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Auth.Enabled() {
				return errors.New("AUTH_JWT_SECRET is not set; the API accepts writes without a token")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenExpiry
			}

			signed, err := jwt.NewManager(cfg.Auth.JWTSecret).GenerateAccessToken(subject, role, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	issue.Flags().StringVar(&subject, "subject", "catalogctl", "Token subject")
	issue.Flags().StringVar(&role, "role", "admin", "Token role claim")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to AUTH_TOKEN_EXPIRY)")

	token.AddCommand(issue)
	return token
}
