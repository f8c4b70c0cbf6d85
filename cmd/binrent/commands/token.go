package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"binrent/internal/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 bearer token for an API running with auth.mode=hmac",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := a.cfg.Auth.HMACSecret
			if secret == "" {
				return errors.New("auth.hmac_secret is not set (BINRENT_AUTH_HMAC_SECRET)")
			}
			tok, err := auth.Sign(secret, subject, role, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "cli", "token subject")
	cmd.Flags().StringVar(&role, "role", "user", "role claim: user or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
