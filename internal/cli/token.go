package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "fraudgate/internal/jwt_token"
	"fraudgate/pkg/subject"
)

func newTokenCommand(opts *RootOptions, open Opener) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <operator-email>",
		Short: "Mint a bearer token for the admin API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := subject.Identity(args[0])
			if email == "" {
				return errors.New("operator email is required")
			}
			return withBackends(cmd.Context(), open, func(b *Backends) error {
				admin := b.Config.Admin
				if admin.JWTSigningKey == "" {
					return errors.New("ADMIN_JWT_SIGNING_KEY is not configured")
				}
				if ttl <= 0 {
					ttl = admin.TokenTTL
				}
				token, err := jwttoken.NewJWTService(admin.JWTSigningKey, admin.JWTIssuer, admin.JWTAudience).
					GenerateAdminToken(email, ttl)
				if err != nil {
					return fmt.Errorf("sign token: %w", err)
				}
				p := newPrinter(opts, cmd.OutOrStdout())
				if p.json() {
					return p.encode(map[string]string{"email": email, "token": token})
				}
				_, err = fmt.Fprintln(p.w, token)
				return err
			})
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to the configured admin token ttl)")
	return cmd
}
