package uploadctl

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/mediaupload/internal/server/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(opts *options) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.SecretKey == "" {
				return errors.New("secret key is not configured, API auth is disabled")
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.AccessTokenValidityDuration
			}
			if ttl <= 0 {
				return errors.New("ttl must be positive")
			}

			token, err := auth.GenerateToken(subject, []byte(cfg.SecretKey), ttl)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (caller identity)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token validity (defaults to the configured access token validity)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
