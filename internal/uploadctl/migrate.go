package uploadctl

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			if err := runMigrations(cmd.Context(), cfg); err != nil {
				return err
			}
			printf(cmd, "Migrations applied\n")
			return nil
		},
	}
}
