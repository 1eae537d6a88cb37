package uploadctl

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSweepCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one reconciliation pass over open multipart sessions",
		Long:  "Aborts multipart sessions that have no inventory record, and sessions whose record stayed pending past the stale threshold. Inventory records are not modified.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadValid()
			if err != nil {
				return err
			}
			logger, err := opts.logger(cmd, cfg)
			if err != nil {
				return err
			}

			report, err := runSweep(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			var out []byte
			if asJSON {
				out, err = json.MarshalIndent(report, "", "  ")
				out = append(out, '\n')
			} else {
				out, err = yaml.Marshal(report)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}
