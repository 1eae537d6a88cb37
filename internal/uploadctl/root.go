// Package uploadctl implements the admin command line for the upload
// service: schema migrations, a one-off reconciliation sweep, API token
// minting, a dump of the effective configuration and a file upload client.
package uploadctl

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mediaupload/internal/logging"
	"github.com/dmitrijs2005/mediaupload/internal/server"
	"github.com/dmitrijs2005/mediaupload/internal/server/config"
	"github.com/dmitrijs2005/mediaupload/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mediaupload/internal/server/services"
	"github.com/spf13/cobra"
)

// Seams replaced in tests.
var (
	runMigrations = func(ctx context.Context, cfg *config.Config) error {
		db, err := server.OpenDatabase(ctx, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		return repomanager.NewPostgresRepositoryManager().RunMigrations(ctx, db)
	}

	runSweep = func(ctx context.Context, cfg *config.Config, logger logging.Logger) (services.SweepReport, error) {
		cs, err := server.NewComponents(ctx, cfg, logger)
		if err != nil {
			return services.SweepReport{}, err
		}
		defer cs.DB.Close()
		return cs.Sweeper(cfg, logger).Sweep(ctx)
	}
)

type options struct {
	configPath string
}

// args turns the persistent flags into the argument list understood by
// config.Load.
func (o *options) args() []string {
	if o.configPath == "" {
		return nil
	}
	return []string{"-config", o.configPath}
}

func (o *options) load() (*config.Config, error) {
	return config.Load(o.args())
}

func (o *options) loadValid() (*config.Config, error) {
	return config.LoadConfig(o.args())
}

func (o *options) logger(cmd *cobra.Command, cfg *config.Config) (logging.Logger, error) {
	return server.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "uploadctl",
		Short:         "Upload service admin tool",
		Long:          "Administrative commands for the media upload service. Settings come from the same config file, .env and UPLOAD_* variables as the server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a JSON or YAML config file")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newSweepCmd(opts))
	cmd.AddCommand(newTokenCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newUploadCmd())

	return cmd
}

func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

func printf(cmd *cobra.Command, format string, a ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}

func warnf(cmd *cobra.Command, format string, a ...any) {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: "+format+"\n", a...)
}
