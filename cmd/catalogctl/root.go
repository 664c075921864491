package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/database"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
)

type rootOptions struct {
	driver     string
	sqlitePath string
	jsonOutput bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Maintenance tool for the category catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "database driver, pgx or sqlite (default: $DB_DRIVER)")
	cmd.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite-path", "", "SQLite file (default: $SQLITE_PATH)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output as JSON")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newTreeCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	return cmd
}

func (o *rootOptions) logger() logger.ZapLogger {
	if !o.verbose {
		return logger.NewNop()
	}
	return logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     true,
		Encoding:          "console",
		Level:             "debug",
		DisableStacktrace: true,
	})
}

// open connects with the environment configuration, overridden by flags.
func (o *rootOptions) open() (*sqlx.DB, logger.ZapLogger, error) {
	cfg := config.LoadEnv().Database
	if o.driver != "" {
		cfg.Driver = o.driver
	}
	if o.sqlitePath != "" {
		cfg.SQLitePath = o.sqlitePath
	}

	log := o.logger()
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, log, nil
}
