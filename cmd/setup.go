package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ga4x/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to --path, or to --config when unset.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		path = cmd.String("config")
	}
	if path == "" {
		return fmt.Errorf("%w: config path", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Config written to %s\n\n", path)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Fill in [credentials.google] and analytics.property_id\n")
	r.writePlain("2. Run 'ga4x serve' and open http://%s/auth\n", r.config.Server.Address())

	return nil
}

// SetupDatabase initializes the database and runs migrations, or rolls back the latest one.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	r.logger.Info("initializing database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
	} else {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	return r.writePlain("✓ Database %s at schema version %d\n", path, version)
}
