package main

import (
	"context"

	"github.com/desertthunder/teammirror/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the run history database and applies migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if err := r.applyConfigFlag(cmd); err != nil {
		return err
	}

	path := r.config.Database.Path

	r.logger.Info("initializing database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.writePlain("Database ready at %s\n", path)
	return nil
}

// SetupConfig writes a starter configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("Wrote %s\n", path)
	r.writePlain("Fill in credentials.source and credentials.target before exporting.\n")
	return nil
}
