package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/hr-portal/internal/session/postgres"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply the session store schema (embedded goose migrations)",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := initLogger(cfg)

	db, err := postgres.Open(cfg.Session.Driver, cfg.Session.DSN)
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	defer closeDB(db, log)

	if err := postgres.Migrate(ctx, db, cfg.Session.Driver, migrateRollback); err != nil {
		return err
	}

	version, err := postgres.Version(ctx, db, cfg.Session.Driver)
	if err != nil {
		return err
	}
	printer().Success("session schema at version %d (%s)", version, cfg.Session.Driver)
	return nil
}
