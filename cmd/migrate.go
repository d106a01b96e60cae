package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/donation-management/db"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const migrationsTable = "schema_migrations"

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply the donation schema migrations",
		Long: `Apply the goose migrations for donation programs and donations.
The migrations embedded in the binary are used unless --dir points at a directory on disk.`,
	}
	migrateRollback bool
	migrateStatus   bool
	migrateTo       int64
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration")
	migrateCmd.Flags().BoolVarP(&migrateStatus, "status", "s", false, "print the applied and pending migrations")
	migrateCmd.Flags().Int64Var(&migrateTo, "to", 0, "migrate up, or down with --rollback, to this version")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "", "read migrations from this directory instead of the embedded set")
}

// migrationCommand maps the flags onto a goose command and its arguments.
func migrationCommand() (string, []string) {
	switch {
	case migrateStatus:
		return "status", nil
	case migrateRollback && migrateTo > 0:
		return "down-to", []string{fmt.Sprint(migrateTo)}
	case migrateRollback:
		return "down", nil
	case migrateTo > 0:
		return "up-to", []string{fmt.Sprint(migrateTo)}
	default:
		return "up", nil
	}
}

func runMigration(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}

	conn, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer conn.Close()
	goose.SetTableName(migrationsTable)

	dir := migrateDir
	if dir == "" {
		goose.SetBaseFS(db.Migrations)
		dir = "migrations"
	}

	command, args := migrationCommand()
	slog.Info("running migrations", "command", command, "dir", dir)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := goose.RunContext(ctx, command, conn, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
