package cli

import (
	"fmt"
	"io"

	"github.com/clubstride/hourtrack/internal/db"
)

// RunMigrateCommand applies pending migrations and seeds the bootstrap admin.
func RunMigrateCommand(dbPath string, admin db.BootstrapAdmin, out io.Writer) error {
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	applied, err := db.Migrate(database)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	seeded, err := db.SeedDefaultAdmin(database, admin)
	if err != nil {
		return fmt.Errorf("seed default admin: %w", err)
	}

	if len(applied) == 0 {
		fmt.Fprintln(out, "Schema is up to date")
	}
	for _, version := range applied {
		fmt.Fprintf(out, "Applied migration %s\n", version)
	}
	if seeded {
		fmt.Fprintf(out, "Created bootstrap admin %s\n", admin.Username)
	}
	return nil
}
