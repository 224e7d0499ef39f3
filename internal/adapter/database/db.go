// Package database opens the platform's SQL store. SQLite is the default
// deployment; Postgres is selected when DATABASE_URL is set. Both hand back
// the same DB wrapper so the repository is driver-agnostic.
package database

import (
	"database/sql"
	"os"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

// NewDB picks the driver from the configuration: a database URL means
// Postgres, otherwise SQLite at the given path (default database.db).
func NewDB(databaseURL string, databasePath string, logger zerolog.Logger) (*DB, error) {
	if databaseURL != "" {
		return NewPostgresDB(databaseURL, logger)
	}

	if databasePath == "" {
		databasePath = "database.db"
	}

	return NewSQLiteDB(databasePath, logger)
}

func migrationsPath(dialect string) string {
	path := os.Getenv("MIGRATIONS_PATH")

	if path == "" {
		path = "db/migrations/" + dialect
	}

	return path
}

func runMigrations(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}
