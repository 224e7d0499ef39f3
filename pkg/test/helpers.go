package test

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"todopop/internal/adapter/database"
)

// findProjectRoot walks up from this file until it hits go.mod, so tests can
// locate the migrations from any package directory.
func findProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)

		if parent == dir {
			break
		}

		dir = parent
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	log.Fatal("could not find project root directory")
	return ""
}

// InitTestDB opens a fresh in-memory SQLite database with the schema applied.
func InitTestDB() *database.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:")

	if err != nil {
		log.Fatal(err)
	}

	// One in-memory database per handle; a second pooled connection would
	// see an empty schema.
	sqlDB.SetMaxOpenConns(1)

	migrations := filepath.Join(findProjectRoot(), "db", "migrations", "sqlite")

	if err := database.RunSQLiteMigrations(sqlDB, migrations); err != nil {
		log.Fatal(err)
	}

	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &database.DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
	}
}
