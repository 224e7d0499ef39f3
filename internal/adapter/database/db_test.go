package database_test

import (
	"path/filepath"
	"runtime"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todopop/internal/adapter/database"
)

func sqliteMigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "..", "db", "migrations", "sqlite")
}

func TestNewDBSelectsSQLiteFromConfig(t *testing.T) {
	t.Setenv("MIGRATIONS_PATH", sqliteMigrationsDir())

	// The driver choice comes from the arguments, not the process
	// environment.
	t.Setenv("DATABASE_URL", "postgres://ignored:5432/ignored")

	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := database.NewDB("", dbPath, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	sqlStr, _, err := db.QueryBuilder.Select("id").From("todos").Where(sq.Eq{"uuid": "x"}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "= ?")

	_, err = db.Exec("SELECT count(*) FROM todos")
	assert.NoError(t, err)
}
