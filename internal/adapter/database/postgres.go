package database

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"
)

func NewPostgresDB(url string, logger zerolog.Logger) (*DB, error) {
	sqlDB, err := otelsql.Open("pgx", url,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName("todopop"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if err := RunPostgresMigrations(sqlDB, migrationsPath("postgres")); err != nil {
		sqlDB.Close()
		return nil, err
	}

	db := sqldblogger.OpenDriver(url, sqlDB.Driver(), zerologadapter.New(logger))
	sqlDB.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	return &DB{
		DB:           db,
		QueryBuilder: &queryBuilder,
	}, nil
}

func RunPostgresMigrations(db *sql.DB, path string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})

	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)

	if err != nil {
		return err
	}

	return runMigrations(m)
}
