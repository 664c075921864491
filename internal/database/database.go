// Package database opens the catalog's SQL connection pool and applies the
// embedded goose migrations. PostgreSQL (through pgx) is the production
// backend; SQLite backs local runs and tests.
package database

import (
	"embed"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var embedMigrations embed.FS

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Connect opens the pool selected by cfg.Driver and pings it.
func Connect(cfg config.DatabaseConfig, log logger.ZapLogger) (*sqlx.DB, error) {
	var dsn string
	switch cfg.Driver {
	case DriverPostgres:
		dsn = cfg.Postgres.DSN()
	case DriverSQLite:
		dsn = cfg.SQLitePath
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}

	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database connect: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// A single connection keeps ":memory:" databases alive and
		// serializes writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
		db.SetConnMaxIdleTime(time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second)
	}

	log.Info("database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

// Dialect maps a driver name to its goose dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return "postgres", nil
	case DriverSQLite:
		return "sqlite3", nil
	}
	return "", fmt.Errorf("database: unsupported driver %q", driver)
}

// Migrate runs all pending goose migrations from the embedded SQL files.
func Migrate(db *sqlx.DB, log logger.ZapLogger) error {
	dialect, err := Dialect(db.DriverName())
	if err != nil {
		return err
	}

	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	log.Info("database migrations applied", zap.String("dialect", dialect))
	return nil
}

// Version reports the current schema version.
func Version(db *sqlx.DB) (int64, error) {
	dialect, err := Dialect(db.DriverName())
	if err != nil {
		return 0, err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("goose set dialect: %w", err)
	}
	return goose.GetDBVersion(db.DB)
}
