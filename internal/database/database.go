package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.
)

const (
	schemaTable   = "resumo_schema_migrations"
	busyTimeoutMS = 5000
)

// Database keeps the summary history and the feed items the watcher has
// already delivered.
type Database struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

func New(ctx context.Context, dbPath string, log *slog.Logger) (*Database, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", dbPath, busyTimeoutMS)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping DB file: %w", err), db.Close())
	}

	d := &Database{db: db, path: dbPath, log: log}

	version, err := d.upgradeSchema(ctx)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	log.InfoContext(ctx, "History store is ready",
		"dbPath", dbPath,
		"schemaVersion", version)

	return d, nil
}

// upgradeSchema applies the embedded migrations and returns the resulting
// schema version.
func (d *Database) upgradeSchema(ctx context.Context) (uint, error) {
	scripts, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("read embedded migrations: %w", err)
	}

	target, err := sqlite3.WithInstance(d.db, &sqlite3.Config{MigrationsTable: schemaTable})
	if err != nil {
		return 0, fmt.Errorf("prepare schema table: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", scripts, "sqlite3", target)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	m.Log = &migrateLog{ctx: ctx, log: d.log, dbPath: d.path}

	switch upErr := m.Up(); {
	case errors.Is(upErr, migrate.ErrNoChange):
		d.log.DebugContext(ctx, "Schema is up to date",
			"dbPath", d.path)
	case upErr != nil:
		return 0, fmt.Errorf("apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}

	return version, nil
}

// migrateLog routes migrate's progress lines into the structured log.
type migrateLog struct {
	ctx    context.Context
	log    *slog.Logger
	dbPath string
}

func (l *migrateLog) Printf(format string, v ...any) {
	l.log.DebugContext(l.ctx, "Schema migration step",
		"step", fmt.Sprintf(format, v...),
		"dbPath", l.dbPath)
}

func (l *migrateLog) Verbose() bool {
	return false
}

func (d *Database) Close() error {
	return d.db.Close()
}
