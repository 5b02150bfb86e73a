package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const DefaultPath = "migrations"

// Config points a Runner at a migrations directory and a Postgres DSN.
type Config struct {
	MigrationsPath string
	DatabaseURL    string
	Logger         *slog.Logger
}

// Runner applies the SQL migrations that create the notifications, groups and courses tables.
type Runner struct {
	path   string
	dsn    string
	logger *slog.Logger
}

func NewRunner(cfg Config) *Runner {
	r := &Runner{path: cfg.MigrationsPath, dsn: cfg.DatabaseURL, logger: cfg.Logger}
	if r.path == "" {
		r.path = DefaultPath
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Up applies every pending migration.
func (r *Runner) Up() error {
	return r.with(func(m *migrate.Migrate) error {
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			r.logger.Info("schema is up to date")
			return nil
		}
		return err
	})
}

// Down reverts the most recent migration.
func (r *Runner) Down() error {
	return r.with(func(m *migrate.Migrate) error {
		err := m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) {
			r.logger.Info("nothing to roll back")
			return nil
		}
		return err
	})
}

// Force marks version as applied and clears the dirty flag.
func (r *Runner) Force(version int) error {
	r.logger.Warn("forcing migration version", "version", version)
	return r.with(func(m *migrate.Migrate) error { return m.Force(version) })
}

// Version reports the applied version. A fresh database reports 0.
func (r *Runner) Version() (version uint, dirty bool, err error) {
	err = r.with(func(m *migrate.Migrate) error {
		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}

func (r *Runner) with(fn func(*migrate.Migrate) error) error {
	db, err := sql.Open("postgres", r.dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+r.path, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("load migrations from %s: %w", r.path, err)
	}
	defer m.Close()

	if err := fn(m); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// AutoMigrate brings the schema up to date on startup, refusing to run over a dirty version.
func AutoMigrate(cfg Config) error {
	r := NewRunner(cfg)

	from, dirty, err := r.Version()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database in dirty state at version %d", from)
	}
	if err := r.Up(); err != nil {
		return err
	}
	to, _, err := r.Version()
	if err != nil {
		return err
	}
	r.logger.Info("migrations applied", "from_version", from, "to_version", to)
	return nil
}
