package mysql

import (
	"context"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrator brings the schema up to date; the store runs it on Init.
type Migrator struct {
	dsn string
}

func NewMigrator(config Config) *Migrator {
	return &Migrator{dsn: config.DSN()}
}

func (m *Migrator) Init(_ context.Context) error {
	return m.Up()
}

func (m *Migrator) Up() error {
	migration, err := m.open()
	if err != nil {
		return err
	}
	defer closeMigration(migration)

	err = migration.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("database schema is up to date")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	version, _, _ := migration.Version()
	log.WithField("version", version).Info("migrations applied")
	return nil
}

func (m *Migrator) Down() error {
	migration, err := m.open()
	if err != nil {
		return err
	}
	defer closeMigration(migration)

	if err := migration.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "failed to roll back migrations")
	}
	log.Info("migrations rolled back")
	return nil
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read embedded migrations")
	}
	migration, err := migrate.NewWithSourceInstance("iofs", source, "mysql://"+m.dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create migrator")
	}
	return migration, nil
}

func closeMigration(migration *migrate.Migrate) {
	sourceErr, dbErr := migration.Close()
	if sourceErr != nil || dbErr != nil {
		log.WithFields(log.Fields{"source": sourceErr, "database": dbErr}).Warn("failed to close migrator")
	}
}
