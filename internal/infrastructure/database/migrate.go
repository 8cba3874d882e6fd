package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/ipede/email-verification-service/internal/infrastructure/config"
	"github.com/ipede/email-verification-service/migrations"
	"go.uber.org/zap"
)

// Migrator applies the embedded schema migrations
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// NewMigrator creates a migrator for the given database
func NewMigrator(cfg config.DatabaseConfig, log *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("error opening migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up applies all pending migrations
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running migrations: %w", err)
	}
	m.log.Info("Migrations completed successfully")
	return nil
}

// Down rolls back all migrations
func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error rolling back migrations: %w", err)
	}
	m.log.Info("Migrations rolled back successfully")
	return nil
}

// Steps migrates n steps up (positive) or down (negative)
func (m *Migrator) Steps(n int) error {
	if err := m.m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error migrating %d steps: %w", n, err)
	}
	return nil
}

// Force sets the migration version without running migrations
func (m *Migrator) Force(version int) error {
	return m.m.Force(version)
}

// Version returns the current version and whether it is dirty
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// RunMigrations runs all pending migrations against p's database
func (p *Postgres) RunMigrations() error {
	migrator, err := NewMigrator(p.cfg, p.log)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Up()
}
