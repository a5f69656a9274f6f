package db

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate brings the schema up to date. With MIGRATIONS enabled on Postgres the
// embedded SQL migrations run through golang-migrate; otherwise gorm AutoMigrate
// derives the schema from the models.
func Migrate(conn *gorm.DB, cfg config.DatabaseConfig) error {
	if cfg.Migrations && cfg.Driver != "sqlite" {
		if err := runSQLMigrations(ToURLDSN(NormalizeDSN(cfg.MigrateURL()))); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
	} else if err := AutoMigrate(conn); err != nil {
		return err
	}
	for _, table := range []string{"users", "orders", "payments", "settings"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// AutoMigrate creates or updates every table from the models.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func runSQLMigrations(url string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	v, dirty, _ := m.Version()
	log.Printf("SQL migrations at version %d (dirty=%v)", v, dirty)
	return nil
}
