package db

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/diewo77/go-printshop/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

// Connect opens the configured database, retrying while Postgres starts up.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.Driver {
	case "sqlite":
		log.Printf("Connecting to database: sqlite path=%s", cfg.SQLitePath)
		conn, err = gorm.Open(sqlite.Open(SQLiteDSN(cfg.SQLitePath)), gcfg)
	case "postgres", "":
		dsn := NormalizeDSN(cfg.DSN())
		log.Printf("Connecting to database: %s", MaskDSN(dsn))
		for i := 0; i < connectAttempts; i++ {
			conn, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				break
			}
			log.Printf("Database not ready (attempt %d/%d): %v", i+1, connectAttempts, err)
			time.Sleep(2 * time.Second)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return conn, nil
}

// SQLiteDSN enables foreign key enforcement, which sqlite leaves off by default.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=1"
}
