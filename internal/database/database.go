// Package database manages the gorm connection shared by all modules.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/clipstack/clipstack/internal/config"
	"github.com/clipstack/clipstack/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// Initialize sets up the database connection based on configuration
func Initialize() error {
	cfg := config.Get()

	var err error
	switch cfg.Database.Type {
	case "postgres":
		db, err = connectPostgres(&cfg.Database)
	case "sqlite":
		db, err = connectSQLite(&cfg.Database)
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database initialized (%s)", cfg.Database.Type)
	return nil
}

func connectPostgres(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.Username, cfg.Password, cfg.Database, cfg.Port)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogMode(cfg),
	})
}

func connectSQLite(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(cfg.DataDir, "clipstack.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	return gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormLogMode(cfg),
	})
}

func gormLogMode(cfg *config.DatabaseConfig) gormlogger.Interface {
	if cfg.LogQueries {
		return gormlogger.Default.LogMode(gormlogger.Info)
	}
	return gormlogger.Default.LogMode(gormlogger.Warn)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// SetDB replaces the database instance (used by tests)
func SetDB(instance *gorm.DB) {
	db = instance
}
