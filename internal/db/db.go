package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/config"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
)

// Open connects to Postgres and migrates the schema. A nil, nil return
// means persistence is not configured; callers degrade to 503 rather
// than refusing to start.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DatabaseDSN == "" {
		log.Warn("DATABASE_URL not set, data endpoints will return 503")
		return nil, nil
	}

	logLevel := gormlogger.Error
	if cfg.Env == "development" {
		logLevel = gormlogger.Info
	}
	switch cfg.DBLogLevel {
	case "silent":
		logLevel = gormlogger.Silent
	case "error":
		logLevel = gormlogger.Error
	case "warn":
		logLevel = gormlogger.Warn
	case "info":
		logLevel = gormlogger.Info
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	log.Info("database connected and migrated")
	return gdb, nil
}

// Migrate creates or updates the schema. Split out so tests can run it
// against SQLite.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.Profile{},
		&models.Submission{},
		&models.ActivityLog{},
		&models.Backup{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
