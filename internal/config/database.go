package config

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/cv-screening/internal/models"
)

func InitDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.GetDatabaseDSN()

	logLevel := logger.Silent
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connected", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.DBName))

	if err := db.AutoMigrate(
		&models.Document{},
		&models.ScreeningResult{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// jobs and applicants belong to the registry service; only create them for local development
	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(&models.Job{}, &models.Applicant{}); err != nil {
			return nil, fmt.Errorf("failed to migrate registry tables: %w", err)
		}
	}

	log.Info("database migration completed")

	return db, nil
}
