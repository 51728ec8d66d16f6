package config

import (
	"fmt"
	"kidcheck/domain"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GetDatabaseURL builds the postgres DSN from DB_* variables. DB_SSLMODE defaults to disable.
func GetDatabaseURL() string {
	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"), os.Getenv("DB_DATABASE"), sslMode)
}

// BootDB connects, sizes the pool and migrates the user and request tables.
func BootDB() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := migrate(db); err != nil {
		return db, err
	}

	GetLogrusInstance().WithFields(logrus.Fields{
		"host":     os.Getenv("DB_HOST"),
		"database": os.Getenv("DB_DATABASE"),
	}).Info("DB initialized")
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.StatusRequest{}); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}
