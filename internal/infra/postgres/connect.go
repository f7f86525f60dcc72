package postgres

import (
	"fmt"
	"log"

	"github.com/safarika/busbook/config"
	"github.com/safarika/busbook/internal/models"
	pkgPostgres "github.com/safarika/busbook/pkg/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.PostgresConfig) (*gorm.DB, error) {
	db, err := pkgPostgres.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Booking{},
		&models.Passenger{},
		&models.PaymentAttempt{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Connected to Postgres.")

	return db, nil
}

func Disconnect(db *gorm.DB) {
	if db == nil {
		return
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("Connection to Postgres closed.")
}
