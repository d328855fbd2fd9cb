package config

import (
	"errors"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/skillswap/backend/internal/models"
)

var PostgresDB *gorm.DB

func InitPostgres() error {
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		return errors.New("POSTGRES_URI environment variable is not set")
	}
	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	// Connection Pooling settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	PostgresDB = db
	return nil
}

// MigratePostgres creates/updates the relational schema. Sessions live in
// MongoDB and are not migrated here.
func MigratePostgres() error {
	if PostgresDB == nil {
		return errors.New("PostgresDB is nil; call InitPostgres() first")
	}
	err := PostgresDB.AutoMigrate(
		&models.User{},
		&models.Skill{},
		&models.UserSkill{},
		&models.MentorRating{},
		&models.TokenWallet{},
		&models.TokenTransaction{},
		&models.RecommendationRecord{},
	)
	if err != nil {
		return err
	}

	// Backstop for the ledger's per-session duplicate guards; AutoMigrate
	// cannot express a partial index.
	return PostgresDB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_token_transactions_session_type_completed
		 ON token_transactions (session_id, type) WHERE status = 'completed'`,
	).Error
}
