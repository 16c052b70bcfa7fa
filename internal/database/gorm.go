package database

import (
	"fmt"
	"log"

	"github.com/vuthevietgps/chatbot2-sub001/internal/config"
	"github.com/vuthevietgps/chatbot2-sub001/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var GormDB *gorm.DB

func InitGorm(cfg *config.Config) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	var err error
	GormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	log.Println("Connected to PostgreSQL successfully")

	if err := Migrate(GormDB); err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}

	log.Println("Database migration completed")
}

// Migrate runs the schema migration against any gorm DB (tests use SQLite).
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Fanpage{},
		&models.Customer{},
		&models.Conversation{},
		&models.Message{},
		&models.Script{},
		&models.SubScript{},
		&models.AIConfig{},
		&models.WebhookLog{},
	)
}
