package database

import (
	"log"
	"time"

	"github.com/Yasvanth-2005/chat-backend/internal/config"
	"github.com/Yasvanth-2005/chat-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() {
	dsn := config.AppConfig.DatabaseURL
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	DB = db
	log.Println("Connected to PostgreSQL with connection pooling (max: 25, idle: 10)")
}

// Migrate creates/updates the chat schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.ChatDeletion{},
		&models.Message{},
		&models.MessageDeletion{},
		&models.Reaction{},
	)
}

// ResetPresence clears persisted connection state left over from a previous
// process lifetime. The in-memory presence registry is the sole liveness
// authority once the server is up.
func ResetPresence(db *gorm.DB) error {
	return db.Model(&models.User{}).
		Where("active = ? OR socket_id <> ''", true).
		Updates(map[string]interface{}{"active": false, "socket_id": ""}).Error
}
