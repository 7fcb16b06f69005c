package repository

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/solpay-io/solpay/internal/models"
	"github.com/solpay-io/solpay/pkg/logger"
)

type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (models.Repository, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	if err := db.AutoMigrate(&models.Developer{}, &models.Subscriber{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return &PostgresDB{Conn: db, logger: logger}, nil
}

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

func (db *PostgresDB) CreateDeveloper(developer *models.Developer) error {
	if err := db.Conn.Create(developer).Error; err != nil {
		return fmt.Errorf("failed to create developer: %s", err)
	}

	return nil
}

func (db *PostgresDB) GetDeveloperByEmail(email string) (*models.Developer, error) {
	var developer models.Developer
	if err := db.Conn.Where("email = ?", email).First(&developer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get developer by email: %s", err)
	}

	return &developer, nil
}

func (db *PostgresDB) GetDeveloperByAPIKey(apiKey string) (*models.Developer, error) {
	var developer models.Developer
	if err := db.Conn.Where("api_key = ?", apiKey).First(&developer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get developer by API key: %s", err)
	}

	return &developer, nil
}

func (db *PostgresDB) GetDeveloperByTelegramUsername(username string) (*models.Developer, error) {
	var developer models.Developer
	if err := db.Conn.Where("telegram_username = ?", username).First(&developer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get developer by telegram username: %s", err)
	}

	return &developer, nil
}

func (db *PostgresDB) SetDeveloperTelegramChatID(username, chatID string) error {
	if err := db.Conn.Model(&models.Developer{}).Where("telegram_username = ?", username).Update("telegram_chat_id", chatID).Error; err != nil {
		return fmt.Errorf("failed to set developer telegram chat ID: %s", err)
	}
	return nil
}

// CreateSubscriberIfAbsent inserts the subscriber unless one already exists
// for the (email, developer_id) pair. The unique index plus ON CONFLICT DO
// NOTHING makes concurrent duplicate verifications race harmlessly.
func (db *PostgresDB) CreateSubscriberIfAbsent(subscriber *models.Subscriber) (bool, error) {
	result := db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "developer_id"}},
		DoNothing: true,
	}).Create(subscriber)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create subscriber: %s", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (db *PostgresDB) GetSubscriber(email string, developerID uint) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	if err := db.Conn.Where("email = ? AND developer_id = ?", email, developerID).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscriber: %s", err)
	}

	return &subscriber, nil
}

func (db *PostgresDB) ListSubscribers(developerID uint) ([]*models.Subscriber, error) {
	var subscribers []*models.Subscriber
	if err := db.Conn.Where("developer_id = ?", developerID).Order("created_at DESC").Find(&subscribers).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %s", err)
	}

	return subscribers, nil
}
