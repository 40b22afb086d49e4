package database

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/pokewealth/backend/internal/models"
)

var DB *gorm.DB

func Initialize(dbPath string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	log.Info("Database connected successfully")

	err = DB.AutoMigrate(&models.Card{}, &models.PriceHistoryEntry{})
	if err != nil {
		return err
	}

	if err := RunMigrations(DB); err != nil {
		return err
	}

	log.Info("Database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
