package database

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/codyseavey/pokewealth/backend/internal/models"
)

// RunMigrations runs custom data migrations after the schema migration.
// Both are safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := normalizePriceSource(db); err != nil {
		return err
	}
	return backfillPriceHistory(db)
}

// normalizePriceSource gives legacy rows saved before provenance tracking a
// usable price_source value. Those rows all predate the pricing API
// integration, so their prices were AI estimates.
func normalizePriceSource(db *gorm.DB) error {
	result := db.Exec(`UPDATE cards SET price_source = 'ai' WHERE price_source IS NULL OR price_source = ''`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Infof("Normalized price_source on %d legacy cards", result.RowsAffected)
	}
	return nil
}

// backfillPriceHistory guarantees the invariant that every card has at least
// one price history entry. Cards imported before the ledger existed get one
// stamped with their creation time so portfolio windows can see them.
func backfillPriceHistory(db *gorm.DB) error {
	var cards []models.Card
	err := db.
		Select("id", "estimated_price", "created_at").
		Where("id NOT IN (?)", db.Model(&models.PriceHistoryEntry{}).Distinct("card_id")).
		Find(&cards).Error
	if err != nil {
		return err
	}

	for _, card := range cards {
		entry := models.PriceHistoryEntry{
			CardID:       card.ID,
			Price:        models.ParsePriceString(card.EstimatedPrice),
			PriceDisplay: card.EstimatedPrice,
			RecordedAt:   card.CreatedAt,
		}
		if err := db.Create(&entry).Error; err != nil {
			return err
		}
	}

	if len(cards) > 0 {
		log.Infof("Backfilled price history for %d cards", len(cards))
	}
	return nil
}
