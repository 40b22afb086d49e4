package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/pokewealth/backend/internal/metrics"
	"github.com/codyseavey/pokewealth/backend/internal/models"
)

// PriceHistoryLedger is the append-only per-card price time series. Entries
// are never updated or reordered; a price change means a new entry.
type PriceHistoryLedger struct {
	db *gorm.DB
}

// NewPriceHistoryLedger creates a ledger over the given database.
func NewPriceHistoryLedger(db *gorm.DB) *PriceHistoryLedger {
	return &PriceHistoryLedger{db: db}
}

// Append records a new price point for a card, parsing the display string
// into its numeric form. The entry is durably written before returning.
func (l *PriceHistoryLedger) Append(cardID uint, priceDisplay string) (*models.PriceHistoryEntry, error) {
	entry := models.PriceHistoryEntry{
		CardID:       cardID,
		Price:        models.ParsePriceString(priceDisplay),
		PriceDisplay: priceDisplay,
		RecordedAt:   time.Now(),
	}

	if err := l.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to append price history for card %d: %w", cardID, err)
	}

	metrics.LedgerAppendsTotal.Inc()
	return &entry, nil
}

// History returns all entries for a card, most recent first.
func (l *PriceHistoryLedger) History(cardID uint) ([]models.PriceHistoryEntry, error) {
	var entries []models.PriceHistoryEntry
	err := l.db.
		Where("card_id = ?", cardID).
		Order("recorded_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load price history for card %d: %w", cardID, err)
	}
	return entries, nil
}

// NearestAtOrBefore returns the entry with the latest recorded_at that is
// not after the given instant, or nil when the card has no entry that old.
func (l *PriceHistoryLedger) NearestAtOrBefore(cardID uint, instant time.Time) (*models.PriceHistoryEntry, error) {
	var entry models.PriceHistoryEntry
	err := l.db.
		Where("card_id = ? AND recorded_at <= ?", cardID, instant).
		Order("recorded_at DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query price history for card %d: %w", cardID, err)
	}
	return &entry, nil
}
