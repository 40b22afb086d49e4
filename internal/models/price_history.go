package models

import (
	"time"
)

// PriceHistoryEntry is one immutable point in a card's value time series.
// Entries are append-only: price updates insert a new row, never rewrite one.
type PriceHistoryEntry struct {
	ID     uint `json:"id" gorm:"primaryKey;autoIncrement"`
	CardID uint `json:"card_id" gorm:"not null;index"`
	// Numeric value parsed from PriceDisplay; 0 when the display was unparseable.
	Price        float64   `json:"price" gorm:"not null"`
	PriceDisplay string    `json:"price_display" gorm:"not null"`
	RecordedAt   time.Time `json:"recorded_at" gorm:"not null;index"`
}
