package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/pokewealth/backend/internal/metrics"
	"github.com/codyseavey/pokewealth/backend/internal/models"
)

// lookbackWindows are the fixed durations portfolio deltas are computed
// over, keyed the way the API reports them.
var lookbackWindows = []struct {
	Key string
	Age time.Duration
}{
	{"1_day", 24 * time.Hour},
	{"1_month", 30 * 24 * time.Hour},
	{"3_months", 90 * 24 * time.Hour},
	{"1_year", 365 * 24 * time.Hour},
}

// PortfolioService computes collection value analytics. Every call rescans
// the card set and reissues ledger queries; there is no materialized
// snapshot to go stale.
type PortfolioService struct {
	db     *gorm.DB
	ledger *PriceHistoryLedger
}

// NewPortfolioService creates a new portfolio service.
func NewPortfolioService(db *gorm.DB, ledger *PriceHistoryLedger) *PortfolioService {
	return &PortfolioService{db: db, ledger: ledger}
}

// ComputeAnalytics returns the current total collection value and its
// change over each look-back window relative to the given instant.
//
// The current total re-parses each card's display string rather than
// trusting the cached numeric column. A card with no ledger entry old
// enough for a window contributes 0 to that window's historical total; it
// still counts toward total_cards.
func (s *PortfolioService) ComputeAnalytics(now time.Time) (*models.PortfolioReport, error) {
	var cards []models.Card
	err := s.db.
		Select("id", "estimated_price").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}

	var totalValue float64
	for _, card := range cards {
		totalValue += models.ParsePriceString(card.EstimatedPrice)
	}

	report := &models.PortfolioReport{
		TotalValue:   totalValue,
		TotalCards:   len(cards),
		PriceChanges: make(map[string]models.PriceChange, len(lookbackWindows)),
	}

	for _, window := range lookbackWindows {
		cutoff := now.Add(-window.Age)

		var historicalTotal float64
		for _, card := range cards {
			entry, err := s.ledger.NearestAtOrBefore(card.ID, cutoff)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				historicalTotal += entry.Price
			}
		}

		delta := totalValue - historicalTotal
		percentage := 0.0
		if historicalTotal != 0 {
			percentage = 100 * delta / historicalTotal
		}

		report.PriceChanges[window.Key] = models.PriceChange{
			Value:      delta,
			Percentage: percentage,
		}
	}

	metrics.CollectionCardsTotal.Set(float64(report.TotalCards))
	metrics.PortfolioValueUSD.Set(report.TotalValue)

	return report, nil
}
