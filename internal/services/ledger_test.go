package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/pokewealth/backend/internal/models"
)

// newTestDB opens an isolated in-memory database for one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Every pooled connection would otherwise get its own :memory: database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Card{}, &models.PriceHistoryEntry{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// newTestCard inserts a minimal card row and returns its id.
func newTestCard(t *testing.T, db *gorm.DB, name, price string) uint {
	t.Helper()

	card := models.Card{
		CardName:       name,
		EstimatedPrice: price,
		PriceSource:    models.PriceSourceAI,
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card.ID
}

func TestLedgerAppend(t *testing.T) {
	db := newTestDB(t)
	ledger := NewPriceHistoryLedger(db)
	cardID := newTestCard(t, db, "Charizard", "$100")

	entry, err := ledger.Append(cardID, "$100")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if entry.Price != 100 {
		t.Errorf("entry price = %v, want 100", entry.Price)
	}
	if entry.PriceDisplay != "$100" {
		t.Errorf("entry display = %q, want %q", entry.PriceDisplay, "$100")
	}
	if entry.RecordedAt.IsZero() {
		t.Error("entry recorded_at should be set")
	}

	// A second append is a new entry, never an update.
	if _, err := ledger.Append(cardID, "$150"); err != nil {
		t.Fatalf("second Append failed: %v", err)
	}

	history, err := ledger.History(cardID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	// Most recent first.
	if history[0].PriceDisplay != "$150" || history[1].PriceDisplay != "$100" {
		t.Errorf("history order wrong: got [%q, %q]", history[0].PriceDisplay, history[1].PriceDisplay)
	}
}

func TestLedgerAppendUnparseable(t *testing.T) {
	db := newTestDB(t)
	ledger := NewPriceHistoryLedger(db)
	cardID := newTestCard(t, db, "Pikachu", "Price unavailable")

	entry, err := ledger.Append(cardID, "Price unavailable")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if entry.Price != 0 {
		t.Errorf("unparseable display should store 0, got %v", entry.Price)
	}
}

func TestLedgerHistoryEmpty(t *testing.T) {
	db := newTestDB(t)
	ledger := NewPriceHistoryLedger(db)

	history, err := ledger.History(9999)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history for unknown card should be empty, got %d entries", len(history))
	}
}

func TestLedgerNearestAtOrBefore(t *testing.T) {
	db := newTestDB(t)
	ledger := NewPriceHistoryLedger(db)
	cardID := newTestCard(t, db, "Blastoise", "$200")

	now := time.Now()
	insertEntry(t, db, cardID, 100, "$100", now.Add(-400*24*time.Hour))
	insertEntry(t, db, cardID, 150, "$150", now.Add(-10*24*time.Hour))

	// Instant between the two entries picks the older one.
	entry, err := ledger.NearestAtOrBefore(cardID, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("NearestAtOrBefore failed: %v", err)
	}
	if entry == nil || entry.Price != 100 {
		t.Errorf("expected the $100 entry, got %+v", entry)
	}

	// Instant after both picks the latest.
	entry, err = ledger.NearestAtOrBefore(cardID, now)
	if err != nil {
		t.Fatalf("NearestAtOrBefore failed: %v", err)
	}
	if entry == nil || entry.Price != 150 {
		t.Errorf("expected the $150 entry, got %+v", entry)
	}

	// Instant before the card existed finds nothing.
	entry, err = ledger.NearestAtOrBefore(cardID, now.Add(-500*24*time.Hour))
	if err != nil {
		t.Fatalf("NearestAtOrBefore failed: %v", err)
	}
	if entry != nil {
		t.Errorf("expected nil for instant before first entry, got %+v", entry)
	}
}

// insertEntry writes a history row with an explicit timestamp.
func insertEntry(t *testing.T, db *gorm.DB, cardID uint, price float64, display string, recordedAt time.Time) {
	t.Helper()

	entry := models.PriceHistoryEntry{
		CardID:       cardID,
		Price:        price,
		PriceDisplay: display,
		RecordedAt:   recordedAt,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("failed to insert history entry: %v", err)
	}
}
