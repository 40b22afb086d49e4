package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/codyseavey/pokewealth/backend/internal/models"
)

// ErrCardNotFound is returned for lookups of cards that do not exist.
var ErrCardNotFound = errors.New("card not found")

// maxImageSize caps uploaded card photos at 10MB.
const maxImageSize = 10 * 1024 * 1024

// CardService persists cards and keeps their price history in step: the
// card row is always written before any ledger entry so the history never
// references a card that failed to save.
type CardService struct {
	db     *gorm.DB
	ledger *PriceHistoryLedger
}

// NewCardService creates a new card service.
func NewCardService(db *gorm.DB, ledger *PriceHistoryLedger) *CardService {
	return &CardService{db: db, ledger: ledger}
}

// SaveCard creates a card from an analysis result and its image, and
// records the canonical price as the card's first ledger entry.
func (s *CardService) SaveCard(result *models.AnalysisResult, imageData []byte, filename string) (*models.Card, error) {
	if err := validateImage(imageData); err != nil {
		return nil, err
	}

	display := result.EstimatedPrice
	if display == "" {
		display = priceUnavailable
	}

	source := result.PriceSource
	if source == "" {
		source = models.PriceSourceError
	}

	card := models.Card{
		CardName:            result.CardName,
		EstimatedPrice:      display,
		EstimatedPriceValue: result.EstimatedPriceValue,
		Details:             result.Details,
		ImageData:           imageData,
		ImageFilename:       normalizeFilename(filename),

		CenteringScore:     result.CenteringScore,
		CenteringComment:   result.CenteringComment,
		CornersScore:       result.CornersScore,
		CornersDescription: result.CornersDescription,
		EdgesScore:         result.EdgesScore,
		EdgesDescription:   result.EdgesDescription,
		SurfaceScore:       result.SurfaceScore,
		SurfaceDescription: result.SurfaceDescription,

		OverallGrade: models.OverallGrade(
			result.CenteringScore,
			result.CornersScore,
			result.EdgesScore,
			result.SurfaceScore,
		),

		IsAuthentic:            result.IsAuthentic,
		AuthenticityConfidence: result.AuthenticityConfidence,
		AuthenticityNotes:      result.AuthenticityNotes,

		MarketPrice: result.MarketPrice,
		PriceSource: source,
		TCGPlayerID: result.TCGPlayerID,
		SetName:     result.SetName,
		CardNumber:  result.CardNumber,
		Rarity:      result.Rarity,
		PSA10Price:  result.PSA10Price,
		PSA9Price:   result.PSA9Price,
		PSA8Price:   result.PSA8Price,
	}

	if err := s.db.Create(&card).Error; err != nil {
		return nil, fmt.Errorf("failed to save card: %w", err)
	}

	if _, err := s.ledger.Append(card.ID, card.EstimatedPrice); err != nil {
		return nil, err
	}

	log.Infof("Saved card %d (%q, %s, source=%s)", card.ID, card.CardName, card.EstimatedPrice, card.PriceSource)
	return &card, nil
}

// GetCard returns a card by id, including its image blob.
func (s *CardService) GetCard(id uint) (*models.Card, error) {
	var card models.Card
	err := s.db.First(&card, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load card %d: %w", id, err)
	}
	return &card, nil
}

// ListCards returns all cards, newest first, without image blobs.
func (s *CardService) ListCards() ([]models.Card, error) {
	var cards []models.Card
	err := s.db.
		Omit("image_data").
		Order("created_at DESC, id DESC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// UpdatePrice sets a new canonical price on a card and appends it to the
// ledger. The existing history is never rewritten.
func (s *CardService) UpdatePrice(id uint, priceDisplay string) (*models.Card, error) {
	card, err := s.GetCard(id)
	if err != nil {
		return nil, err
	}

	card.EstimatedPrice = priceDisplay
	card.EstimatedPriceValue = parsedValue(priceDisplay)

	if err := s.db.Save(card).Error; err != nil {
		return nil, fmt.Errorf("failed to update price for card %d: %w", id, err)
	}

	if _, err := s.ledger.Append(card.ID, priceDisplay); err != nil {
		return nil, err
	}

	return card, nil
}

// DeleteCard removes a card and its entire price history.
func (s *CardService) DeleteCard(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var card models.Card
		err := tx.Select("id").First(&card, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCardNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load card %d: %w", id, err)
		}

		if err := tx.Where("card_id = ?", id).Delete(&models.PriceHistoryEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete price history for card %d: %w", id, err)
		}
		if err := tx.Delete(&models.Card{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete card %d: %w", id, err)
		}
		return nil
	})
}

// GetImage returns a card's image bytes and detected content type.
func (s *CardService) GetImage(id uint) ([]byte, string, error) {
	card, err := s.GetCard(id)
	if err != nil {
		return nil, "", err
	}
	if len(card.ImageData) == 0 {
		return nil, "", ErrCardNotFound
	}
	return card.ImageData, http.DetectContentType(card.ImageData), nil
}

func validateImage(imageData []byte) error {
	if len(imageData) == 0 {
		return fmt.Errorf("empty image data")
	}
	if len(imageData) > maxImageSize {
		return fmt.Errorf("image exceeds %d byte limit", maxImageSize)
	}
	return nil
}

// normalizeFilename keeps the uploaded filename when one was provided and
// generates one otherwise, so every stored image has a name to serve under.
func normalizeFilename(filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return uuid.New().String() + ".jpg"
	}
	return filename
}
