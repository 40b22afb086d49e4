package models

import (
	"time"
)

// PriceSource records where a card's canonical price came from.
const (
	PriceSourceAPI   = "api"   // Pokemon Price Tracker market data
	PriceSourceAI    = "ai"    // Gemini estimate fallback
	PriceSourceError = "error" // no price could be resolved
)

// Card is one persisted valuation record: identification, grading,
// authenticity and the canonical price chosen at analysis time.
type Card struct {
	ID             uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	CardName       string `json:"card_name" gorm:"not null;index"`
	EstimatedPrice string `json:"estimated_price" gorm:"not null"`
	// Numeric form of EstimatedPrice; nil when the display string was unparseable.
	EstimatedPriceValue *float64 `json:"estimated_price_value"`
	Details             string   `json:"details"`

	ImageData     []byte `json:"-" gorm:"type:blob"`
	ImageFilename string `json:"image_filename"`

	// Grading sub-scores from the vision analysis. Centering keeps its
	// legacy "comment" column name, the rest use "description".
	CenteringScore     *float64 `json:"centering_score"`
	CenteringComment   string   `json:"centering_comment"`
	CornersScore       *float64 `json:"corners_score"`
	CornersDescription string   `json:"corners_description"`
	EdgesScore         *float64 `json:"edges_score"`
	EdgesDescription   string   `json:"edges_description"`
	SurfaceScore       *float64 `json:"surface_score"`
	SurfaceDescription string   `json:"surface_description"`

	// Mean of the present sub-scores rounded to one decimal; nil when none present.
	OverallGrade *float64 `json:"overall_grade"`

	// Authenticity assessment is advisory only and never blocks a save.
	IsAuthentic            *bool    `json:"is_authentic"`
	AuthenticityConfidence *float64 `json:"authenticity_confidence"`
	AuthenticityNotes      string   `json:"authenticity_notes"`

	MarketPrice *float64 `json:"market_price"`
	PriceSource string   `json:"price_source"` // "api", "ai", or "error"
	TCGPlayerID string   `json:"tcg_player_id"`
	SetName     string   `json:"set_name"`
	CardNumber  string   `json:"card_number"`
	Rarity      string   `json:"rarity"`

	PSA10Price *float64 `json:"psa_10_price"`
	PSA9Price  *float64 `json:"psa_9_price"`
	PSA8Price  *float64 `json:"psa_8_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// A card's history is owned by the card and deleted with it.
	PriceHistory []PriceHistoryEntry `json:"-" gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
}
