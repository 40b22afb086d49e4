package models

// AnalysisResult is what the analyze operation returns to the client and
// what the save operation consumes. It carries the reconciled canonical
// price with provenance plus everything the vision service observed.
// Nothing is persisted until the client saves it.
type AnalysisResult struct {
	CardName   string `json:"card_name"`
	SetName    string `json:"set_name"`
	CardNumber string `json:"card_number"`
	Rarity     string `json:"rarity"`
	Details    string `json:"details"`

	EstimatedPrice      string   `json:"estimated_price"`
	EstimatedPriceValue *float64 `json:"estimated_price_value"`
	PriceSource         string   `json:"price_source"`
	MarketPrice         *float64 `json:"market_price"`
	TCGPlayerID         string   `json:"tcg_player_id"`
	PSA10Price          *float64 `json:"psa_10_price"`
	PSA9Price           *float64 `json:"psa_9_price"`
	PSA8Price           *float64 `json:"psa_8_price"`

	CenteringScore     *float64 `json:"centering_score"`
	CenteringComment   string   `json:"centering_comment"`
	CornersScore       *float64 `json:"corners_score"`
	CornersDescription string   `json:"corners_description"`
	EdgesScore         *float64 `json:"edges_score"`
	EdgesDescription   string   `json:"edges_description"`
	SurfaceScore       *float64 `json:"surface_score"`
	SurfaceDescription string   `json:"surface_description"`

	IsAuthentic            *bool    `json:"is_authentic"`
	AuthenticityConfidence *float64 `json:"authenticity_confidence"`
	AuthenticityNotes      string   `json:"authenticity_notes"`
}
