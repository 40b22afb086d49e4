package models

// PriceChange is the value and percentage delta for one look-back window.
type PriceChange struct {
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// PortfolioReport summarizes the collection's current value and its change
// over the four fixed look-back windows. Each window is an independent
// per-card lookup against the price history, not a single point-in-time
// snapshot, so two cards may contribute entries recorded at different
// instants within the same window.
type PortfolioReport struct {
	TotalValue   float64                `json:"total_value"`
	TotalCards   int                    `json:"total_cards"`
	PriceChanges map[string]PriceChange `json:"price_changes"`
}
