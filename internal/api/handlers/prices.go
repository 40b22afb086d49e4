package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pokewealth/backend/internal/services"
)

type PriceHandler struct {
	cardService *services.CardService
	ledger      *services.PriceHistoryLedger
}

func NewPriceHandler(cardService *services.CardService, ledger *services.PriceHistoryLedger) *PriceHandler {
	return &PriceHandler{
		cardService: cardService,
		ledger:      ledger,
	}
}

// UpdatePrice sets a new canonical price on a card. The old price stays in
// the history; the new one is appended.
func (h *PriceHandler) UpdatePrice(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}

	var req struct {
		Price string `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field 'price' is required"})
		return
	}

	card, err := h.cardService.UpdatePrice(id, req.Price)
	if err != nil {
		respondCardError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// GetPriceHistory returns a card's price history, most recent first.
func (h *PriceHandler) GetPriceHistory(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}

	// Verify the card exists so an unknown id is a 404, not an empty list.
	if _, err := h.cardService.GetCard(id); err != nil {
		respondCardError(c, err)
		return
	}

	entries, err := h.ledger.History(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"card_id": id,
		"history": entries,
	})
}
